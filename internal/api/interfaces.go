package api

import (
	"context"

	"github.com/nikmy/txnmgr/pkg/txn"
)

type Server interface {
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type manager interface {
	Stats() txn.StatsSnapshot
	ResetStats()
	Config() txn.Config
	Contexts() []txn.ContextInfo
	SourceStatus(name string) (txn.PoolStatus, bool)
}
