package txn

import (
	"github.com/nikmy/txnmgr/pkg/logger"
)

//go:generate mockgen -source=interfaces.go -destination=mocks_test.go -package=txn

type loggerImpl interface {
	logger.Logger
}
