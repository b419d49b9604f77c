package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/nikmy/txnmgr/pkg/logger"
)

// newQueryTracer forwards driver query events to the application logger.
// It is only installed when logging is enabled in the datasource config,
// so the disabled case costs nothing on the query path.
func newQueryTracer(log logger.Logger, slow time.Duration) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger:   &queryLogger{log: log.With("query"), slow: slow},
		LogLevel: tracelog.LogLevelInfo,
	}
}

type queryLogger struct {
	log  logger.Logger
	slow time.Duration
}

func (q *queryLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if d, ok := data["time"].(time.Duration); ok && q.slow > 0 && d > q.slow {
		q.log.Warnf("slow query (%s): %s sql=%v", d, msg, data["sql"])
		return
	}

	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		q.log.Debugf("%s %v", msg, data)
	case tracelog.LogLevelInfo:
		q.log.Infof("%s sql=%v time=%v", msg, data["sql"], data["time"])
	case tracelog.LogLevelWarn:
		q.log.Warnf("%s %v", msg, data)
	default:
		q.log.Errorf("%s err=%v sql=%v", msg, data["err"], data["sql"])
	}
}
