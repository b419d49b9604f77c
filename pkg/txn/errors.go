package txn

import (
	"fmt"
	"time"

	"github.com/nikmy/txnmgr/pkg/errors"
)

var (
	// ErrPropagationViolation is returned when Never runs inside a
	// transaction or Mandatory runs outside one. No session is touched.
	ErrPropagationViolation = errors.Error("propagation violation")

	// ErrNestingLimitExceeded is returned when a Nested call would go
	// beyond Config.MaxNestedDepth. No savepoint is created.
	ErrNestingLimitExceeded = errors.Error("nesting limit exceeded")

	// ErrSourceUnavailable is returned when the named datasource is not
	// registered or not initialized.
	ErrSourceUnavailable = errors.Error("datasource unavailable")

	// ErrSavepointsUnsupported is returned by session implementations
	// whose engine has no savepoints (Nested over such a datasource fails
	// cleanly before touching transaction state).
	ErrSavepointsUnsupported = errors.Error("savepoints unsupported")
)

// TimeoutError reports that the per-call timer elapsed while the body
// was still running.
type TimeoutError struct {
	Timeout   time.Duration
	ContextID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s timed out after %s", e.ContextID, e.Timeout)
}
