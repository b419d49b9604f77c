package await

import (
	"context"
	"reflect"
	"time"
)

type tickerAwaiter struct {
	*time.Ticker
}

func Tick(interval time.Duration) Awaiter {
	return &tickerAwaiter{time.NewTicker(interval)}
}

func (t *tickerAwaiter) Await(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-t.Ticker.C:
		return true
	}
}

func (t *tickerAwaiter) Value() (any, bool) {
	return struct{}{}, false
}

func (t *tickerAwaiter) bind() reflect.SelectCase {
	return reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(t.Ticker.C),
	}
}

type timerAwaiter struct {
	*time.Timer
}

// After fires once when d elapses. Zero or negative d fires immediately.
func After(d time.Duration) Awaiter {
	if d <= 0 {
		return noAwaiter{}
	}
	return &timerAwaiter{time.NewTimer(d)}
}

func (t *timerAwaiter) Await(ctx context.Context) bool {
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (t *timerAwaiter) Value() (any, bool) {
	return struct{}{}, false
}

func (t *timerAwaiter) bind() reflect.SelectCase {
	return reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(t.C),
	}
}
