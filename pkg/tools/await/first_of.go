package await

import (
	"context"
	"reflect"
)

// FirstOf waits until any of the given waiters fires and remembers which one.
func FirstOf(waiters ...Awaiter) *FirstOfAwaiter {
	cases := make([]reflect.SelectCase, 0, len(waiters))
	for _, a := range waiters {
		cases = append(cases, a.bind())
	}

	return &FirstOfAwaiter{cases: cases, chosen: -1}
}

type FirstOfAwaiter struct {
	cases  []reflect.SelectCase
	val    any
	chosen int
}

func (a *FirstOfAwaiter) Await(ctx context.Context) (waited bool) {
	a.cases = append(a.cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(ctx.Done()),
	})

	choice, val, _ := reflect.Select(a.cases)
	a.val = val.Interface()

	a.cases = a.cases[:len(a.cases)-1]

	if choice == len(a.cases) {
		return false
	}

	a.chosen = choice
	return true
}

func (a *FirstOfAwaiter) Value() (any, bool) {
	return a.val, a.chosen >= 0
}

// Chosen reports the index of the waiter that fired, or -1 before Await
// returns (and after a context cancellation).
func (a *FirstOfAwaiter) Chosen() int {
	return a.chosen
}

func (a *FirstOfAwaiter) bind() reflect.SelectCase {
	panic("await: avoid combine combinators")
}
