package await

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFirstOf_ChanBeatsTimer(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7

	race := FirstOf(FromChan(ch), After(time.Minute))
	require.True(t, race.Await(context.Background()))
	require.Equal(t, 0, race.Chosen())

	v, ok := race.Value()
	require.True(t, ok)
	require.Equal(t, 7, v)
}

func TestFirstOf_TimerBeatsChan(t *testing.T) {
	ch := make(chan int)

	race := FirstOf(FromChan(ch), After(time.Millisecond))
	require.True(t, race.Await(context.Background()))
	require.Equal(t, 1, race.Chosen())
}

func TestFirstOf_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	race := FirstOf(FromChan(make(chan int)), After(time.Minute))
	require.False(t, race.Await(ctx))
	require.Equal(t, -1, race.Chosen())
}

func TestAfter_FiresImmediatelyForZero(t *testing.T) {
	require.True(t, After(0).Await(context.Background()))
}

func TestTick(t *testing.T) {
	tick := Tick(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, tick.Await(ctx))
	require.True(t, tick.Await(ctx))

	cancel()
	require.False(t, tick.Await(ctx))
}
