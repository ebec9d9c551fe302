package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleRunsUntilDone(t *testing.T) {
	l := New()
	count := 0
	l.Idle(func() bool {
		count++
		return count < 3
	})

	l.RunUntilIdle()
	assert.Equal(t, 3, count)
	assert.False(t, l.Pending())
}

func TestIdleSourcesInterleave(t *testing.T) {
	l := New()
	var order []string
	a, b := 0, 0
	l.Idle(func() bool {
		a++
		order = append(order, "a")
		return a < 2
	})
	l.Idle(func() bool {
		b++
		order = append(order, "b")
		return b < 2
	})

	l.RunUntilIdle()
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)
}

func TestPostedRunsBeforeNextIdleStep(t *testing.T) {
	l := New()
	var order []string
	steps := 0
	l.Idle(func() bool {
		steps++
		order = append(order, "idle")
		if steps == 1 {
			l.Post(func() { order = append(order, "posted") })
		}
		return steps < 2
	})

	l.RunUntilIdle()
	assert.Equal(t, []string{"idle", "posted", "idle"}, order)
}

func TestRemoveStopsSource(t *testing.T) {
	l := New()
	calls := 0
	var src *Source
	src = l.Idle(func() bool {
		calls++
		src.Remove()
		return true
	})

	l.RunUntilIdle()
	assert.Equal(t, 1, calls)
	assert.False(t, src.Active())
	src.Remove()
}

func TestHoldWaitsForBackgroundPost(t *testing.T) {
	l := New()
	l.Hold()
	got := ""
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Post(func() { got = "done" })
		l.Release()
	}()

	l.RunUntilIdle()
	assert.Equal(t, "done", got)
}

func TestRunHonoursContext(t *testing.T) {
	l := New()
	l.Hold()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
