package statemachine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type counter struct {
	steps []string
	n     int
}

func TestDispatchRunsChain(t *testing.T) {
	c := &counter{}
	m := New(c)

	var first, second StateFn[counter]
	second = func(c *counter) StateFn[counter] {
		c.steps = append(c.steps, "second")
		return nil
	}
	first = func(c *counter) StateFn[counter] {
		c.steps = append(c.steps, "first")
		return second
	}

	m.Dispatch(first)
	require.Equal(t, []string{"first", "second"}, c.steps)

	// nil dispatch is a no-op.
	m.Dispatch(nil)
	require.Equal(t, []string{"first", "second"}, c.steps)
}

func TestDispatchSerializes(t *testing.T) {
	c := &counter{}
	m := New(c)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Do(func(c *counter) { c.n++ })
			}
		}()
	}
	wg.Wait()

	m.Do(func(c *counter) {
		require.Equal(t, workers*perWorker, c.n)
	})
}

func TestDispatchAfterFires(t *testing.T) {
	c := &counter{}
	m := New(c)
	done := make(chan struct{})

	m.DispatchAfter(5*time.Millisecond, func(c *counter) StateFn[counter] {
		c.n++
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled step never fired")
	}
	m.Do(func(c *counter) { require.Equal(t, 1, c.n) })
}

func TestDispatchAfterReplacesPending(t *testing.T) {
	c := &counter{}
	m := New(c)
	done := make(chan struct{})

	m.DispatchAfter(20*time.Millisecond, func(c *counter) StateFn[counter] {
		c.steps = append(c.steps, "stale")
		return nil
	})
	m.DispatchAfter(5*time.Millisecond, func(c *counter) StateFn[counter] {
		c.steps = append(c.steps, "fresh")
		close(done)
		return nil
	})

	<-done
	time.Sleep(40 * time.Millisecond)
	m.Do(func(c *counter) {
		require.Equal(t, []string{"fresh"}, c.steps)
	})
}

func TestCancelPending(t *testing.T) {
	c := &counter{}
	m := New(c)

	m.DispatchAfter(5*time.Millisecond, func(c *counter) StateFn[counter] {
		c.n++
		return nil
	})
	m.CancelPending()

	time.Sleep(30 * time.Millisecond)
	m.Do(func(c *counter) { require.Zero(t, c.n) })
}

func TestDispatchLeavesPendingAlone(t *testing.T) {
	c := &counter{}
	m := New(c)
	done := make(chan struct{})

	m.DispatchAfter(10*time.Millisecond, func(c *counter) StateFn[counter] {
		c.steps = append(c.steps, "timer")
		close(done)
		return nil
	})
	m.Dispatch(func(c *counter) StateFn[counter] {
		c.steps = append(c.steps, "action")
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending step was lost by an unrelated dispatch")
	}
	m.Do(func(c *counter) {
		require.Equal(t, []string{"action", "timer"}, c.steps)
	})
}

func TestRescheduleFromWithinState(t *testing.T) {
	c := &counter{}
	m := New(c)
	done := make(chan struct{})

	var tick StateFn[counter]
	tick = func(c *counter) StateFn[counter] {
		c.n++
		if c.n < 3 {
			m.DispatchAfter(time.Millisecond, tick)
		} else {
			close(done)
		}
		return nil
	}

	m.Dispatch(tick)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rescheduled chain never completed")
	}
	m.Do(func(c *counter) { require.Equal(t, 3, c.n) })
}
