package queue

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsTasksInOrderPerKey(t *testing.T) {
	d := NewDispatcher(3, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		d.Go("user-1", "ordered", func(context.Context) error {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
	}
	wg.Wait()
	cancel()
	d.Wait()

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestDispatcher_FailureIsLoggedNotPropagated(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&syncWriter{w: &buf})
	d := NewDispatcher(1, log)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	done := make(chan struct{})
	d.Go("user-1", "welcome_email", func(context.Context) error {
		return errors.New("smtp down")
	})
	d.Go("user-1", "after", func(context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a failing task")
	}
	cancel()
	d.Wait()

	assert.Contains(t, buf.String(), "task failed")
	assert.Contains(t, buf.String(), "welcome_email")
}

func TestDispatcher_PanicDoesNotKillWorker(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	done := make(chan struct{})
	d.Go("k", "boom", func(context.Context) error { panic("boom") })
	d.Go("k", "after", func(context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	// Not started: nothing drains the channel.
	for i := 0; i < channelBuffer+10; i++ {
		d.Go("k", "fill", func(context.Context) error { return nil })
	}
	assert.Equal(t, channelBuffer, len(d.workers[0]))
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("user-42"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
