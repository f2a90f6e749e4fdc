package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// Submitting N tasks concurrently: execution windows never overlap and tasks
// run in submission order.
func TestScheduler_SerializesAndPreservesFIFO(t *testing.T) {
	s := New(100, time.Hour, zerolog.Nop())
	defer s.Stop()

	type span struct {
		id    int
		start time.Time
		end   time.Time
	}

	var mu sync.Mutex
	var spans []span

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		id := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Schedule(context.Background(), "task", func(context.Context) error {
				start := time.Now()
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				spans = append(spans, span{id: id, start: start, end: time.Now()})
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("schedule %d: %v", id, err)
			}
		}()
		// Stagger submissions so queue order is deterministic.
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(spans) != 5 {
		t.Fatalf("ran %d tasks; want 5", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].id != spans[i-1].id+1 {
			t.Fatalf("out of order: %v before %v", spans[i-1].id, spans[i].id)
		}
		if spans[i].start.Before(spans[i-1].end) {
			t.Fatalf("task %d started before task %d finished", spans[i].id, spans[i-1].id)
		}
	}
}

// With a cap of 2 per window, the third of three concurrent tasks stays
// pending (not rejected) for the duration of the test budget.
func TestScheduler_WindowCapHoldsThirdTask(t *testing.T) {
	s := New(2, time.Hour, zerolog.Nop())
	defer s.Stop()

	var ran atomic.Int32
	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			results <- s.Schedule(context.Background(), "bulk", func(context.Context) error {
				ran.Add(1)
				return nil
			})
		}()
		time.Sleep(5 * time.Millisecond)
	}

	// First two complete promptly.
	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			if err != nil {
				t.Fatalf("task %d: %v", i, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("task %d did not complete", i)
		}
	}

	// Third is held by the window, still pending, not errored.
	select {
	case err := <-results:
		t.Fatalf("third task should still be pending, finished with %v", err)
	case <-time.After(150 * time.Millisecond):
	}
	if got := ran.Load(); got != 2 {
		t.Fatalf("ran %d tasks within the window; want 2", got)
	}
}

func TestScheduler_TaskErrorPropagates(t *testing.T) {
	s := New(10, time.Hour, zerolog.Nop())
	defer s.Stop()

	want := errors.New("upstream exploded")
	got := s.Schedule(context.Background(), "bulk", func(context.Context) error { return want })
	if !errors.Is(got, want) {
		t.Fatalf("got %v; want %v", got, want)
	}
}

func TestScheduler_CancelledWhileQueued(t *testing.T) {
	s := New(1, time.Hour, zerolog.Nop())
	defer s.Stop()

	// Occupy the only window slot.
	if err := s.Schedule(context.Background(), "first", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Schedule(ctx, "second", func(context.Context) error { return nil })
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled task never returned")
	}
}

// A caller that gives up while the worker is stalled waiting for window
// capacity must return promptly, not ride out the window.
func TestScheduler_CancelledWhileWorkerStalledOnWindow(t *testing.T) {
	s := New(1, time.Hour, zerolog.Nop())
	defer s.Stop()

	// Consume the only window slot, then stall the worker on the next job.
	if err := s.Schedule(context.Background(), "first", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first: %v", err)
	}
	stalled := make(chan error, 1)
	go func() {
		stalled <- s.Schedule(context.Background(), "second", func(context.Context) error { return nil })
	}()
	time.Sleep(20 * time.Millisecond)

	// Third caller queues behind the stalled worker, then abandons.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var ran atomic.Bool
	go func() {
		done <- s.Schedule(ctx, "third", func(context.Context) error {
			ran.Store(true)
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v; want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled caller stayed suspended behind the stalled worker")
	}
	if ran.Load() {
		t.Fatalf("abandoned task must not run")
	}
}

func TestScheduler_StopFailsQueuedTasks(t *testing.T) {
	s := New(1, time.Hour, zerolog.Nop())

	if err := s.Schedule(context.Background(), "first", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Schedule(context.Background(), "second", func(context.Context) error { return nil })
	}()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("got %v; want ErrStopped", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("queued task never returned after Stop")
	}
}
