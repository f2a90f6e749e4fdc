// Package scheduler provides admission control for the small set of upstream
// operations expensive enough to threaten the monthly quota when run freely
// (full master-list refresh, multi-term search sweeps).
//
// A single worker drains a FIFO queue, so at most one bulk operation is ever
// in flight, and a rolling window caps how many may begin per hour. Callers
// suspend until their task is admitted; under normal operation they are never
// rejected, only delayed. Without this gate a burst of page loads could turn
// "N concurrent refresh wants" into N full master-list fetches and burn the
// monthly budget in minutes; the gate converts them into at most a couple of
// fetches per hour, independent of the quota ledger's hard cap.
//
// Window state is in-memory and resets on process restart. Given the hour
// window against typical process uptimes this is an accepted approximation.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// ErrStopped is returned for tasks still queued when the scheduler shuts down.
var ErrStopped = errors.New("scheduler: stopped")

var (
	bulkQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bulk_queue_depth",
		Help: "Bulk operations waiting for admission.",
	})
	bulkAdmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_admissions_total",
		Help: "Bulk operations admitted, by operation name.",
	}, []string{"operation"})
	bulkWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bulk_admission_wait_seconds",
		Help:    "Time bulk operations spent queued before admission.",
		Buckets: []float64{0.01, 0.1, 1, 5, 30, 60, 300, 900, 1800, 3600},
	})
)

func init() {
	prometheus.MustRegister(bulkQueueDepth, bulkAdmissions, bulkWaitSeconds)
}

// Task is the unit of bulk work. It runs with the submitting caller's context.
type Task func(ctx context.Context) error

type job struct {
	name     string
	ctx      context.Context
	task     Task
	enqueued time.Time
	done     chan error
}

// Scheduler serializes bulk operations and rate-limits their admission.
type Scheduler struct {
	queue    chan *job
	quit     chan struct{}
	stopOnce sync.Once
	log      zerolog.Logger

	perWindow int
	window    time.Duration

	// admissions holds the start times of recently admitted tasks; the
	// worker goroutine is the only writer.
	admissions []time.Time

	now func() time.Time // test seam
}

// New starts a Scheduler admitting at most perWindow tasks per window,
// strictly one at a time, in submission order. Call Stop to shut it down.
func New(perWindow int, window time.Duration, log zerolog.Logger) *Scheduler {
	if perWindow < 1 {
		perWindow = 1
	}
	s := &Scheduler{
		queue:     make(chan *job, 64),
		quit:      make(chan struct{}),
		log:       log,
		perWindow: perWindow,
		window:    window,
		now:       time.Now,
	}
	go s.run()
	return s
}

// Schedule enqueues task and suspends until it has been admitted and run, or
// until ctx is cancelled while still queued. The task itself receives ctx.
func (s *Scheduler) Schedule(ctx context.Context, name string, task Task) error {
	j := &job{
		name:     name,
		ctx:      ctx,
		task:     task,
		enqueued: s.now(),
		done:     make(chan error, 1),
	}

	bulkQueueDepth.Inc()
	select {
	case s.queue <- j:
	case <-ctx.Done():
		bulkQueueDepth.Dec()
		return ctx.Err()
	case <-s.quit:
		bulkQueueDepth.Dec()
		return ErrStopped
	}

	// done is buffered, so the worker's send never blocks even if the caller
	// has already left. The worker re-checks j.ctx before running, so an
	// abandoned task is dropped rather than executed.
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the scheduler down. Queued tasks complete with ErrStopped; a
// task already running finishes normally. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// run is the single worker loop: pop, wait for window capacity, execute.
func (s *Scheduler) run() {
	for {
		select {
		case <-s.quit:
			s.drain()
			return
		case j := <-s.queue:
			s.execute(j)
		}
	}
}

// drain fails any jobs still queued at shutdown.
func (s *Scheduler) drain() {
	for {
		select {
		case j := <-s.queue:
			bulkQueueDepth.Dec()
			j.done <- ErrStopped
		default:
			return
		}
	}
}

func (s *Scheduler) execute(j *job) {
	defer bulkQueueDepth.Dec()

	// The caller may have given up while the job sat in the queue.
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	if err := s.waitForWindow(j.ctx); err != nil {
		j.done <- err
		return
	}

	now := s.now()
	s.admissions = append(s.admissions, now)
	bulkAdmissions.WithLabelValues(j.name).Inc()
	bulkWaitSeconds.Observe(now.Sub(j.enqueued).Seconds())

	s.log.Info().
		Str("operation", j.name).
		Dur("queued_for", now.Sub(j.enqueued)).
		Msg("bulk operation admitted")

	j.done <- j.task(j.ctx)
}

// waitForWindow blocks until the rolling window has capacity for one more
// admission, or until ctx/quit fire.
func (s *Scheduler) waitForWindow(ctx context.Context) error {
	for {
		now := s.now()

		// Drop admissions that have rolled out of the window.
		live := s.admissions[:0]
		for _, t := range s.admissions {
			if now.Sub(t) < s.window {
				live = append(live, t)
			}
		}
		s.admissions = live

		if len(s.admissions) < s.perWindow {
			return nil
		}

		// Oldest live admission leaving the window frees the next slot.
		wait := s.window - now.Sub(s.admissions[0])
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.quit:
			timer.Stop()
			return ErrStopped
		}
	}
}
