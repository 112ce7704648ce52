package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

var (
	ErrQueueFull     = errors.New("notification queue is full")
	ErrWorkerStopped = errors.New("notification worker is stopped")
)

const (
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 30 * time.Second
	DefaultAttemptTimeout  = 20 * time.Second
)

type WorkerConfig struct {
	Workers         int
	QueueSize       int
	MaxRetries      int
	RatePerSecond   float64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

type job struct {
	dispatcher Dispatcher
	booking    model.Booking
}

// Worker delivers confirmations on a fixed pool of goroutines. Each
// dispatcher gets its own job, so a retry of one channel never repeats
// another that already succeeded.
type Worker struct {
	cfg         WorkerConfig
	log         *logger.Logger
	dispatchers []Dispatcher
	limiter     *rate.Limiter

	mu      sync.RWMutex
	running bool
	jobs    chan job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewWorker(cfg WorkerConfig, log *logger.Logger, dispatchers ...Dispatcher) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultMaxInterval
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}

	limit := rate.Inf
	burst := 1
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
		burst = max(1, int(cfg.RatePerSecond))
	}

	return &Worker{
		cfg:         cfg,
		log:         log,
		dispatchers: dispatchers,
		limiter:     rate.NewLimiter(limit, burst),
	}
}

func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.jobs = make(chan job, w.cfg.QueueSize)
	w.running = true

	for i := range w.cfg.Workers {
		w.wg.Add(1)
		go w.loop(i)
	}

	w.log.Info("Notification worker started",
		"workers", w.cfg.Workers,
		"queue_size", w.cfg.QueueSize,
		"dispatchers", w.names(),
	)
}

func (w *Worker) names() []string {
	names := make([]string, 0, len(w.dispatchers))
	for _, d := range w.dispatchers {
		names = append(names, d.Name())
	}
	return names
}

func (w *Worker) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Enqueue schedules delivery of booking on every dispatcher without waiting.
// It fails when the worker is stopped or the queue cannot take every job.
func (w *Worker) Enqueue(booking *model.Booking) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.running {
		return apperrors.Notification("Notification worker is not running", ErrWorkerStopped)
	}
	if cap(w.jobs)-len(w.jobs) < len(w.dispatchers) {
		return apperrors.Notification("Notification queue is full", ErrQueueFull)
	}

	for _, d := range w.dispatchers {
		select {
		case w.jobs <- job{dispatcher: d, booking: *booking}:
		default:
			return apperrors.Notification("Notification queue is full", ErrQueueFull)
		}
	}
	return nil
}

// Stop refuses new work and waits for queued jobs to drain. When ctx ends
// first, in-flight retries are abandoned.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.jobs)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		w.log.Info("Notification worker stopped")
		return nil
	case <-ctx.Done():
		w.cancel()
		<-done
		w.log.Warn("Notification worker stopped before queue drained", "error", ctx.Err())
		return ctx.Err()
	}
}

func (w *Worker) loop(id int) {
	defer w.wg.Done()

	for j := range w.jobs {
		w.deliver(id, j)
	}
}

func (w *Worker) deliver(id int, j job) {
	log := w.log.With(
		"worker", id,
		"dispatcher", j.dispatcher.Name(),
		"booking_id", j.booking.ID,
	)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.InitialInterval
	b.MaxInterval = w.cfg.MaxInterval

	attempts := 0
	_, err := backoff.Retry(w.ctx, func() (struct{}, error) {
		attempts++
		if err := w.limiter.Wait(w.ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		attemptCtx, cancel := context.WithTimeout(w.ctx, w.cfg.AttemptTimeout)
		defer cancel()

		return struct{}{}, j.dispatcher.Dispatch(attemptCtx, &j.booking)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(w.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("Notification attempt failed, retrying",
				"attempt", attempts,
				"retry_in", next,
				"error", err,
			)
		}),
	)
	if err != nil {
		notifyErr := apperrors.Notification("Failed to deliver booking notification", err)
		log.Error("Notification delivery abandoned",
			"attempts", attempts,
			"error", notifyErr,
		)
		return
	}

	log.Info("Notification delivered", "attempts", attempts)
}
