package notifier

import (
	"context"
	"errors"
	"fmt"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/domain/logging"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notifier is closed")
)

type DeliveryError struct {
	Email c.Email
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("could not deliver password reset notification to %s: %v", e.Email, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration
}

// Async hands notifications over to a fixed pool of workers and returns
// immediately. Delivery errors are sent to an internal error channel
// which is drained by a logging goroutine.
type Async struct {
	log     logging.Logger
	next    account.ResetNotifier
	timeout time.Duration

	jobs    chan account.ResetNotification
	errs    chan error
	workers sync.WaitGroup
	drained chan struct{}

	lock      sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewAsync(log logging.Logger, next account.ResetNotifier, cfg Config) *Async {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if next == nil {
		panic(e.NewNilArgumentError("next"))
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	a := &Async{
		log:     log,
		next:    next,
		timeout: cfg.Timeout,
		jobs:    make(chan account.ResetNotification, cfg.QueueSize),
		errs:    make(chan error, cfg.Workers),
		drained: make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		a.workers.Add(1)
		go a.work()
	}
	go a.drainErrors()
	return a
}

func (a *Async) NotifyPasswordReset(ctx context.Context, n account.ResetNotification) error {
	a.lock.RLock()
	defer a.lock.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.jobs <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits until every queued
// one has been delivered or has failed.
func (a *Async) Close() {
	a.closeOnce.Do(func() {
		a.lock.Lock()
		a.closed = true
		close(a.jobs)
		a.lock.Unlock()

		a.workers.Wait()
		close(a.errs)
		<-a.drained
	})
}

func (a *Async) work() {
	defer a.workers.Done()
	for n := range a.jobs {
		if err := a.deliver(n); err != nil {
			a.errs <- &DeliveryError{Email: n.Email, Err: err}
		}
	}
}

func (a *Async) deliver(n account.ResetNotification) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	return a.next.NotifyPasswordReset(ctx, n)
}

func (a *Async) drainErrors() {
	defer close(a.drained)
	for err := range a.errs {
		var deliveryErr *DeliveryError
		if errors.As(err, &deliveryErr) {
			a.log.Error(
				context.Background(),
				"Password reset notification failed.",
				logging.Entry("email", deliveryErr.Email),
				logging.Entry("err", deliveryErr.Err),
			)
			continue
		}
		logging.Error(context.Background(), a.log, err)
	}
}
