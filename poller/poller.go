// Package poller refetches a resource on a fixed schedule until a deadline,
// cancellation, or a completion predicate, whichever comes first.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultDeadline = 60 * time.Second
)

type Config struct {
	Interval time.Duration
	Deadline time.Duration
	// Name labels log lines, e.g. the resource being watched.
	Name string
}

func DefaultConfig() Config {
	return Config{Interval: DefaultInterval, Deadline: DefaultDeadline}
}

// Result summarises a finished poll.
type Result struct {
	Polls     int
	Completed bool
	TimedOut  bool
	Cancelled bool
}

// Poll calls refetch every cfg.Interval. After each successful refetch, done
// (which may be nil) is asked whether the watched job has finished. Refetch
// errors are logged and polling continues. Poll blocks until it stops.
func Poll(ctx context.Context, cfg Config, refetch func(context.Context) error, done func() bool) Result {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultDeadline
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(cfg.Deadline)
	defer deadline.Stop()

	var res Result
	for {
		select {
		case <-ctx.Done():
			res.Cancelled = true
			log.Debug().Str("poll", cfg.Name).Int("polls", res.Polls).Msg("polling cancelled")
			return res
		case <-deadline.C:
			res.TimedOut = true
			log.Warn().
				Str("poll", cfg.Name).
				Int("polls", res.Polls).
				Dur("deadline", cfg.Deadline).
				Msg("polling stopped at deadline before the job reported completion; results may still arrive")
			return res
		case <-ticker.C:
			res.Polls++
			if err := refetch(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Str("poll", cfg.Name).Msg("refetch failed")
				continue
			}
			if done != nil && done() {
				res.Completed = true
				log.Debug().Str("poll", cfg.Name).Int("polls", res.Polls).Msg("polling completed")
				return res
			}
		}
	}
}

// Handle controls a poll started with Start.
type Handle struct {
	cancel   context.CancelFunc
	finished chan struct{}
	once     sync.Once
	result   Result
}

// Start runs Poll in its own goroutine.
func Start(ctx context.Context, cfg Config, refetch func(context.Context) error, done func() bool) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, finished: make(chan struct{})}
	go func() {
		defer close(h.finished)
		defer cancel()
		h.result = Poll(ctx, cfg, refetch, done)
	}()
	return h
}

// Stop cancels the poll and waits for its goroutine to exit.
func (h *Handle) Stop() Result {
	h.once.Do(h.cancel)
	<-h.finished
	return h.result
}

// Done is closed when the poll has stopped for any reason.
func (h *Handle) Done() <-chan struct{} {
	return h.finished
}

// Wait blocks until the poll stops on its own or ctx ends.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.finished:
		return h.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
