// Package workload starts a fixed set of reader and writer goroutines
// against a lock and records when each of them held it.
package workload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Lock is the part of rwmutex.RWMutex the runner needs.
type Lock interface {
	RLock()
	RUnlock()
	Lock()
	Unlock()
}

type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
)

type Runner struct {
	lock   Lock
	cfg    Config
	logger *zap.Logger
	clock  clockwork.Clock
}

type RunnerOption func(*Runner)

func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithClock sets the clock used to time worker bodies.
func WithClock(c clockwork.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

func NewRunner(lock Lock, cfg Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		lock:   lock,
		cfg:    cfg,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run launches all readers and writers and waits for them to finish.
//
// Readers and writers are launched by two separate goroutines, so the two
// roles arrive interleaved. Cancelling ctx stops launching new workers, but
// workers that already called into the lock run to completion. The returned
// report covers every worker that ran, even when an error is returned.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := &Report{Start: r.clock.Now()}
	var mu sync.Mutex
	record := func(s Span) {
		mu.Lock()
		rep.Spans = append(rep.Spans, s)
		mu.Unlock()
	}

	// Контекст errgroup не используется: отмена одного запуска не должна
	// останавливать воркеров другой роли.
	var g errgroup.Group
	g.Go(func() error {
		return r.launch(ctx, &g, RoleReader, r.cfg.Readers, record)
	})
	g.Go(func() error {
		return r.launch(ctx, &g, RoleWriter, r.cfg.Writers, record)
	})
	err := g.Wait()

	rep.End = r.clock.Now()
	rep.sort()
	if err != nil {
		return rep, fmt.Errorf("workload interrupted: %w", err)
	}
	return rep, nil
}

func (r *Runner) launch(ctx context.Context, g *errgroup.Group, role Role, n int, record func(Span)) error {
	for i := 0; i < n; i++ {
		if i > 0 && r.cfg.Stagger > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.cfg.Stagger):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := fmt.Sprintf("%s%d", role, i)
		g.Go(func() error {
			record(r.work(role, name))
			return nil
		})
	}
	return nil
}

func (r *Runner) work(role Role, name string) Span {
	log := r.logger.With(zap.String("worker", name), zap.String("role", string(role)))

	var d time.Duration
	if role == RoleReader {
		d = r.cfg.ReadDuration
		r.lock.RLock()
		defer r.lock.RUnlock()
	} else {
		d = r.cfg.WriteDuration
		r.lock.Lock()
		defer r.lock.Unlock()
	}

	s := Span{Name: name, Role: role, Start: r.clock.Now()}
	log.Info("lock acquired")
	r.clock.Sleep(d)
	s.End = r.clock.Now()
	log.Info("finished", zap.Duration("held", s.End.Sub(s.Start)))
	return s
}
