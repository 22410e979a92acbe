package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Mirrorer is satisfied by PlanService.
type Mirrorer interface {
	MirrorPlans(ctx context.Context) (int, error)
}

// MirrorWorker runs MirrorPlans once at start and then on every tick until
// its context ends or Stop is called.
type MirrorWorker struct {
	plans    Mirrorer
	interval time.Duration
	logger   Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewMirrorWorker(plans Mirrorer, interval time.Duration, logger Logger) *MirrorWorker {
	return &MirrorWorker{
		plans:    plans,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *MirrorWorker) Init() error {
	if w.plans == nil {
		return errors.New("mirror worker has no plan service")
	}
	if w.interval <= 0 {
		return fmt.Errorf("mirror interval must be positive, got %s", w.interval)
	}
	return nil
}

func (w *MirrorWorker) Run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.mirror(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.mirror(ctx)
		}
	}
}

// Stop asks Run to return after the current mirror. Safe to call more than once.
func (w *MirrorWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Done is closed when Run returns.
func (w *MirrorWorker) Done() <-chan struct{} {
	return w.done
}

func (w *MirrorWorker) mirror(ctx context.Context) {
	n, err := w.plans.MirrorPlans(ctx)
	if err != nil {
		w.logger.Error("mirror run failed", "error", err.Error())
		return
	}
	w.logger.Debug("mirror run finished", "count", n)
}
