package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultAutosaveSpec saves dirty scenes every half minute.
const DefaultAutosaveSpec = "@every 30s"

// Autosaver periodically saves every open, dirty scene on a cron schedule.
type Autosaver struct {
	scenes  *SceneService
	sched   *cron.Cron
	timeout time.Duration
	log     *zap.Logger
}

// NewAutosaver schedules autosaves with a cron spec such as "@every 30s"
// or "*/5 * * * *".
func NewAutosaver(scenes *SceneService, spec string, log *zap.Logger) (*Autosaver, error) {
	if spec == "" {
		spec = DefaultAutosaveSpec
	}
	if log == nil {
		log = zap.NewNop()
	}
	a := &Autosaver{
		scenes:  scenes,
		sched:   cron.New(),
		timeout: 30 * time.Second,
		log:     log.Named("autosave"),
	}
	if _, err := a.sched.AddFunc(spec, a.Tick); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", spec, err)
	}
	return a, nil
}

func (a *Autosaver) Start() {
	a.sched.Start()
	a.log.Info("autosave started", zap.Int("entries", len(a.sched.Entries())))
}

// Tick runs one autosave pass.
func (a *Autosaver) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if n := a.scenes.SaveDirty(ctx); n > 0 {
		a.log.Debug("autosaved", zap.Int("scenes", n))
	}
}

// Stop halts the schedule and waits for a running tick, bounded by ctx.
func (a *Autosaver) Stop(ctx context.Context) {
	done := a.sched.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
