package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/config"
	"github.com/pakarguru/modulajar/internal/store"
)

// Pruner is the part of the store maintenance touches.
type Pruner interface {
	PruneLLMEvents(ctx context.Context, before time.Time) (int64, error)
}

// Maintenance removes LLM events and history older than the retention
// window.
type Maintenance struct {
	Events    Pruner
	History   store.HistoryRepo
	Retention time.Duration
	Logger    *zap.Logger
}

// Prune runs one pass relative to now. Both tables are pruned even when one
// of them fails.
func (m *Maintenance) Prune(ctx context.Context, now time.Time) error {
	if m.Retention <= 0 {
		return nil
	}
	log := m.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cutoff := now.Add(-m.Retention)

	var errs []error
	if m.Events != nil {
		n, err := m.Events.PruneLLMEvents(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune llm events: %w", err))
		} else {
			prunedRecordsTotal.WithLabelValues("llm_events").Add(float64(n))
			log.Info("pruned llm events", zap.Int64("count", n), zap.Time("before", cutoff))
		}
	}
	if m.History != nil {
		n, err := m.History.PruneBefore(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune history: %w", err))
		} else {
			prunedRecordsTotal.WithLabelValues("history").Add(float64(n))
			log.Info("pruned history", zap.Int64("count", n), zap.Time("before", cutoff))
		}
	}
	return errors.Join(errs...)
}

// Schedule starts a cron scheduler running Prune on cfg.Schedule. The
// caller stops it with Stop.
func (m *Maintenance) Schedule(cfg config.MaintenanceConfig) (*cron.Cron, error) {
	log := m.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		log.Info("running scheduled maintenance")
		if err := m.Prune(context.Background(), time.Now()); err != nil {
			log.Error("maintenance failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule maintenance %q: %w", cfg.Schedule, err)
	}
	c.Start()
	return c, nil
}
