// Package scheduler runs the periodic autosave and autorefresh jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/tracker"
)

// Portfolio is the part of the tracker the jobs drive.
type Portfolio interface {
	AutoSave() error
	Refresh(ctx context.Context) (tracker.RefreshResult, error)
}

// Options sets the job periods. A zero period disables the job.
type Options struct {
	AutosaveEvery time.Duration
	RefreshEvery  time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	var opts Options
	if cfg.AutosaveEnabled() {
		opts.AutosaveEvery = cfg.AutosaveInterval()
	}
	if cfg.AutorefreshEnabled() {
		opts.RefreshEvery = cfg.AutorefreshInterval()
	}
	return opts
}

type Scheduler struct {
	portfolio Portfolio
	opts      Options
	logger    *logger.Logger
}

func New(p Portfolio, opts Options, log *logger.Logger) *Scheduler {
	return &Scheduler{
		portfolio: p,
		opts:      opts,
		logger:    log.With("component", "scheduler"),
	}
}

// Run blocks until ctx is done. Each job is skipped while its previous run is
// still going, and a panicking job does not stop the others. On return no job
// is running.
func (s *Scheduler) Run(ctx context.Context) error {
	cronLog := cron.PrintfLogger(s.logger.StdLogger(slog.LevelError))
	c := cron.New(
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		cron.WithLogger(cronLog),
	)

	if s.opts.AutosaveEvery > 0 {
		if err := s.add(c, "autosave", s.opts.AutosaveEvery, func() error {
			return s.portfolio.AutoSave()
		}); err != nil {
			return err
		}
	}
	if s.opts.RefreshEvery > 0 {
		if err := s.add(c, "autorefresh", s.opts.RefreshEvery, func() error {
			res, err := s.portfolio.Refresh(ctx)
			if errors.Is(err, tracker.ErrRefreshInProgress) {
				s.logger.Debug("refresh already running, skipping")
				return nil
			}
			if err == nil {
				s.logger.Info("autorefresh done", "updated", res.Updated, "failed", len(res.Failed))
			}
			return err
		}); err != nil {
			return err
		}
	}

	c.Start()
	s.logger.Info("scheduler started", "autosave", s.opts.AutosaveEvery.String(), "autorefresh", s.opts.RefreshEvery.String())

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) add(c *cron.Cron, name string, every time.Duration, run func() error) error {
	_, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		s.logger.Debug("running job", "job", name)
		if err := run(); err != nil {
			s.logger.Error("job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job registered", "job", name, "every", every.String())
	return nil
}
