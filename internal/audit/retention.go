package audit

import (
	"context"
	"log/slog"
	"time"
)

// Pruner is a Sink that can drop old entries.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionConfig controls StartRetention. Zero values fall back to the
// defaults noted per field.
type RetentionConfig struct {
	Days     int           // Days to keep entries (default: 90)
	Interval time.Duration // How often to prune (default: 24h)

	// Now is used in tests; nil means time.Now.
	Now func() time.Time
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.Days <= 0 {
		c.Days = 90
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// StartRetention prunes p immediately, then every Interval, until ctx is
// cancelled. Failures are logged and the next run proceeds as scheduled.
func StartRetention(ctx context.Context, p Pruner, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("audit retention started",
		"retention_days", cfg.Days,
		"interval", cfg.Interval,
	)

	runPrune(ctx, p, cfg)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention stopped")
			return
		case <-ticker.C:
			runPrune(ctx, p, cfg)
		}
	}
}

// runPrune performs one prune cycle.
func runPrune(ctx context.Context, p Pruner, cfg RetentionConfig) {
	start := time.Now()
	cutoff := cfg.Now().AddDate(0, 0, -cfg.Days)

	pruned, err := p.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("audit prune failed", "error", err)
		return
	}
	slog.Info("pruned audit entries",
		"entries_pruned", pruned,
		"cutoff", cutoff,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
