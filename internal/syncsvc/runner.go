package syncsvc

import (
	"context"
	"time"

	"hearth/internal/logs"
)

// Runner гоняет проходы синхронизации по таймеру до отмены контекста.
type Runner struct {
	engine   *Engine
	interval time.Duration
}

func NewRunner(engine *Engine, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{engine: engine, interval: interval}
}

// Run блокируется до отмены ctx. Первый проход — сразу, дальше по
// интервалу; неудачный проход не останавливает цикл.
func (r *Runner) Run(ctx context.Context) {
	logs.Logger.WithField("interval", r.interval.String()).Info("sync: scheduler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.engine.RunSyncPass(ctx)
	for {
		select {
		case <-ctx.Done():
			logs.Logger.Info("sync: scheduler stopped")
			return
		case <-ticker.C:
			r.engine.RunSyncPass(ctx)
		}
	}
}
