package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"hearth/config"
	"hearth/internal/db"
	"hearth/internal/logs"
	"hearth/internal/remote"
	"hearth/internal/store"
	"hearth/internal/syncsvc"

	"github.com/spf13/cobra"
)

var (
	syncWatch    bool
	syncInterval int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the remote document store into the local database",
	Long: `Runs a sync pass against the remote document store: hubs, devices,
rooms and today's energy estimates. With --watch the pass repeats on the
configured interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logs.Init(logs.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		})
		if cfg.Remote.BaseURL == "" {
			return errors.New("remote.base_url is not configured")
		}

		d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		if d == nil {
			return errors.New("database.driver is empty: the mirror needs a database")
		}
		if err := db.Migrate(d); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}

		rc := remote.NewHTTPClient(cfg.Remote.BaseURL,
			time.Duration(cfg.Remote.TimeoutSeconds)*time.Second)
		engine := syncsvc.NewEngine(rc, store.NewRepo(d))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !syncWatch {
			if ok := engine.RunSyncPass(ctx); !ok {
				return errors.New("sync pass failed")
			}
			return nil
		}

		minutes := syncInterval
		if minutes <= 0 {
			minutes = cfg.Sync.PollIntervalMinutes
		}
		syncsvc.NewRunner(engine, time.Duration(minutes)*time.Minute).Run(ctx)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep syncing on the poll interval")
	syncCmd.Flags().IntVar(&syncInterval, "interval", 0, "poll interval in minutes (overrides config)")
}
