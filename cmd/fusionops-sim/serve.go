package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fusionops-sim/internal/admin"
	"fusionops-sim/internal/api"
	"fusionops-sim/internal/archive"
	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/config"
	"fusionops-sim/internal/logging"
	"fusionops-sim/internal/sim"
	"fusionops-sim/internal/store"
)

var (
	serveConfigPath string
	serveSchemaPath string
	serveMemory     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and simulation loops",
	Long:  "serve bootstraps the fleet, starts the asset/event/alert simulation loops, and serves the dashboard API including the live SSE stream.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}

		logger := logging.New()
		slog.SetDefault(logger)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		ctx = logging.NewContext(ctx, logger)

		st, err := newStore(cfg, serveMemory)
		if err != nil {
			return err
		}
		defer st.Close()
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		defer pingCancel()
		if err := st.Ping(pingCtx); err != nil {
			return err
		}

		var archiver catalog.UpdateWriter
		if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
			db := os.Getenv("GREPTIMEDB_DATABASE")
			if db == "" {
				db = "public"
			}
			g, err := archive.NewGreptime(endpoint, db, logger)
			if err != nil {
				return err
			}
			archiver = g
			logger.Info("archiving updates to greptimedb", "endpoint", endpoint, "db", db)
		}

		cat := catalog.New(st, archiver, logger)
		engine := sim.NewEngine(cat, cfg.FleetSize, sim.Rates{
			EventSec: cfg.Rates.EventSec,
			AssetSec: cfg.Rates.AssetSec,
			AlertSec: cfg.Rates.AlertSec,
		}, time.Now().UnixNano())

		// Assets must exist before events or alerts reference them.
		if err := engine.Bootstrap(ctx); err != nil {
			return err
		}

		ctrl := admin.NewController(cat, engine,
			time.Duration(cfg.Admin.CooldownSec)*time.Second,
			time.Duration(cfg.Admin.LockSec)*time.Second)
		srv := api.NewServer(cat, ctrl, cfg, logger)

		if cfg.GeneratorsEnabled {
			go engine.Run(ctx)
		} else {
			logger.Info("generators disabled, serving static state")
		}

		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := srv.Start(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func newStore(cfg *config.Config, memory bool) (store.Store, error) {
	if memory {
		return store.NewMemory(), nil
	}
	return store.NewRedis(cfg.RedisURL)
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to configuration YAML (defaults apply when empty)")
	serveCmd.Flags().StringVar(&serveSchemaPath, "schema", "", "Path to CUE schema for config validation")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Use the in-memory store instead of Redis (single process only)")
}
