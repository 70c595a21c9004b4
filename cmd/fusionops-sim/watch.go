package main

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/config"
	"fusionops-sim/internal/logging"
	"fusionops-sim/internal/store"
	"fusionops-sim/internal/tui"
)

var watchRedisURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the live update feed in the terminal",
	Long:  "watch connects to the shared store and renders the update log as a live feed, the same view stream clients get over SSE.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New()
		slog.SetDefault(logger)

		url := watchRedisURL
		if url == "" {
			cfg, err := config.Load("", "")
			if err != nil {
				return err
			}
			url = cfg.RedisURL
		}
		st, err := store.NewRedis(url)
		if err != nil {
			return err
		}
		defer st.Close()

		cat := catalog.New(st, nil, logger)
		p := tea.NewProgram(tui.New(cat), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchRedisURL, "redis-url", "", "Redis URL (defaults to REDIS_URL or redis://localhost:6379/0)")
}
