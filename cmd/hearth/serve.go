package main

import (
	"fmt"

	"hearth/config"
	"hearth/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the background sync scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		app := &server.App{}
		app.Initialize(cfg)
		return app.Run()
	},
}
