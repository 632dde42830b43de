package main

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Smart-home energy mirror and reporting API",
	Long: `Hearth mirrors hubs, devices and rooms from a remote document
store into a local relational store, keeps per-device energy estimates
and serves a read-oriented HTTP API on top of the mirror.

  hearth serve          # run the API with the background sync loop
  hearth sync           # one-shot sync pass and exit
  hearth sync --watch   # foreground sync loop without the API`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(serveCmd, syncCmd)
}
