package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linkboard",
	Short: "Link-sharing API with live subscriptions",
	Long: `linkboard serves the link-sharing API: users sign up, post links,
comment and vote on them, and follow new links and votes live over
server-sent events or websockets.

Running without a subcommand is the same as "linkboard serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
