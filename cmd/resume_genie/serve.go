package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-genie/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the upload, extract and LaTeX export endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	optimizer, closeClient, err := newOptimizer(cmd.Context())
	if err != nil {
		return err
	}
	defer closeClient()

	return server.New(cfg, optimizer, logger).Start(cmd.Context())
}
