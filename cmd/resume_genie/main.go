// Package main provides the resume_genie command line tool and HTTP API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-genie/internal/config"
	"github.com/jonathan/resume-genie/internal/logging"
)

var (
	configPath string
	logLevel   string

	// set by loadRuntime before any subcommand runs
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "resume_genie",
	Short: "Resume optimization and LaTeX export",
	Long: "Resume Genie extracts text from PDF and DOCX resumes, asks a language model to score and rewrite them " +
		"against a job description, and renders the result as a LaTeX document in one of three layouts.",
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// loadRuntime reads .env, the config file and the environment, then builds the logger
func loadRuntime(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	loaded, err := config.Load(configPath, os.LookupEnv)
	if err != nil {
		return err
	}
	if logLevel != "" {
		if _, err := logging.ParseLevel(logLevel); err != nil {
			return err
		}
		loaded.LogLevel = logLevel
	}

	cfg = loaded
	format := logging.FormatConsole
	if cfg.IsProduction() {
		format = logging.FormatJSON
	}
	logger = logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: format,
		Out:    cmd.ErrOrStderr(),
	})
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
