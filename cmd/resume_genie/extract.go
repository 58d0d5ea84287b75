package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-genie/internal/extraction"
	"github.com/jonathan/resume-genie/internal/ingestion"
	"github.com/jonathan/resume-genie/internal/observability"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a draft resume record from a file",
	Long:  "Reads a PDF, DOCX or text resume, extracts its text and runs the heuristic field extraction. No model is called.",
	RunE:  runExtract,
}

var (
	extractInput   string
	extractOutput  string
	extractVerbose bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path to the resume file (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Path to the output JSON file (default stdout)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print a summary of the extracted draft")

	if err := extractCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(extractInput)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	text, docType, err := ingestion.ExtractFile(data, filepath.Base(extractInput))
	if err != nil {
		return err
	}
	draft := extraction.ExtractDraft(text)

	logger.Debug().
		Str("file", extractInput).
		Str("type", string(docType)).
		Int("chars", len(text)).
		Msg("extracted resume text")

	if extractVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintDraft(&draft)
	}

	return writeJSON(cmd, extractOutput, draft)
}

// writeJSON writes v as indented JSON to path, or to the command's stdout when path is empty
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// writeFile writes data to path, creating parent directories
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
