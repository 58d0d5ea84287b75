package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-genie/internal/extraction"
	"github.com/jonathan/resume-genie/internal/ingestion"
	"github.com/jonathan/resume-genie/internal/llm"
	"github.com/jonathan/resume-genie/internal/observability"
	"github.com/jonathan/resume-genie/internal/optimize"
	"github.com/jonathan/resume-genie/internal/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Score and rewrite a resume with a language model",
	Long: "Extracts a resume file (or takes a LinkedIn profile URL), optionally reads a job description from a file " +
		"or a job posting URL, and writes the model's optimization result as JSON.",
	RunE: runOptimize,
}

var (
	optimizeInput    string
	optimizeLinkedIn string
	optimizeJobFile  string
	optimizeJobURL   string
	optimizeBrowser  bool
	optimizeOutput   string
	optimizeVerbose  bool
	optimizeTier     string
)

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeInput, "in", "i", "", "Path to the resume file")
	optimizeCmd.Flags().StringVar(&optimizeLinkedIn, "linkedin", "", "LinkedIn profile URL to optimize instead of a file")
	optimizeCmd.Flags().StringVarP(&optimizeJobFile, "job", "j", "", "Path to a job description text file")
	optimizeCmd.Flags().StringVar(&optimizeJobURL, "job-url", "", "URL of a job posting to fetch")
	optimizeCmd.Flags().BoolVar(&optimizeBrowser, "browser", false, "Render --job-url in headless Chrome when the plain fetch finds too little text")
	optimizeCmd.Flags().StringVarP(&optimizeOutput, "out", "o", "", "Path to the output JSON file (default stdout)")
	optimizeCmd.Flags().StringVar(&optimizeTier, "tier", string(llm.TierStandard), "Model tier: lite, standard or advanced")
	optimizeCmd.Flags().BoolVarP(&optimizeVerbose, "verbose", "v", false, "Print a summary of the result")

	optimizeCmd.MarkFlagsOneRequired("in", "linkedin")
	optimizeCmd.MarkFlagsMutuallyExclusive("in", "linkedin")
	optimizeCmd.MarkFlagsMutuallyExclusive("job", "job-url")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	tier, err := llm.ParseTier(optimizeTier)
	if err != nil {
		return err
	}

	in := optimize.Input{LinkedInURL: optimizeLinkedIn}
	if optimizeInput != "" {
		draft, err := draftFromFile(optimizeInput)
		if err != nil {
			return err
		}
		in.Draft = draft
	}

	jobDescription, err := readJobDescription(ctx)
	if err != nil {
		return err
	}
	in.JobDescription = jobDescription

	optimizer, closeClient, err := newOptimizer(ctx)
	if err != nil {
		return err
	}
	defer closeClient()
	optimizer = optimizer.WithTier(tier)
	if !optimizer.Available() {
		return fmt.Errorf("no model API key configured: set GEMINI_API_KEY or OPENAI_API_KEY")
	}

	if timeout := cfg.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Info().
		Str("tier", string(tier)).
		Bool("linkedin", in.LinkedInURL != "").
		Bool("job_description", optimize.HasJobDescription(in.JobDescription)).
		Msg("optimizing resume")

	result, err := optimizer.Optimize(ctx, in)
	if err != nil {
		return err
	}

	if optimizeVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintOptimization(result)
	}

	return writeJSON(cmd, optimizeOutput, result)
}

// draftFromFile extracts the text of a resume file and its heuristic draft
func draftFromFile(path string) (types.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Draft{}, fmt.Errorf("failed to read resume file: %w", err)
	}
	text, _, err := ingestion.ExtractFile(data, filepath.Base(path))
	if err != nil {
		return types.Draft{}, err
	}
	return extraction.ExtractDraft(text), nil
}

// readJobDescription loads the job description from --job or --job-url; neither yields ""
func readJobDescription(ctx context.Context) (string, error) {
	switch {
	case optimizeJobFile != "":
		data, err := os.ReadFile(optimizeJobFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return ingestion.JobDescriptionText(string(data)), nil
	case optimizeJobURL != "":
		return fetchJobPosting(ctx, optimizeJobURL)
	default:
		return "", nil
	}
}

// fetchJobPosting downloads a job posting, falling back to a browser render when --browser is set
func fetchJobPosting(ctx context.Context, postingURL string) (string, error) {
	text, err := ingestion.FetchJobDescription(ctx, nil, postingURL)
	if !optimizeBrowser || (err == nil && !ingestion.NeedsBrowser(text)) {
		if err == nil {
			logger.Debug().Str("url", postingURL).Int("chars", len(text)).Msg("fetched job posting")
		}
		return text, err
	}

	if err != nil {
		logger.Warn().Err(err).Str("url", postingURL).Msg("plain fetch failed, rendering in browser")
	} else {
		logger.Info().Str("url", postingURL).Int("chars", len(text)).Msg("posting looks script rendered, rendering in browser")
	}

	rendered, renderErr := ingestion.FetchRenderedJobDescription(ctx, postingURL, ingestion.DefaultRenderTimeout)
	if renderErr != nil {
		if err == nil {
			logger.Warn().Err(renderErr).Msg("browser render failed, using fetched text")
			return text, nil
		}
		return "", renderErr
	}
	return rendered, nil
}
