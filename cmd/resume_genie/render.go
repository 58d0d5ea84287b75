package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-genie/internal/rendering"
	"github.com/jonathan/resume-genie/internal/schemas"
	"github.com/jonathan/resume-genie/internal/types"
	"github.com/jonathan/resume-genie/internal/typeset"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume record as a LaTeX document",
	Long: "Validates a resume record JSON file (or a whole optimization result) and renders it with one of the " +
		"LaTeX layouts: 1 modern, 2 professional, 3 classic. Optionally compiles the document to PDF.",
	RunE: runRender,
}

var (
	renderInput    string
	renderTemplate int
	renderOutput   string
	renderAll      bool
	renderOutDir   string
	renderCompile  bool
)

var allTemplates = []rendering.TemplateID{
	rendering.TemplateModern,
	rendering.TemplateProfessional,
	rendering.TemplateClassic,
}

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to the resume record JSON file (required)")
	renderCmd.Flags().IntVarP(&renderTemplate, "template", "t", int(rendering.TemplateModern), "Layout number: 1 modern, 2 professional, 3 classic")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to the output .tex file (default stdout)")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render every layout into --out-dir")
	renderCmd.Flags().StringVar(&renderOutDir, "out-dir", ".", "Output directory used with --all")
	renderCmd.Flags().BoolVar(&renderCompile, "compile", false, "Also compile each .tex file to PDF")

	if err := renderCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
	renderCmd.MarkFlagsMutuallyExclusive("all", "out")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(renderInput)
	if err != nil {
		return fmt.Errorf("failed to read resume record: %w", err)
	}
	record, err := schemas.DecodeResumeRecord(data)
	if err != nil {
		return err
	}

	if renderCompile {
		if !renderAll && renderOutput == "" {
			return fmt.Errorf("--compile requires --out")
		}
		if err := checkEngines(); err != nil {
			return err
		}
	}

	if renderAll {
		return renderEveryLayout(cmd, record)
	}

	source, err := rendering.Render(record, renderTemplate)
	if err != nil {
		return err
	}
	if renderOutput == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), source)
		return err
	}

	if err := writeFile(renderOutput, []byte(source)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", renderOutput)

	if renderCompile {
		return compileTo(cmd, source, renderTemplate, renderOutput)
	}
	return nil
}

// renderEveryLayout renders each layout concurrently into renderOutDir
func renderEveryLayout(cmd *cobra.Command, record types.ResumeRecord) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	paths := make([]string, len(allTemplates))

	for i, id := range allTemplates {
		i, id := i, id
		g.Go(func() error {
			source, err := rendering.Render(record, int(id))
			if err != nil {
				return err
			}
			path := filepath.Join(renderOutDir, rendering.TemplateFilename(int(id), time.Time{}, false))
			if err := writeFile(path, []byte(source)); err != nil {
				return err
			}
			paths[i] = path

			if renderCompile {
				return compileFile(ctx, source, int(id), path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	for _, path := range paths {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}

// checkEngines fails fast when an engine the requested layouts need is missing
func checkEngines() error {
	ids := []int{renderTemplate}
	if renderAll {
		ids = ids[:0]
		for _, id := range allTemplates {
			ids = append(ids, int(id))
		}
	}
	for _, id := range ids {
		if engine := typeset.EngineFor(id); !typeset.Available(engine) {
			return fmt.Errorf("%s not found in PATH, install a LaTeX distribution or drop --compile", engine)
		}
	}
	return nil
}

// compileTo compiles source and reports the PDF written next to texPath
func compileTo(cmd *cobra.Command, source string, templateID int, texPath string) error {
	if err := compileFile(cmd.Context(), source, templateID, texPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", pdfPath(texPath))
	return nil
}

// compileFile compiles source with the engine its layout needs and writes the PDF beside texPath
func compileFile(ctx context.Context, source string, templateID int, texPath string) error {
	engine := typeset.EngineFor(templateID)
	result, err := typeset.Compile(ctx, source, engine)
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", texPath).Msg("LaTeX compilation reported errors")
	}

	logger.Info().
		Str("engine", string(engine)).
		Str("file", texPath).
		Int("pages", result.Pages).
		Msg("compiled resume")
	if result.Pages > 1 {
		logger.Warn().Int("pages", result.Pages).Str("file", texPath).Msg("resume runs past one page")
	}

	return writeFile(pdfPath(texPath), result.PDF)
}

func pdfPath(texPath string) string {
	return strings.TrimSuffix(texPath, filepath.Ext(texPath)) + ".pdf"
}
