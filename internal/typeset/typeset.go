// Package typeset compiles rendered LaTeX documents into PDF with a locally installed TeX engine.
package typeset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/resume-genie/internal/rendering"
)

// DefaultTimeout bounds a compilation when the caller's context has no deadline
const DefaultTimeout = 60 * time.Second

const jobName = "resume"

// Engine is a TeX engine executable
type Engine string

const (
	// PDFLaTeX handles the layouts built on the standard font setup
	PDFLaTeX Engine = "pdflatex"
	// XeLaTeX is required by layouts that load fontspec
	XeLaTeX Engine = "xelatex"
)

// Result is a compiled document
type Result struct {
	PDF []byte
	// Pages is 0 when the PDF could not be read back
	Pages int
	Log   string
}

// EngineFor returns the engine able to compile the given template variant
func EngineFor(templateID int) Engine {
	if rendering.ResolveTemplate(templateID) == rendering.TemplateModern {
		return XeLaTeX
	}
	return PDFLaTeX
}

// Available reports whether engine is on the PATH
func Available(engine Engine) bool {
	_, err := exec.LookPath(string(engine))
	return err == nil
}

// Compile typesets source in a scratch directory and returns the PDF.
// When the engine reports errors but still writes a PDF, both the result and a CompilationError are returned.
func Compile(ctx context.Context, source string, engine Engine) (*Result, error) {
	if engine == "" {
		engine = PDFLaTeX
	}
	enginePath, err := exec.LookPath(string(engine))
	if err != nil {
		return nil, &CompilationError{
			Message: fmt.Sprintf("%s not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)", engine),
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "typeset-*")
	if err != nil {
		return nil, &CompilationError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer os.RemoveAll(workDir)

	texPath := filepath.Join(workDir, jobName+".tex")
	if err := os.WriteFile(texPath, []byte(source), 0o644); err != nil {
		return nil, &CompilationError{Message: "failed to write LaTeX source", Cause: err}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, enginePath,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", workDir,
		texPath)
	cmd.Dir = workDir
	cmd.WaitDelay = 2 * time.Second

	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output
	runErr := cmd.Run()
	logOutput := output.String()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &CompilationError{Message: "compilation timed out", LogOutput: logOutput, Cause: ctxErr}
	}

	data, err := os.ReadFile(filepath.Join(workDir, jobName+".pdf"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	if err != nil {
		return nil, &CompilationError{Message: "failed to read generated PDF", LogOutput: logOutput, Cause: err}
	}

	result := &Result{PDF: data, Pages: countPages(data), Log: logOutput}
	if runErr != nil {
		return result, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	return result, nil
}

// countPages reads the page count back from the PDF, or 0 if it cannot be parsed
func countPages(data []byte) (pages int) {
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
