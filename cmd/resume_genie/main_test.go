package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-genie/internal/schemas"
	"github.com/jonathan/resume-genie/internal/types"
)

const sampleResume = `Jane Doe
jane@example.com
(555) 123-4567
linkedin.com/in/janedoe

Experience
Senior Engineer, Acme Corp
- Built the billing platform in Go
`

const sampleRecord = `{
  "name": "Jane Doe",
  "email": "jane@example.com",
  "summary": "Backend engineer.",
  "experience": [{"title": "Senior Engineer", "company": "Acme", "achievements": ["Cut latency by 40%"]}],
  "skills": ["Go", "PostgreSQL"]
}`

// executeCommand runs the root command in process with fresh flag values and an isolated environment
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODEL", "LOG_LEVEL", "ENVIRONMENT"} {
		t.Setenv(key, "")
	}
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand(t, "extract", "--in", writeTemp(t, "resume.txt", sampleResume), "--log-level", "loud")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommand_InvalidConfigFile(t *testing.T) {
	configFile := writeTemp(t, "config.yaml", "llm_provider: carrier-pigeon\n")

	_, _, err := executeCommand(t, "extract", "--in", writeTemp(t, "resume.txt", sampleResume), "--config", configFile)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown 'llm_provider'")
}

func TestRootCommand_ProductionLogsJSON(t *testing.T) {
	configFile := writeTemp(t, "config.yaml", "environment: production\n")

	_, stderr, err := executeCommand(t, "extract", "--in", writeTemp(t, "resume.txt", sampleResume), "--config", configFile, "--log-level", "debug")
	require.NoError(t, err)

	var messages []string
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		messages = append(messages, fmt.Sprint(entry["message"]))
	}
	assert.Contains(t, messages, "extracted resume text")
}

func TestExtractCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "extract", "--in", writeTemp(t, "resume.txt", sampleResume))
	require.NoError(t, err)

	var draft types.Draft
	require.NoError(t, json.Unmarshal([]byte(stdout), &draft))
	assert.Equal(t, "Jane Doe", draft.Record.Name)
	assert.Equal(t, "jane@example.com", draft.Record.Email)
	assert.Contains(t, draft.RawText, "billing platform")
}

func TestExtractCommand_OutFileVerbose(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "nested", "draft.json")

	stdout, stderr, err := executeCommand(t, "extract", "--in", writeTemp(t, "resume.txt", sampleResume), "--out", outFile, "--verbose")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Wrote "+outFile)
	assert.Contains(t, stderr, "EXTRACTED DRAFT")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rawText"`)
}

func TestExtractCommand_MissingIn(t *testing.T) {
	_, _, err := executeCommand(t, "extract")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "in" not set`)
}

func TestExtractCommand_MissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "extract", "--in", filepath.Join(t.TempDir(), "missing.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read resume file")
}

func TestRenderCommand_Stdout(t *testing.T) {
	stdout, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", sampleRecord), "--template", "3")
	require.NoError(t, err)

	assert.Contains(t, stdout, `\documentclass`)
	assert.Contains(t, stdout, "Jane Doe")
	assert.Contains(t, stdout, `Cut latency by 40\%`)
}

func TestRenderCommand_OptimizationResult(t *testing.T) {
	result := `{"original": {"record": {"name": "Draft"}}, "optimized": ` + sampleRecord + `, "atsScore": {"overall": 80}}`
	outFile := filepath.Join(t.TempDir(), "resume.tex")

	stdout, _, err := executeCommand(t, "render", "--in", writeTemp(t, "result.json", result), "--out", outFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Backend engineer.")
	assert.NotContains(t, string(data), "Draft")
}

func TestRenderCommand_All(t *testing.T) {
	outDir := t.TempDir()

	stdout, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", sampleRecord), "--all", "--out-dir", outDir)
	require.NoError(t, err)

	for _, name := range []string{"resume_modern.tex", "resume_professional.tex", "resume_classic.tex"} {
		path := filepath.Join(outDir, name)
		assert.FileExists(t, path)
		assert.Contains(t, stdout, "Wrote "+path)
	}
}

func TestRenderCommand_InvalidRecord(t *testing.T) {
	_, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", `{"name": 42}`))

	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"name"}, ve.Fields())
}

func TestRenderCommand_CompileRequiresOut(t *testing.T) {
	_, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", sampleRecord), "--compile")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--compile requires --out")
}

func TestRenderCommand_CompileWithoutEngine(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "resume.tex")
	t.Setenv("PATH", t.TempDir())

	_, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", sampleRecord), "--template", "2", "--out", outFile, "--compile")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdflatex not found in PATH")
	assert.NoFileExists(t, outFile)
}

func TestRenderCommand_AllCompileWithoutEngine(t *testing.T) {
	outDir := t.TempDir()
	t.Setenv("PATH", t.TempDir())

	_, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", sampleRecord), "--all", "--out-dir", outDir, "--compile")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")
	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRenderCommand_AllExcludesOut(t *testing.T) {
	_, _, err := executeCommand(t, "render", "--in", writeTemp(t, "record.json", sampleRecord), "--all", "--out", "x.tex")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestOptimizeCommand_RequiresInput(t *testing.T) {
	_, _, err := executeCommand(t, "optimize")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of the flags in the group [in linkedin] is required")
}

func TestOptimizeCommand_NoAPIKey(t *testing.T) {
	_, _, err := executeCommand(t, "optimize", "--linkedin", "https://linkedin.com/in/janedoe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model API key configured")
}

func TestOptimizeCommand_UnknownTier(t *testing.T) {
	_, _, err := executeCommand(t, "optimize", "--linkedin", "https://linkedin.com/in/janedoe", "--tier", "turbo")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown model tier "turbo"`)
}

func TestOptimizeCommand_MissingJobFile(t *testing.T) {
	_, _, err := executeCommand(t, "optimize",
		"--linkedin", "https://linkedin.com/in/janedoe",
		"--job", filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read job description")
}

func TestOptimizeCommand_InvalidJobURL(t *testing.T) {
	_, _, err := executeCommand(t, "optimize",
		"--linkedin", "https://linkedin.com/in/janedoe",
		"--job-url", "ftp://jobs.example.com/1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
}
