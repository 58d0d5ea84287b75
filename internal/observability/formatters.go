// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-genie/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "..."
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// writeList writes up to maxItemsToShow items under a heading
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintDraft outputs a human-readable summary of the heuristic extraction.
func (p *Printer) PrintDraft(draft *types.Draft) {
	if draft == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:   %s\n", orDash(draft.Record.Name)))
	sb.WriteString(fmt.Sprintf("Email:  %s\n", orDash(draft.Record.Email)))
	sb.WriteString(fmt.Sprintf("Phone:  %s\n", orDash(draft.Record.Phone)))
	for _, link := range draft.Links {
		sb.WriteString(fmt.Sprintf("%-7s %s\n", link.Type+":", link.URL))
	}
	sb.WriteString("\n")

	writeList(&sb, "Skills", types.SkillNames(draft.Record.Skills))
	sb.WriteString(fmt.Sprintf("Raw text: %d characters", utf8.RuneCountInString(draft.RawText)))

	p.printBox("EXTRACTED DRAFT", sb.String())
}

// PrintRecord outputs the sections of a resume record with their entry counts.
func (p *Printer) PrintRecord(title string, record *types.ResumeRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", orDash(record.Name)))
	if record.Summary != "" {
		sb.WriteString(fmt.Sprintf("%s\n", record.Summary))
	}
	sb.WriteString("\n")

	if len(record.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(record.Experience)))
		count := min(len(record.Experience), maxItemsToShow)
		for _, exp := range record.Experience[:count] {
			sb.WriteString(fmt.Sprintf("  • %s, %s (%d bullets)\n", orDash(exp.Title), orDash(exp.Company), len(exp.Achievements)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Education: %d  Projects: %d  Certifications: %d  Honors: %d\n",
		len(record.Education), len(record.Projects), len(record.Certifications), len(record.Honors)))
	sb.WriteString(fmt.Sprintf("Skills: %d", len(record.Skills)))

	p.printBox(title, sb.String())
}

// PrintATSScore outputs the overall score and its breakdown.
func (p *Printer) PrintATSScore(score *types.ATSScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall: %.0f/100", score.Overall))
	if score.Grade != "" {
		sb.WriteString(fmt.Sprintf("  Grade: %s", score.Grade))
	}
	sb.WriteString("\n")
	if score.Verdict != "" {
		sb.WriteString(score.Verdict + "\n")
	}
	sb.WriteString("\n")

	keys := make([]string, 0, len(score.Breakdown))
	for key := range score.Breakdown {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("  %-20s %5.0f\n", key, score.Breakdown[key]))
	}
	if len(score.Breakdown) > 0 {
		sb.WriteString("\n")
	}

	writeList(&sb, "Strengths", score.Strengths)
	writeList(&sb, "Weaknesses", score.Weaknesses)

	p.printBox("ATS SCORE", sb.String())
}

// PrintSkillsAnalysis outputs the top ranked skills.
func (p *Printer) PrintSkillsAnalysis(analysis *types.SkillsAnalysis) {
	if analysis == nil || len(analysis.Ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total skills ranked: %d\n\n", len(analysis.Ranked)))

	count := min(len(analysis.Ranked), maxItemsToShow)
	for i, skill := range analysis.Ranked[:count] {
		sb.WriteString(fmt.Sprintf("#%d  %s  %.0f", i+1, skill.Skill, skill.Relevance))
		switch {
		case skill.InResume && skill.InJobDescription:
			sb.WriteString("  matched")
		case !skill.InResume:
			sb.WriteString("  suggested")
		}
		sb.WriteString("\n")
	}
	if len(analysis.Ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more skills\n", len(analysis.Ranked)-maxItemsToShow))
	}
	sb.WriteString("\n")

	writeList(&sb, "Missing", analysis.Missing)

	p.printBox("TOP RANKED SKILLS", sb.String())
}

// PrintSuggestions outputs the improvement suggestions.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSuggestions(suggestions []types.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO SUGGESTIONS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d suggestions:\n\n", len(suggestions)))

	for i, s := range suggestions {
		label := s.Category
		if s.Priority != "" {
			label = fmt.Sprintf("%s [%s]", label, s.Priority)
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", label))
		sb.WriteString(fmt.Sprintf("  %s\n", s.Message))
		if i < len(suggestions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SUGGESTIONS", sb.String())
}

// PrintKeywords outputs keyword coverage against the job description.
func (p *Printer) PrintKeywords(keywords *types.Keywords) {
	if keywords == nil || (len(keywords.Extracted) == 0 && len(keywords.Missing) == 0) {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match: %.0f%%\n\n", keywords.MatchPercentage))
	writeList(&sb, "Present", keywords.Present)
	writeList(&sb, "Missing", keywords.Missing)

	p.printBox("KEYWORDS", sb.String())
}

// PrintOptimization outputs every section of an optimization result.
func (p *Printer) PrintOptimization(result *types.OptimizationResult) {
	if result == nil {
		return
	}
	p.PrintRecord("OPTIMIZED RESUME", &result.Resume)
	p.PrintATSScore(&result.ATSScore)
	p.PrintSkillsAnalysis(&result.SkillsAnalysis)
	p.PrintKeywords(&result.Keywords)
	p.PrintSuggestions(result.Suggestions)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
