package ingestion

import (
	"regexp"
	"strings"
)

var (
	inlineSpace  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	excessBlanks = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes extracted text while keeping its line structure.
// Line endings become LF, runs of inline whitespace collapse to one space,
// bullet indentation survives and at most one blank line separates blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := excessBlanks.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	body := inlineSpace.ReplaceAllString(trimmed, " ")
	if isBulletLine(trimmed) {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + body
	}
	return body
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· ", "▪ "} {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}
