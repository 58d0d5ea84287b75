// Package rendering turns a ResumeRecord into a complete LaTeX document in one of three layouts.
package rendering

import "strings"

// latexEscapes maps each LaTeX special character to its literal form
var latexEscapes = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'&':  `\&`,
	'%':  `\%`,
	'#':  `\#`,
	'^':  `\textasciicircum{}`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
}

// EscapeLaTeX escapes special LaTeX characters in text.
// It makes a single pass, so the backslashes it inserts are never escaped again.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		if esc, ok := latexEscapes[r]; ok {
			result.WriteString(esc)
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

// escapeEach escapes every element and drops the ones that are blank
func escapeEach(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, EscapeLaTeX(item))
	}
	return out
}
