// Package extraction provides a cheap, regex-based first reading of raw resume text.
// Its output is a fallback: the optimizer is expected to override most fields.
// No function in this package returns an error; no match yields "" or an empty slice.
package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-genie/internal/types"
)

// LinkKind selects which profile link ExtractProfileLink looks for
type LinkKind string

const (
	// LinkedIn matches linkedin.com/in/<slug>
	LinkedIn LinkKind = "linkedin"
	// GitHub matches github.com/<slug>
	GitHub LinkKind = "github"
)

const (
	skillsWindowChars = 500
	minSkillChars     = 3
	maxSkillChars     = 30
	maxSkills         = 15

	minNameChars = 3
	maxNameChars = 50
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// used by the name filter: a bare 10-digit shape anywhere on the line
	phoneShape = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)

	profilePatterns = map[LinkKind]*regexp.Regexp{
		LinkedIn: regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`),
		GitHub:   regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[\w-]+`),
	}
	schemePattern = regexp.MustCompile(`(?i)^https?://`)

	skillsHeading  = regexp.MustCompile(`(?i)(?:technical\s+)?(?:skills?|competenc(?:ies|y))[\s:]*`)
	skillSeparator = regexp.MustCompile(`[,;•\n]`)

	linkedInUsername = regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#\s]+)`)
)

// ExtractEmail returns the first email address in text
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone returns the first phone-number-shaped substring, verbatim
func ExtractPhone(text string) string {
	return phonePattern.FindString(text)
}

// ExtractProfileLink returns the first profile URL of the given kind.
// A match without a scheme is returned with an https:// prefix.
func ExtractProfileLink(text string, kind LinkKind) string {
	pattern, ok := profilePatterns[kind]
	if !ok {
		return ""
	}

	match := pattern.FindString(text)
	if match == "" {
		return ""
	}
	if schemePattern.MatchString(match) {
		return match
	}
	return "https://" + match
}

// ExtractName returns the first line that plausibly holds the candidate's name.
// This misfires on resumes that open with a tagline or a section header.
func ExtractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		n := utf8.RuneCountInString(line)
		if n <= minNameChars || n >= maxNameChars {
			continue
		}
		if strings.Contains(line, "@") || phoneShape.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "resume") || strings.Contains(lower, "curriculum") {
			continue
		}
		return line
	}
	return ""
}

// ExtractSkillsSection reads a fixed window after the first skills heading and splits it
// into at most 15 skill names. It never looks for the end of the section.
func ExtractSkillsSection(text string) []string {
	loc := skillsHeading.FindStringIndex(text)
	if loc == nil {
		return []string{}
	}

	window := []rune(text[loc[1]:])
	if len(window) > skillsWindowChars {
		window = window[:skillsWindowChars]
	}

	skills := make([]string, 0, maxSkills)
	for _, piece := range skillSeparator.Split(string(window), -1) {
		piece = strings.TrimSpace(piece)
		n := utf8.RuneCountInString(piece)
		if n < minSkillChars || n > maxSkillChars {
			continue
		}
		skills = append(skills, piece)
		if len(skills) == maxSkills {
			break
		}
	}
	return skills
}

// LinkedInUsername returns the profile slug of a LinkedIn URL, or "professional"
func LinkedInUsername(url string) string {
	m := linkedInUsername.FindStringSubmatch(url)
	if m == nil {
		return "professional"
	}
	return m[1]
}

// ExtractDraft runs every heuristic over text and assembles a shaped, partial record
func ExtractDraft(text string) types.Draft {
	record := types.NewResumeRecord()
	record.Name = ExtractName(text)
	record.Email = ExtractEmail(text)
	record.Phone = ExtractPhone(text)

	for _, skill := range ExtractSkillsSection(text) {
		record.Skills = append(record.Skills, types.BareSkill(skill))
	}

	links := []types.Link{}
	for _, kind := range []LinkKind{LinkedIn, GitHub} {
		if url := ExtractProfileLink(text, kind); url != "" {
			links = append(links, types.Link{Type: string(kind), URL: url})
		}
	}

	return types.Draft{
		Record:  record,
		Links:   links,
		RawText: text,
	}
}
