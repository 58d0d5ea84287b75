package optimize

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-genie/internal/extraction"
	"github.com/jonathan/resume-genie/internal/prompts"
	"github.com/jonathan/resume-genie/internal/types"
)

const promptFile = "optimize.json"

// minJobDescriptionChars is the length a trimmed job description must exceed to be sent with a resume
const minJobDescriptionChars = 50

// HasJobDescription reports whether a job description is long enough to tailor a resume against
func HasJobDescription(jobDescription string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(jobDescription)) > minJobDescriptionChars
}

// LinkedInDraft is the stand-in draft for a LinkedIn-only request
func LinkedInDraft(linkedInURL string) types.Draft {
	return types.Draft{
		Record:  types.NewResumeRecord(),
		Links:   []types.Link{{Type: string(extraction.LinkedIn), URL: linkedInURL}},
		RawText: fmt.Sprintf("LinkedIn Profile Analysis Request\n\nProfile URL: %s\nUsername: %s",
			linkedInURL, extraction.LinkedInUsername(linkedInURL)),
	}
}

func buildLinkedInPrompt(linkedInURL, jobDescription string) (string, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	sections, err := jobSections(jobDescription, jobDescription != "")
	if err != nil {
		return "", err
	}

	sections["LinkedInURL"] = linkedInURL
	sections["Username"] = extraction.LinkedInUsername(linkedInURL)
	return prompts.Render(promptFile, "linkedin-profile", sections)
}

func buildResumePrompt(draft types.Draft, jobDescription string) (string, error) {
	resumeJSON, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode resume draft: %w", err)
	}

	sections, err := jobSections(strings.TrimSpace(jobDescription), HasJobDescription(jobDescription))
	if err != nil {
		return "", err
	}

	sections["ResumeJSON"] = quoteExternal(string(resumeJSON), "resume")
	return prompts.Render(promptFile, "resume-optimize", sections)
}

// jobSections fills the fragments shared by both prompts
func jobSections(jobDescription string, include bool) (map[string]string, error) {
	responseFormat, err := prompts.Get(promptFile, "response-format")
	if err != nil {
		return nil, err
	}

	sections := map[string]string{
		"JobSection":     "",
		"ResponseFormat": responseFormat,
	}

	taskKey := "task-without-job"
	if include {
		taskKey = "task-with-job"
		sections["JobSection"], err = prompts.Render(promptFile, "job-section", map[string]string{
			"JobDescription": quoteExternal(jobDescription, "job description"),
		})
		if err != nil {
			return nil, err
		}
	}

	if sections["TaskSection"], err = prompts.Get(promptFile, taskKey); err != nil {
		return nil, err
	}
	return sections, nil
}
