package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultFetchTimeout bounds a job posting download
const DefaultFetchTimeout = 30 * time.Second

const (
	userAgent       = "Mozilla/5.0 (compatible; ResumeGenie/1.0)"
	maxPostingBytes = 2 << 20
)

// boilerplate removed from every page before text extraction
const noiseSelector = "nav, footer, header, script, style, noscript, form, .cookie-banner, .cookie-consent, " +
	".eeo-statement, .voluntary-disclosure, .social-share, .apply-button-container, .application-form"

// Board is a job board whose markup is known
type Board string

// Known boards; BoardUnknown gets generic job posting selectors
const (
	BoardGreenhouse Board = "greenhouse"
	BoardLever      Board = "lever"
	BoardWorkday    Board = "workday"
	BoardUnknown    Board = "unknown"
)

var boardSelectors = map[Board][]string{
	BoardGreenhouse: {".job__description.body", ".job__description", "#content", ".job-post-container"},
	BoardLever:      {".posting-page", ".posting-description", ".content"},
	BoardWorkday:    {"[data-automation-id='jobDescription']", ".job-description"},
	BoardUnknown: {
		".job-description", ".job-content", "#job-description", ".posting-content", ".job-details",
		"[data-testid='job-description']", "main", "article", ".content", "#content",
	},
}

// FetchError represents a failed job posting download
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DetectBoard identifies the job board behind a posting URL
func DetectBoard(rawURL string) Board {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return BoardUnknown
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.Contains(host, "greenhouse.io"):
		return BoardGreenhouse
	case strings.Contains(host, "lever.co"):
		return BoardLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return BoardWorkday
	default:
		return BoardUnknown
	}
}

// JobDescriptionText returns the job description as cleaned plain text.
// Markup pasted from a job board is reduced to its readable text.
func JobDescriptionText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if !mimetype.Detect([]byte(raw)).Is("text/html") {
		return CleanText(raw)
	}

	text, err := mainText(raw, boardSelectors[BoardUnknown])
	if err != nil {
		return CleanText(raw)
	}
	return CleanText(text)
}

// FetchJobDescription downloads a job posting and returns its cleaned main text
func FetchJobDescription(ctx context.Context, client *http.Client, postingURL string) (string, error) {
	if err := checkPostingURL(postingURL); err != nil {
		return "", err
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postingURL, nil)
	if err != nil {
		return "", &FetchError{URL: postingURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: postingURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: postingURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPostingBytes))
	if err != nil {
		return "", &FetchError{URL: postingURL, Message: "failed to read response body", Cause: err}
	}

	text, err := mainText(string(body), boardSelectors[DetectBoard(postingURL)])
	if err != nil {
		return "", &FetchError{URL: postingURL, Message: "failed to extract text", Cause: err}
	}
	return CleanText(text), nil
}

// checkPostingURL accepts absolute http and https URLs only
func checkPostingURL(postingURL string) error {
	parsed, err := url.Parse(postingURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return &FetchError{URL: postingURL, Message: "invalid URL", Cause: err}
	}
	return nil
}

// mainText strips boilerplate and returns the text of the first matching content selector, or of the body
func mainText(page string, selectors []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	content := doc.Find("body")
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	// block elements end a line
	content.Find("p, li, br, h1, h2, h3, h4, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return content.Text(), nil
}
