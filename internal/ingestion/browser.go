package ingestion

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/chromedp"
)

// MinPostingChars is the shortest fetched posting text taken as the real page.
// Boards that render with JavaScript serve a near-empty shell to plain HTTP clients.
const MinPostingChars = 500

// DefaultRenderTimeout bounds a headless browser render
const DefaultRenderTimeout = 45 * time.Second

// NeedsBrowser reports whether fetched posting text is too short to be the rendered page
func NeedsBrowser(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < MinPostingChars
}

// RenderPage loads a page in headless Chrome and returns its rendered HTML.
// Chrome or Chromium must be installed.
func RenderPage(ctx context.Context, pageURL string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var page string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		// client-side boards fill the description after load
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &page),
	)
	if err != nil {
		return "", &FetchError{URL: pageURL, Message: "browser rendering failed", Cause: err}
	}
	return page, nil
}

// FetchRenderedJobDescription renders a job posting in a headless browser and returns its cleaned main text
func FetchRenderedJobDescription(ctx context.Context, postingURL string, timeout time.Duration) (string, error) {
	if err := checkPostingURL(postingURL); err != nil {
		return "", err
	}

	page, err := RenderPage(ctx, postingURL, timeout)
	if err != nil {
		return "", err
	}

	text, err := mainText(page, boardSelectors[DetectBoard(postingURL)])
	if err != nil {
		return "", &FetchError{URL: postingURL, Message: "failed to extract text", Cause: err}
	}
	return CleanText(text), nil
}
