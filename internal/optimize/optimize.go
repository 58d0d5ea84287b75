// Package optimize asks a language model to parse, score and rewrite a resume,
// then folds the model's answer back into a ResumeRecord.
package optimize

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/resume-genie/internal/ingestion"
	"github.com/jonathan/resume-genie/internal/llm"
	"github.com/jonathan/resume-genie/internal/logging"
	"github.com/jonathan/resume-genie/internal/types"
)

// Input is one optimization request.
// A non-empty LinkedInURL selects the LinkedIn prompt; otherwise Draft is sent.
type Input struct {
	Draft          types.Draft
	LinkedInURL    string
	JobDescription string
}

// Optimizer runs optimization requests against a model client
type Optimizer struct {
	client llm.Client
	tier   llm.ModelTier
}

// New creates an optimizer. A nil client is allowed: every request then
// fails with an APICallError, so a server without credentials can still start.
func New(client llm.Client) *Optimizer {
	return &Optimizer{client: client, tier: llm.TierStandard}
}

// WithTier returns a copy of the optimizer that uses tier
func (o *Optimizer) WithTier(tier llm.ModelTier) *Optimizer {
	c := *o
	c.tier = tier
	return &c
}

// Available reports whether the optimizer has a model client
func (o *Optimizer) Available() bool {
	return o != nil && o.client != nil
}

// Optimize sends the input to the model and returns the transformed result
func (o *Optimizer) Optimize(ctx context.Context, in Input) (*types.OptimizationResult, error) {
	if !o.Available() {
		return nil, &APICallError{Message: "API key is required", Cause: llm.ErrMissingAPIKey}
	}

	logger := logging.FromContext(ctx)
	jobDescription := ingestion.JobDescriptionText(in.JobDescription)
	linkedInURL := strings.TrimSpace(in.LinkedInURL)

	var (
		prompt   string
		original types.Draft
		err      error
	)
	if linkedInURL != "" {
		original = LinkedInDraft(linkedInURL)
		prompt, err = buildLinkedInPrompt(linkedInURL, jobDescription)
	} else {
		original = in.Draft
		prompt, err = buildResumePrompt(original, jobDescription)
	}
	if err != nil {
		return nil, &APICallError{Message: "failed to build prompt", Cause: err}
	}
	if phrases := SuspiciousPhrases(jobDescription + "\n" + original.RawText); len(phrases) > 0 {
		logger.Warn().Strs("phrases", phrases).Msg("possible prompt injection in submitted content")
	}

	start := time.Now()
	raw, err := o.client.GenerateJSON(ctx, prompt, o.tier)
	if err != nil {
		logger.Error().Err(err).Str("model", o.client.GetModel(o.tier)).Msg("optimization request failed")
		return nil, &APICallError{Message: "model request failed", Cause: err}
	}
	logger.Debug().
		Str("model", o.client.GetModel(o.tier)).
		Dur("elapsed", time.Since(start)).
		Int("response_bytes", len(raw)).
		Msg("optimization response received")

	result, err := ParseResponse(raw, original)
	if err != nil {
		logger.Warn().Err(err).Msg("unusable optimization response")
		return nil, err
	}
	return result, nil
}
