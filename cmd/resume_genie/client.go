package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-genie/internal/llm"
	"github.com/jonathan/resume-genie/internal/optimize"
)

// newOptimizer builds an optimizer from the loaded config.
// Without an API key the optimizer has no client and the returned close func is a no-op.
func newOptimizer(ctx context.Context) (*optimize.Optimizer, func(), error) {
	noop := func() {}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		return optimize.New(nil), noop, nil
	}

	llmConfig, err := llm.ConfigFor(llm.Provider(cfg.Provider()), cfg.Model)
	if err != nil {
		return nil, noop, err
	}
	llmConfig.BaseURL = cfg.OpenAIBaseURL

	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create LLM client: %w", err)
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close LLM client")
		}
	}
	return optimize.New(client), closeClient, nil
}
