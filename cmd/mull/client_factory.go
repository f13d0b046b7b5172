package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mull-cli/mull/internal/config"
	"github.com/mull-cli/mull/internal/llm"
)

// buildCompleter creates the retrying completer from configuration. The
// modelOverride, when non-empty, takes precedence over the configured model.
// The returned client exposes the token tracker for usage reporting.
func buildCompleter(cfg *config.Config, modelOverride string) (llm.Completer, *llm.Client, error) {
	model := cfg.Anthropic.Model
	if modelOverride != "" {
		model = modelOverride
	}

	var apiKey string
	if !cfg.Bedrock.Enabled {
		var err error
		apiKey, err = config.ResolveAPIKey(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%w; set ANTHROPIC_API_KEY or run: mull config anthropic.api_key <key>", err)
		}
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Bedrock.Enabled,
		AWSRegion:     cfg.Bedrock.Region,
		AWSProfile:    cfg.Bedrock.Profile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create completion client: %w", err)
	}

	completer := llm.WithRetry(client, llm.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	})

	return completer, client, nil
}
