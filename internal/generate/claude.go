// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package generate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/darth-dodo/cocktail-cache/internal/logging"
	"github.com/darth-dodo/cocktail-cache/internal/metrics"
	"github.com/darth-dodo/cocktail-cache/internal/validation"
)

// ClaudeConfig configures the Anthropic-backed generator.
type ClaudeConfig struct {
	// APIKey is the Anthropic API key. If empty, ANTHROPIC_API_KEY is used.
	APIKey string

	// Model is the Claude model id. Default: claude-haiku-4-5-20251001.
	Model string

	// MaxTokens bounds each response. Default: 1024.
	MaxTokens int

	// Persona is the system prompt prefix. It is versioned external data;
	// the pipeline never branches on its content.
	Persona string

	// Breaker settings. Zero values take the defaults below.
	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32
}

// ClaudeGenerator produces recipes and shopping suggestions via the
// Anthropic Messages API. Every call runs through a circuit breaker; when
// the breaker is open, calls fail immediately as GenerationErrors without
// burning quota against a dependency that is already struggling.
type ClaudeGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	persona   string
	breaker   *gobreaker.CircuitBreaker[string]
}

// NewClaudeGenerator creates a Claude-backed generator.
func NewClaudeGenerator(cfg ClaudeConfig) (*ClaudeGenerator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is not set")
	}

	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaudeHaiku4_5_20251001)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	if cfg.BreakerMaxRequests == 0 {
		cfg.BreakerMaxRequests = 2
	}
	if cfg.BreakerInterval == 0 {
		cfg.BreakerInterval = time.Minute
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "claude-generator",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("generation circuit breaker state change")
		},
	}

	return &ClaudeGenerator{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		persona:   cfg.Persona,
		breaker:   gobreaker.NewCircuitBreaker[string](settings),
	}, nil
}

// Recipe implements Generator.
func (g *ClaudeGenerator) Recipe(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	start := time.Now()
	text, err := g.complete(ctx, recipePrompt(req))
	metrics.GenerationDuration.WithLabelValues("recipe").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationCallsTotal.WithLabelValues("recipe", "error").Inc()
		return nil, newError("recipe", err)
	}

	var result RecipeResult
	if err := decodeStrict(text, &result); err != nil {
		metrics.GenerationCallsTotal.WithLabelValues("recipe", "error").Inc()
		return nil, newError("recipe", err)
	}
	result.ItemID = req.ItemID

	metrics.GenerationCallsTotal.WithLabelValues("recipe", "ok").Inc()
	return &result, nil
}

// ShoppingSuggestion implements Generator.
func (g *ClaudeGenerator) ShoppingSuggestion(ctx context.Context, req ShoppingRequest) (*ShoppingResult, error) {
	start := time.Now()
	text, err := g.complete(ctx, shoppingPrompt(req))
	metrics.GenerationDuration.WithLabelValues("shopping").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationCallsTotal.WithLabelValues("shopping", "error").Inc()
		return nil, newError("shopping", err)
	}

	var result ShoppingResult
	if err := decodeStrict(text, &result); err != nil {
		metrics.GenerationCallsTotal.WithLabelValues("shopping", "error").Inc()
		return nil, newError("shopping", err)
	}

	metrics.GenerationCallsTotal.WithLabelValues("shopping", "ok").Inc()
	return &result, nil
}

// complete runs one Messages call through the circuit breaker and returns
// the concatenated text blocks of the response.
func (g *ClaudeGenerator) complete(ctx context.Context, userPrompt string) (string, error) {
	return g.breaker.Execute(func() (string, error) {
		resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     g.model,
			MaxTokens: g.maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: g.persona},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
			},
		})
		if err != nil {
			return "", fmt.Errorf("messages call: %w", err)
		}

		var out strings.Builder
		for _, block := range resp.Content {
			if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
				out.WriteString(variant.Text)
			}
		}
		if out.Len() == 0 {
			return "", fmt.Errorf("empty response")
		}
		return out.String(), nil
	})
}

// decodeStrict extracts the JSON object from a model response, decodes it
// into target and validates the schema. Anything short of a schema-valid
// document is an error; partial output is never accepted.
func decodeStrict(text string, target interface{}) error {
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if verr := validation.ValidateStruct(target); verr != nil {
		return fmt.Errorf("schema-invalid response: %s", verr.Error())
	}
	return nil
}
