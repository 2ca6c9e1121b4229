package gateway

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/airline-ops/recovery-orchestrator/core"
)

// AnthropicGateway implements ModelGateway over the Anthropic Messages
// API, routing tiers onto concrete model names and retrying transient
// failures with the module's standard backoff policy.
type AnthropicGateway struct {
	client          anthropic.Client
	safetyModel     string
	businessModel   string
	arbitratorModel string
	logger          core.Logger
	retry           *core.RetryConfig
	breaker         core.CircuitBreaker
}

// NewAnthropicGateway constructs a gateway against the live Anthropic
// API. arbitratorModel backs TierHighCapacity (used by both the safety
// analyzers and the arbitrator), businessModel backs TierFast, and
// safetyModel backs TierBalanced and any other tier.
func NewAnthropicGateway(apiKey, safetyModel, businessModel, arbitratorModel string, logger core.Logger) *AnthropicGateway {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &AnthropicGateway{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		safetyModel:     safetyModel,
		businessModel:   businessModel,
		arbitratorModel: arbitratorModel,
		logger:          logger,
		retry: &core.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  core.DefaultRetryConfig().InitialDelay,
			MaxDelay:      core.DefaultRetryConfig().MaxDelay,
			BackoffFactor: 2.0,
			JitterEnabled: true,
		},
		breaker: core.NewCircuitBreaker(core.DefaultCircuitBreakerConfig()),
	}
}

func (g *AnthropicGateway) modelFor(tier Tier) string {
	switch tier {
	case TierHighCapacity:
		return g.arbitratorModel
	case TierFast:
		return g.businessModel
	default:
		return g.safetyModel
	}
}

// Complete sends prompt, steered towards schema, to the model for tier,
// retrying transient errors once or twice before surfacing a wrapped
// failure. Only an empty response counts as a failed attempt; the
// returned text is not checked against schema, so a response of the
// wrong shape is left for the caller's parser to reject.
func (g *AnthropicGateway) Complete(ctx context.Context, prompt string, schema Schema, tier Tier) (Result, error) {
	model := g.modelFor(tier)
	steered := prompt
	if schema.Name != "" {
		steered = fmt.Sprintf("%s\n\nRespond with a single JSON object named %q matching: %s", prompt, schema.Name, schema.Description)
	}

	if !g.breaker.CanExecute() {
		return Result{}, core.NewError("gateway.Complete", core.KindUnavailable, "model gateway circuit breaker open", core.ErrCircuitBreakerOpen)
	}

	var result Result
	err := g.breaker.Execute(ctx, func() error {
		return core.Retry(ctx, g.retry, func(attempt int) error {
			msg, callErr := g.client.Messages.New(ctx, anthropic.MessageNewParams{
				Model:     anthropic.Model(model),
				MaxTokens: 4096,
				Messages: []anthropic.MessageParam{
					anthropic.NewUserMessage(anthropic.NewTextBlock(steered)),
				},
			})
			if callErr != nil {
				g.logger.Warn("model gateway call failed", map[string]interface{}{
					"model": model, "attempt": attempt, "error": callErr.Error(),
				})
				return callErr
			}

			text := concatText(msg)
			if len(text) == 0 {
				return fmt.Errorf("empty response from model %s", model)
			}
			result = Result{Raw: []byte(text), ModelUsed: model}
			return nil
		})
	})
	if err != nil {
		return Result{}, core.NewError("gateway.Complete", core.KindInternal, "model call failed after retries", err)
	}
	return result, nil
}

func concatText(msg *anthropic.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}
