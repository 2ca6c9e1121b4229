// Package gateway provides the opaque Model Gateway adapter: an
// interface around an LLM call that accepts a prompt and a result
// schema and returns structured data, plus a concrete Anthropic-backed
// implementation and a deterministic fake for tests. Modeled on the
// AIClient abstraction used across this codebase, generalized from
// free-text completion to schema-constrained structured output.
package gateway

import (
	"context"
)

// Tier selects which model class handles a call: safety analyzers and
// the arbitrator use HighCapacity; business analyzers use Fast.
type Tier string

const (
	TierFast         Tier = "fast"
	TierBalanced     Tier = "balanced"
	TierHighCapacity Tier = "high_capacity"
)

// TierForAgent is a pure function of agent name selecting its model
// tier for the agent→model routing policy.
func TierForAgent(safety bool) Tier {
	if safety {
		return TierHighCapacity
	}
	return TierFast
}

// ModelGateway is the opaque callable around the language model.
type ModelGateway interface {
	// Complete sends prompt to the model configured for tier, asking for
	// a structured response matching schema (a description of the
	// expected shape; concrete implementations may use it as a JSON
	// schema or as a steering instruction appended to the prompt). The
	// raw JSON response is returned for the caller to unmarshal into its
	// own typed struct.
	Complete(ctx context.Context, prompt string, schema Schema, tier Tier) (Result, error)
}

// Schema describes the expected shape of a structured completion. Name
// is used for prompt templating and logging; Description documents the
// fields for the model.
type Schema struct {
	Name        string
	Description string
}

// Result is the structured value returned by a model call, along with
// bookkeeping the caller may want to surface in telemetry.
type Result struct {
	Raw        []byte
	ModelUsed  string
	Confidence float64
}
