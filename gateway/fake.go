package gateway

import "context"

// FakeGateway is a deterministic in-memory ModelGateway for tests: it
// returns a canned response per schema name, falling back to a
// generic response when no canned value is registered.
type FakeGateway struct {
	Responses map[string]Result
	Default   Result
	Calls     []FakeCall
}

// FakeCall records one invocation for test assertions.
type FakeCall struct {
	Prompt string
	Schema string
	Tier   Tier
}

// NewFakeGateway builds an empty fake; use Responses to seed canned
// output keyed by schema.Name.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Responses: make(map[string]Result),
		Default:   Result{Raw: []byte(`{"recommendation":"proceed","reasoning":"fake gateway default","confidence":0.5}`), ModelUsed: "fake-model"},
	}
}

func (f *FakeGateway) Complete(_ context.Context, prompt string, schema Schema, tier Tier) (Result, error) {
	f.Calls = append(f.Calls, FakeCall{Prompt: prompt, Schema: schema.Name, Tier: tier})
	if r, ok := f.Responses[schema.Name]; ok {
		return r, nil
	}
	return f.Default, nil
}
