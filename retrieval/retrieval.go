// Package retrieval provides the Arbitrator's optional knowledge-base
// client: retrieve(query) -> passages. Failures degrade to
// an empty result rather than failing arbitration.
package retrieval

import "context"

// Passage is one retrieved reference passage.
type Passage struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	Score   float64 `json:"score"`
}

// Client retrieves reference passages for a query.
type Client interface {
	Retrieve(ctx context.Context, query string) ([]Passage, error)
}

// NoopClient always returns an empty result; used when no retrieval
// service is configured.
type NoopClient struct{}

func (NoopClient) Retrieve(context.Context, string) ([]Passage, error) {
	return nil, nil
}
