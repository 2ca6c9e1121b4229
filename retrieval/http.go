package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/airline-ops/recovery-orchestrator/core"
)

// HTTPClient retrieves passages from an HTTP knowledge-base service.
// On timeout or error it logs and returns an empty slice; retrieval
// failure must never fail arbitration.
type HTTPClient struct {
	Endpoint string
	HTTP     *http.Client
	Logger   core.Logger
}

// NewHTTPClient builds a retrieval client against endpoint with a 5s
// default timeout.
func NewHTTPClient(endpoint string, logger core.Logger) *HTTPClient {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &HTTPClient{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		Logger:   logger,
	}
}

type retrieveRequest struct {
	Query string `json:"query"`
}

type retrieveResponse struct {
	Passages []Passage `json:"passages"`
}

func (c *HTTPClient) Retrieve(ctx context.Context, query string) ([]Passage, error) {
	body, err := json.Marshal(retrieveRequest{Query: query})
	if err != nil {
		c.Logger.Warn("retrieval request marshal failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		c.Logger.Warn("retrieval request build failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("retrieval call failed, proceeding without passages", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Warn("retrieval call returned non-200, proceeding without passages", map[string]interface{}{"status": resp.StatusCode})
		return nil, nil
	}

	var out retrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.Logger.Warn("retrieval response decode failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	return out.Passages, nil
}

var _ Client = (*HTTPClient)(nil)
