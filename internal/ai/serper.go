package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/windoze95/saltybytes-chef/internal/util"
)

// DefaultSerperEndpoint is the Serper web search API.
const DefaultSerperEndpoint = "https://google.serper.dev/search"

// SerperProvider implements SearchProvider using the Serper API.
type SerperProvider struct {
	client   *resty.Client
	endpoint string
}

// StatusError reports a non-2xx response from a search backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search returned status %d", e.StatusCode)
}

// DecodeError reports a search response that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode search response: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []SearchHit `json:"organic"`
}

// NewSerperProvider creates a provider posting to endpoint with apiKey. The
// timeout bounds each HTTP round trip.
func NewSerperProvider(apiKey, endpoint string, timeout time.Duration) *SerperProvider {
	if endpoint == "" {
		endpoint = DefaultSerperEndpoint
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("X-API-KEY", apiKey).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	return &SerperProvider{client: client, endpoint: endpoint}
}

// SearchRecipes posts "recipe <query>" and returns at most count organic
// results.
func (p *SerperProvider) SearchRecipes(ctx context.Context, query string, count int) ([]SearchHit, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(serperRequest{Q: "recipe " + query, Num: count}).
		Post(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: util.Truncate(resp.String(), 200)}
	}

	var out serperResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &DecodeError{Err: err}
	}
	hits := out.Organic
	if len(hits) > count {
		hits = hits[:count]
	}
	return hits, nil
}
