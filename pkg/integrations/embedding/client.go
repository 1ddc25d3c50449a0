// Package embedding provides an HTTP client for a self-hosted embedding
// service, plus a caching decorator so repeated runs don't re-embed
// unchanged entities.
package embedding

import (
	"context"
	"fmt"

	"github.com/codeatlas/codeatlas/pkg/integrations"
)

// Client calls an embedding service that turns code text into dense
// vectors. The service exposes POST /embed for batches and GET /health.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	model   string
}

// NewClient creates an embedding service client for the given base URL
// (e.g. "http://localhost:8000"). The model name is only used for cache
// keys and diagnostics; the service decides which model actually runs.
func NewClient(baseURL, model string) *Client {
	return &Client{
		Client:  integrations.NewClient(nil),
		baseURL: baseURL,
		model:   model,
	}
}

// Model returns the model name this client was configured with.
func (c *Client) Model() string { return c.model }

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Model   string      `json:"model"`
	Vectors [][]float64 `json:"vectors"`
	Dim     int         `json:"dim"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// Embed computes a vector embedding for one text. It satisfies the
// clustering engine's provider contract.
//
// Returns [integrations.ErrNetwork] for HTTP failures after retries are
// exhausted.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("embed: text is empty")
	}
	vectors, err := c.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding service returned no vectors")
	}
	return vectors[0], nil
}

// BatchEmbed computes embeddings for multiple texts in one request.
// Batching is much cheaper than per-text calls when embedding a whole
// codebase.
func (c *Client) BatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed: texts is empty")
	}

	var resp embedResponse
	if err := c.PostJSON(ctx, c.baseURL+"/embed", embedRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Vectors) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(resp.Vectors), len(texts))
	}
	return resp.Vectors, nil
}

// Health checks whether the embedding service is reachable and ready.
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.GetJSON(ctx, c.baseURL+"/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("embedding service unhealthy: %s", resp.Status)
	}
	return nil
}
