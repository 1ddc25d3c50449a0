// Package openai backs the clustering engine's collaborator interfaces
// with the OpenAI API: embeddings for semantic vectors and chat
// completions for cluster labels.
package openai

import (
	"context"
	"fmt"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/codeatlas/codeatlas/pkg/cluster"
)

// Default models. Both can be overridden per client.
const (
	DefaultEmbeddingModel = string(gopenai.SmallEmbedding3)
	DefaultChatModel      = gopenai.GPT4oMini
)

// Provider computes embeddings through the OpenAI embeddings endpoint.
// It satisfies the clustering engine's provider contract.
type Provider struct {
	client *gopenai.Client
	model  gopenai.EmbeddingModel
}

// NewProvider creates an embedding provider. An empty model selects
// [DefaultEmbeddingModel].
func NewProvider(apiKey, model string) *Provider {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Provider{
		client: gopenai.NewClient(apiKey),
		model:  gopenai.EmbeddingModel(model),
	}
}

// Model returns the embedding model name, for cache key namespacing.
func (p *Provider) Model() string { return string(p.model) }

// Embed computes one embedding vector for text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := p.client.CreateEmbeddings(ctx, gopenai.EmbeddingRequest{
		Input: []string{text},
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}

	raw := resp.Data[0].Embedding
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}
	return vec, nil
}

// Labeler generates cluster labels through chat completions. It satisfies
// the clustering engine's labeler contract.
type Labeler struct {
	client *gopenai.Client
	model  string
}

// NewLabeler creates a cluster labeler. An empty model selects
// [DefaultChatModel].
func NewLabeler(apiKey, model string) *Labeler {
	if model == "" {
		model = DefaultChatModel
	}
	return &Labeler{
		client: gopenai.NewClient(apiKey),
		model:  model,
	}
}

// Generate sends the labeling prompt and returns the raw model reply.
// The caller parses the reply and falls back to keyword labels when it
// doesn't match the expected shape.
func (l *Labeler) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: l.model,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Ensure both types satisfy the clustering engine contracts.
var (
	_ cluster.Provider = (*Provider)(nil)
	_ cluster.Labeler  = (*Labeler)(nil)
)
