// Package integrations provides clients for external services used by the
// clustering engine.
//
// # Overview
//
// Subpackages implement the collaborator interfaces defined by pkg/cluster:
//
//   - [embedding]: HTTP client for a self-hosted embedding service
//   - [openai]: embedding provider and cluster labeler backed by the
//     OpenAI API
//
// This package holds the shared HTTP plumbing: a base client with retry,
// status classification, and request hooks. All collaborator failures are
// soft by contract - callers fall back to local embeddings and keyword
// labels - so clients here report errors rather than degrade silently.
package integrations
