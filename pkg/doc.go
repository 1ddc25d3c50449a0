// Package pkg provides the core libraries for codeatlas code graph mapping.
//
// # Overview
//
// Codeatlas turns a codebase's entity graph (files, functions, classes,
// modules) into an analyzed, laid-out, clustered map. The pkg directory is
// organized into five main areas:
//
//  1. [graph] - Graph model, builder, serialization, and structural analysis
//  2. [layout] - Spatial layout algorithms (force, hierarchical, radial, organic)
//  3. [cluster] - Embedding-based clustering with labels and quality scores
//  4. [pipeline] - Orchestration (analyze → layout → cluster) with caching
//  5. [integrations] - External services (embedding service, OpenAI)
//
// # Architecture
//
// The typical data flow through codeatlas:
//
//	graph.json (entities + relationships)
//	         ↓
//	    [graph/analysis] package (cycles, components, importance)
//	         ↓
//	    [layout] package (2D positions)
//	         ↓
//	    [cluster] package (embeddings + grouping + labels)
//	         ↓
//	    laid-out graph + labeled clusters
//
// # Quick Start
//
// Run the full pipeline over a graph:
//
//	import (
//	    "context"
//	    "github.com/codeatlas/codeatlas/pkg/graph"
//	    "github.com/codeatlas/codeatlas/pkg/pipeline"
//	)
//
//	g, err := graph.ReadGraphFile("graph.json")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), g, pipeline.Options{Clusters: true})
//
// Supporting packages: [cache] for stage result caching, [config] for layered
// configuration, [web] for the HTTP API, [observability] for instrumentation
// hooks, and [errors] for coded error handling.
package pkg
