package model

import (
	"errors"
	"fmt"
)

// Resolver names accepted by AnnotationConfig.Resolver
const (
	ResolverMajority = "majority"
	ResolverSummed   = "summed"
	ResolverFirst    = "first"
)

// AnnotationConfig represents the configuration of an annotation run
type AnnotationConfig struct {
	// Number of ranked tags kept per subword
	TopK int `json:"top_k"`
	// Word resolution strategy, one of majority, summed or first
	Resolver string `json:"resolver"`
	// Label of the no-entity tag in the vocabulary
	NoEntityLabel string `json:"no_entity_label"`
	// Number of texts annotated concurrently
	Workers int `json:"workers"`
	// Compute embeddings for mentions before storing them
	EmbedMentions bool `json:"embed_mentions"`
	// Similarity search parameters for stored mentions
	SimilarityLimit     int     `json:"similarity_limit"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}

// DefaultAnnotationConfig returns a sensible default configuration
func DefaultAnnotationConfig() AnnotationConfig {
	return AnnotationConfig{
		TopK:                5,
		Resolver:            ResolverMajority,
		NoEntityLabel:       NoEntityLabel,
		Workers:             4,
		EmbedMentions:       false,
		SimilarityLimit:     10,
		SimilarityThreshold: 0.7,
	}
}

// Validate checks the configuration for unusable values
func (c AnnotationConfig) Validate() error {
	var errs []error
	if c.TopK < 1 {
		errs = append(errs, fmt.Errorf("top_k must be at least 1, got %d", c.TopK))
	}
	switch c.Resolver {
	case ResolverMajority, ResolverSummed, ResolverFirst:
	default:
		errs = append(errs, fmt.Errorf("unknown resolver %q", c.Resolver))
	}
	if c.NoEntityLabel == "" {
		errs = append(errs, errors.New("no_entity_label must not be empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity_threshold must be within [0, 1], got %v", c.SimilarityThreshold))
	}
	return errors.Join(errs...)
}
