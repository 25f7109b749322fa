package domain

import "context"

// GeometrySource supplies the map regions of each level.
type GeometrySource interface {
	// States returns the national state collection.
	States(ctx context.Context) ([]Feature, error)

	// Municipalities returns the municipality collection of one state.
	Municipalities(ctx context.Context, stateCode int) ([]Feature, error)
}

// SourceFetcher returns the raw text behind a dataset location.
type SourceFetcher interface {
	Fetch(ctx context.Context, location string) (string, error)
}
