package provider

import (
	"context"

	"github.com/newsdeck/newswire/internal/domain"
)

// Fetcher is the opaque provider port consumed by the scheduler. The
// scheduler owns the call budget; implementations only fetch.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawItem, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]domain.RawItem, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	return f(ctx)
}
