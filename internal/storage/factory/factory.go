package factory

import (
	"context"
	"fmt"

	"github.com/newsdeck/newswire/internal/storage"
	"github.com/newsdeck/newswire/internal/storage/inmem"
	"github.com/newsdeck/newswire/internal/storage/pg"
)

// Result bundles a repository with the resources behind it. Close and
// HealthChecker are nil for backends without external resources.
type Result struct {
	Repo          storage.ArticleRepository
	Close         func()
	HealthChecker *pg.HealthChecker
}

// NewArticleRepository creates a repository for the given storage type.
func NewArticleRepository(ctx context.Context, repoType storage.Type, connStr string) (*Result, error) {
	switch repoType {
	case storage.PG:
		pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: connStr})
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}

		return &Result{
			Repo:          pg.NewRepository(pool),
			Close:         pool.Close,
			HealthChecker: pg.NewHealthChecker(pool),
		}, nil

	case storage.InMem:
		return &Result{Repo: inmem.NewRepository()}, nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedRepository), repoType)
	}
}
