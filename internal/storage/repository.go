package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/newsdeck/newswire/internal/domain"
)

// Filter narrows FindAll results. Zero value matches everything.
type Filter struct {
	Status   *domain.Status
	Category string
	Limit    int
}

// ArticleRepository is the narrow persistence port consumed by the
// ingestion core. Implementations live in subpackages.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.Article) (uuid.UUID, error)
	FindAll(ctx context.Context, filter Filter) ([]domain.Article, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
}

type Type string

const (
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type RepositoryError string

const (
	ErrUnsupportedRepository RepositoryError = "unsupported repository type: %s"
	ErrNotFound              RepositoryError = "article not found"

	// ErrDuplicate is returned by Create when a uniqueness constraint in
	// the backing store rejects the article. Ingestion treats it as a
	// dedup outcome, not a persistence failure.
	ErrDuplicate RepositoryError = "article already exists"
)

func (e RepositoryError) Error() string {
	return string(e)
}
