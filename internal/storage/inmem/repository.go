package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/newsdeck/newswire/internal/domain"
	"github.com/newsdeck/newswire/internal/storage"
)

// Repository keeps the article corpus in memory. It backs tests and the
// default single-process deployment.
type Repository struct {
	storageLock sync.RWMutex
	articles    map[uuid.UUID]domain.Article
}

func NewRepository() *Repository {
	return &Repository{
		articles: make(map[uuid.UUID]domain.Article),
	}
}

func (r *Repository) Create(ctx context.Context, article domain.Article) (uuid.UUID, error) {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()

	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	r.articles[article.ID] = article

	return article.ID, nil
}

func (r *Repository) FindAll(ctx context.Context, filter storage.Filter) ([]domain.Article, error) {
	r.storageLock.RLock()
	defer r.storageLock.RUnlock()

	var result []domain.Article
	for _, a := range r.articles {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	r.storageLock.Lock()
	defer r.storageLock.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Status = status
	r.articles[id] = a

	return nil
}
