package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsdeck/newswire/internal/domain"
	"github.com/newsdeck/newswire/internal/storage"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *ConnectionPool) *Repository {
	return &Repository{db: pool.conn}
}

func (r *Repository) Create(ctx context.Context, article domain.Article) (uuid.UUID, error) {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}

	sentimentJSON, err := marshalSentiment(article.Sentiment)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to marshal sentiment: %w", err)
	}

	cmd := `
        INSERT INTO articles (id, title, body, summary, source_url, category, image_url, keywords, status, sentiment, published_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id;
    `
	var id uuid.UUID
	err = r.db.QueryRow(
		ctx,
		cmd,
		article.ID,
		article.Title,
		article.Body,
		article.Summary,
		article.SourceURL,
		article.Category,
		article.ImageURL,
		article.Keywords,
		article.Status,
		sentimentJSON,
		article.PublishedAt,
		article.CreatedAt,
	).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return uuid.UUID{}, storage.ErrDuplicate
		}
		return uuid.UUID{}, fmt.Errorf("failed to insert article: %w", err)
	}

	return id, nil
}

func (r *Repository) FindAll(ctx context.Context, filter storage.Filter) ([]domain.Article, error) {
	query := `
        SELECT id, title, body, summary, source_url, category, image_url, keywords, status, sentiment, published_at, created_at
        FROM articles
        WHERE ($1::text IS NULL OR status = $1)
          AND ($2::text = '' OR category = $2)
        ORDER BY created_at ASC
    `
	args := []any{statusArg(filter.Status), filter.Category}
	if filter.Limit > 0 {
		query += " LIMIT $3"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE articles SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update article status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanArticle(rows pgx.Rows) (domain.Article, error) {
	var (
		a             domain.Article
		sentimentJSON []byte
	)
	err := rows.Scan(
		&a.ID,
		&a.Title,
		&a.Body,
		&a.Summary,
		&a.SourceURL,
		&a.Category,
		&a.ImageURL,
		&a.Keywords,
		&a.Status,
		&sentimentJSON,
		&a.PublishedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.Article{}, fmt.Errorf("failed to scan article: %w", err)
	}

	if len(sentimentJSON) > 0 {
		var s domain.Sentiment
		if err := json.Unmarshal(sentimentJSON, &s); err != nil {
			return domain.Article{}, fmt.Errorf("failed to unmarshal sentiment: %w", err)
		}
		a.Sentiment = &s
	}

	return a, nil
}

func marshalSentiment(s *domain.Sentiment) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func statusArg(s *domain.Status) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

// IsUniqueViolation reports whether err is the Postgres unique-constraint
// error; callers treat it as a duplicate, not a persistence failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
