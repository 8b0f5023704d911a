package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ArticleDefaultCategory = "general"
	ArticleDefaultImageURL = "/images/default-news.jpg"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Sentiment is an optional provider-supplied label with a confidence score.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Article struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Summary     string     `json:"summary"`
	SourceURL   string     `json:"sourceUrl,omitempty"`
	Category    string     `json:"category"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Sentiment   *Sentiment `json:"sentiment,omitempty"`
	Status      Status     `json:"status"`
	PublishedAt time.Time  `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// RawItem is one record as returned by a news provider, before normalization.
// Field names follow the provider wire format.
type RawItem struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Content        string    `json:"content"`
	Link           string    `json:"link"`
	ImageURL       string    `json:"image_url"`
	Category       string    `json:"category"`
	SourceName     string    `json:"source_id"`
	PubDate        time.Time `json:"pubDate"`
	SentimentLabel string    `json:"sentiment,omitempty"`
	SentimentScore float64   `json:"sentiment_score,omitempty"`
}
