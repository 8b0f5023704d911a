package normalize

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/dedup"
	"github.com/newsdeck/newswire/internal/domain"
)

// summaryLen bounds the fallback summary cut from the body.
const summaryLen = 150

// Normalizer maps raw provider items onto the canonical Article shape.
// A zero Normalizer is usable; Clock is injectable for tests.
type Normalizer struct {
	Clock func() time.Time
}

func New() *Normalizer {
	return &Normalizer{Clock: time.Now}
}

// Normalize converts one raw provider item into an Article. Items without
// a title are rejected with an InvalidItemError and must be excluded from
// further processing without aborting the batch.
func (n *Normalizer) Normalize(raw domain.RawItem) (domain.Article, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return domain.Article{}, apperr.NewInvalidItem("missing title")
	}

	now := time.Now()
	if n.Clock != nil {
		now = n.Clock()
	}

	body := strings.TrimSpace(raw.Content)
	summary := strings.TrimSpace(raw.Description)
	if summary == "" {
		summary = truncate(body, summaryLen)
	}

	category := strings.ToLower(strings.TrimSpace(raw.Category))
	if category == "" {
		category = domain.ArticleDefaultCategory
	}

	imageURL := raw.ImageURL
	if imageURL == "" {
		imageURL = domain.ArticleDefaultImageURL
	}

	publishedAt := raw.PubDate
	if publishedAt.IsZero() {
		publishedAt = now
	}

	article := domain.Article{
		ID:          uuid.New(),
		Title:       title,
		Body:        body,
		Summary:     summary,
		SourceURL:   strings.TrimSpace(raw.Link),
		Category:    category,
		ImageURL:    imageURL,
		Keywords:    dedup.Keywords(title + " " + summary),
		Status:      domain.StatusDraft,
		PublishedAt: publishedAt,
		CreatedAt:   now,
	}

	if raw.SentimentLabel != "" {
		article.Sentiment = &domain.Sentiment{
			Label: strings.ToLower(raw.SentimentLabel),
			Score: raw.SentimentScore,
		}
	}

	return article, nil
}

// truncate cuts s to at most n runes without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
