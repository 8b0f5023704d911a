package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/domain"
)

var frozen = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return &Normalizer{Clock: func() time.Time { return frozen }}
}

func TestNormalize_FullItem(t *testing.T) {
	n := newTestNormalizer()

	article, err := n.Normalize(domain.RawItem{
		Title:       "  Fed Raises Interest Rates Again  ",
		Description: "The central bank raised rates by 25 basis points.",
		Content:     "Full article body here.",
		Link:        "https://news.example/fed-rates",
		ImageURL:    "https://cdn.example/fed.jpg",
		Category:    "Business",
		PubDate:     frozen.Add(-time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, "Fed Raises Interest Rates Again", article.Title)
	assert.Equal(t, "The central bank raised rates by 25 basis points.", article.Summary)
	assert.Equal(t, "business", article.Category)
	assert.Equal(t, "https://news.example/fed-rates", article.SourceURL)
	assert.Equal(t, frozen.Add(-time.Hour), article.PublishedAt)
	assert.Equal(t, frozen, article.CreatedAt)
	assert.Equal(t, domain.StatusDraft, article.Status)
	assert.NotEmpty(t, article.Keywords)
	assert.NotEqual(t, "", article.ID.String())
}

func TestNormalize_MissingTitleRejected(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(domain.RawItem{Description: "no headline here"})

	require.Error(t, err)
	var ie *apperr.InvalidItemError
	assert.ErrorAs(t, err, &ie)
}

func TestNormalize_SummaryFallsBackToBody(t *testing.T) {
	n := newTestNormalizer()
	body := strings.Repeat("lorem ipsum ", 30) // well over 150 chars

	article, err := n.Normalize(domain.RawItem{
		Title:   "Some headline",
		Content: body,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(article.Summary, "lorem ipsum"))
	assert.LessOrEqual(t, len(article.Summary), 153)
	assert.True(t, strings.HasSuffix(article.Summary, "..."))
}

func TestNormalize_ShortBodyNotTruncated(t *testing.T) {
	n := newTestNormalizer()

	article, err := n.Normalize(domain.RawItem{
		Title:   "Some headline",
		Content: "A short body.",
	})

	require.NoError(t, err)
	assert.Equal(t, "A short body.", article.Summary)
}

func TestNormalize_Defaults(t *testing.T) {
	n := newTestNormalizer()

	article, err := n.Normalize(domain.RawItem{Title: "Bare headline"})

	require.NoError(t, err)
	assert.Equal(t, domain.ArticleDefaultCategory, article.Category)
	assert.Equal(t, domain.ArticleDefaultImageURL, article.ImageURL)
	assert.Equal(t, frozen, article.PublishedAt)
	assert.Nil(t, article.Sentiment)
}

func TestNormalize_SentimentPassthrough(t *testing.T) {
	n := newTestNormalizer()

	article, err := n.Normalize(domain.RawItem{
		Title:          "Markets rally on earnings news",
		SentimentLabel: "Positive",
		SentimentScore: 0.91,
	})

	require.NoError(t, err)
	require.NotNil(t, article.Sentiment)
	assert.Equal(t, "positive", article.Sentiment.Label)
	assert.InDelta(t, 0.91, article.Sentiment.Score, 1e-9)
}
