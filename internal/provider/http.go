package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/domain"
)

// APIClient fetches the latest items from a JSON news API. The response
// shape follows the common `{"status": "...", "results": [...]}` contract.
type APIClient struct {
	baseURL  string
	apiKey   string
	category string
	client   *http.Client
}

type APIClientConfig struct {
	BaseURL  string
	APIKey   string
	Category string
}

func NewAPIClient(cfg APIClientConfig) *APIClient {
	return &APIClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		category: cfg.Category,
		client:   &http.Client{},
	}
}

// apiItem is the provider wire format; dates arrive as strings.
type apiItem struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Content        string  `json:"content"`
	Link           string  `json:"link"`
	ImageURL       string  `json:"image_url"`
	Category       string  `json:"category"`
	SourceID       string  `json:"source_id"`
	PubDate        string  `json:"pubDate"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Results []apiItem `json:"results"`
}

var pubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (c *APIClient) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider URL: %w", err)
	}

	q := u.Query()
	q.Set("apikey", c.apiKey)
	if c.category != "" {
		q.Set("category", c.category)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.NewProvider(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.NewProvider(fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.NewProvider(fmt.Errorf("failed to decode provider response: %w", err))
	}

	items := make([]domain.RawItem, 0, len(body.Results))
	for _, it := range body.Results {
		items = append(items, domain.RawItem{
			Title:          it.Title,
			Description:    it.Description,
			Content:        it.Content,
			Link:           it.Link,
			ImageURL:       it.ImageURL,
			Category:       it.Category,
			SourceName:     it.SourceID,
			PubDate:        parsePubDate(it.PubDate),
			SentimentLabel: it.Sentiment,
			SentimentScore: it.SentimentScore,
		})
	}

	return items, nil
}

func parsePubDate(s string) time.Time {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
