package dedup

import (
	"sort"
	"strings"

	"github.com/newsdeck/newswire/internal/domain"
)

// Reason explains why a candidate was kept or dropped.
type Reason string

const (
	ReasonKept           Reason = "kept"
	ReasonDuplicateTitle Reason = "duplicate-title"
	ReasonDuplicateURL   Reason = "duplicate-url"
	ReasonSimilarTitle   Reason = "similar-title"
	ReasonSimilarBody    Reason = "similar-body"
)

// Decision is the outcome of checking one candidate against the corpus.
type Decision struct {
	Keep   bool
	Reason Reason
}

// Stats summarizes a batch cleanup run.
type Stats struct {
	Kept    int
	Dropped int
	Errors  int
}

// TitleKeywords and BodyKeywords derive the comparison sets for one article.
// The summary stands in for the body when the body is empty.
func TitleKeywords(a domain.Article) []string {
	return Keywords(a.Title)
}

func BodyKeywords(a domain.Article) []string {
	text := a.Summary
	if a.Body != "" {
		text = a.Body
	}
	return Keywords(text)
}

// Dedupe decides whether candidate may join the given corpus. The corpus
// members are by definition older, so on any exact or near match the
// candidate is the one dropped.
func Dedupe(corpus []domain.Article, candidate domain.Article) Decision {
	title := strings.ToLower(strings.TrimSpace(candidate.Title))
	candTitleKw := TitleKeywords(candidate)
	candBodyKw := BodyKeywords(candidate)

	for _, existing := range corpus {
		if strings.ToLower(strings.TrimSpace(existing.Title)) == title {
			return Decision{Keep: false, Reason: ReasonDuplicateTitle}
		}
		if candidate.SourceURL != "" && existing.SourceURL == candidate.SourceURL {
			return Decision{Keep: false, Reason: ReasonDuplicateURL}
		}
	}

	for _, existing := range corpus {
		if Jaccard(TitleKeywords(existing), candTitleKw) > TitleSimilarityThreshold {
			return Decision{Keep: false, Reason: ReasonSimilarTitle}
		}
		if Jaccard(BodyKeywords(existing), candBodyKw) > BodySimilarityThreshold {
			return Decision{Keep: false, Reason: ReasonSimilarBody}
		}
	}

	return Decision{Keep: true, Reason: ReasonKept}
}

// Cleanup removes exact and near duplicates from an in-memory corpus
// snapshot. Phase one collapses exact title/URL groups to their earliest
// member; phase two drops near-duplicates pairwise, oldest first.
// Malformed records (no title) are counted and passed through untouched.
// The operation is idempotent over its own output.
func Cleanup(corpus []domain.Article) ([]domain.Article, Stats) {
	var stats Stats

	var valid, malformed []domain.Article
	for _, a := range corpus {
		if strings.TrimSpace(a.Title) == "" {
			stats.Errors++
			malformed = append(malformed, a)
			continue
		}
		valid = append(valid, a)
	}

	survivors := exactGroups(valid)
	survivors = similarityPass(survivors)

	stats.Kept = len(survivors) + len(malformed)
	stats.Dropped = len(valid) - len(survivors)

	survivors = append(survivors, malformed...)
	sortByCreatedAt(survivors)
	return survivors, stats
}

// exactGroups keeps, within each group sharing a case-insensitive title
// or a non-empty source URL, only the member with the earliest CreatedAt.
func exactGroups(articles []domain.Article) []domain.Article {
	sorted := make([]domain.Article, len(articles))
	copy(sorted, articles)
	sortByCreatedAt(sorted)

	seenTitle := make(map[string]struct{}, len(sorted))
	seenURL := make(map[string]struct{}, len(sorted))

	var survivors []domain.Article
	for _, a := range sorted {
		title := strings.ToLower(strings.TrimSpace(a.Title))
		if _, dup := seenTitle[title]; dup {
			continue
		}
		if a.SourceURL != "" {
			if _, dup := seenURL[a.SourceURL]; dup {
				continue
			}
			seenURL[a.SourceURL] = struct{}{}
		}
		seenTitle[title] = struct{}{}
		survivors = append(survivors, a)
	}

	return survivors
}

// similarityPass drops, for each near-duplicate pair, the later-created
// member. Input must already be sorted ascending by CreatedAt so earlier
// articles act as the reference set.
func similarityPass(articles []domain.Article) []domain.Article {
	titleKw := make([][]string, len(articles))
	bodyKw := make([][]string, len(articles))
	for i, a := range articles {
		titleKw[i] = TitleKeywords(a)
		bodyKw[i] = BodyKeywords(a)
	}

	dropped := make([]bool, len(articles))
	for i := 0; i < len(articles); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(articles); j++ {
			if dropped[j] {
				continue
			}
			if Jaccard(titleKw[i], titleKw[j]) > TitleSimilarityThreshold ||
				Jaccard(bodyKw[i], bodyKw[j]) > BodySimilarityThreshold {
				dropped[j] = true
			}
		}
	}

	var survivors []domain.Article
	for i, a := range articles {
		if !dropped[i] {
			survivors = append(survivors, a)
		}
	}
	return survivors
}

func sortByCreatedAt(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.Before(articles[j].CreatedAt)
	})
}
