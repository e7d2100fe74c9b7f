// Package search parses search-result HTML into lightweight reference
// records pointing at posts still to be ingested.
package search

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/model"
)

// headingSelector matches the heading element wrapping each search result.
const headingSelector = "h4.pb-10"

// Extractor turns search-result pages into SearchResultItem records.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor builds an Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract locates every result heading in html and returns one item per
// parseable heading, stamped with sessionID. Headings without a usable anchor
// are logged and skipped, never fatal.
func (e *Extractor) Extract(html []byte, sessionID int64) ([]model.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var items []model.SearchResultItem
	doc.Find(headingSelector).Each(func(i int, heading *goquery.Selection) {
		href, ok := heading.Find("a").First().Attr("href")
		if !ok || href == "" {
			e.logger.Warn("search heading without anchor; skipping", zap.Int("index", i))
			return
		}
		slug := SlugFromURL(href)
		if slug == "" {
			e.logger.Warn("search heading with unparseable href; skipping",
				zap.Int("index", i), zap.String("href", href))
			return
		}
		items = append(items, model.SearchResultItem{
			SessionID: sessionID,
			Title:     strings.TrimSpace(heading.Text()),
			URL:       href,
			Slug:      slug,
		})
	})
	return items, nil
}

// SlugFromURL derives a post slug as the second-to-last /-delimited segment
// of the path, which holds for both ".../slug/" and ".../slug/comments"
// shaped result links. An empty string means no slug could be derived.
func SlugFromURL(href string) string {
	parts := strings.Split(href, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
