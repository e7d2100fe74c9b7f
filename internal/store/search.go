package store

import (
	"context"
	"fmt"
	"time"

	"github.com/newsroomlab/pressharvest/internal/model"
)

// GetOrCreateKeyword returns the keyword row for title, creating it on first
// use. The DO UPDATE arm keeps RETURNING populated on conflict.
func (q Queries) GetOrCreateKeyword(ctx context.Context, title string) (*model.Keyword, error) {
	const query = `
INSERT INTO keyword (title)
VALUES ($1)
ON CONFLICT (title) DO UPDATE SET title = EXCLUDED.title
RETURNING id`

	kw := model.Keyword{Title: title}
	if err := q.db.QueryRow(ctx, query, title).Scan(&kw.ID); err != nil {
		return nil, fmt.Errorf("get or create keyword %q: %w", title, err)
	}
	return &kw, nil
}

// CreateSearchSession records a new keyword-search run, filling in the local
// ID and creation time.
func (q Queries) CreateSearchSession(ctx context.Context, s *model.SearchSession) error {
	const query = `
INSERT INTO search_session (keyword_id, page_count, created_at)
VALUES ($1, $2, $3)
RETURNING id`

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if err := q.db.QueryRow(ctx, query, s.KeywordID, s.PageCount, s.CreatedAt).Scan(&s.ID); err != nil {
		return fmt.Errorf("create search session: %w", err)
	}
	return nil
}

// CreateSearchResultItem persists one scraped search heading, filling in the
// local ID. PostID is written as NULL while zero.
func (q Queries) CreateSearchResultItem(ctx context.Context, item *model.SearchResultItem) error {
	const query = `
INSERT INTO search_result_item (session_id, title, url, slug, post_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	var postID any
	if item.PostID != 0 {
		postID = item.PostID
	}
	err := q.db.QueryRow(ctx, query,
		item.SessionID, item.Title, item.URL, item.Slug, postID,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create search result item: %w", err)
	}
	return nil
}

// LinkResultItemPost resolves a search result item to its ingested post.
func (q Queries) LinkResultItemPost(ctx context.Context, itemID, postID int64) error {
	const query = `UPDATE search_result_item SET post_id = $1 WHERE id = $2`

	if _, err := q.db.Exec(ctx, query, postID, itemID); err != nil {
		return fmt.Errorf("link search result item %d to post %d: %w", itemID, postID, err)
	}
	return nil
}
