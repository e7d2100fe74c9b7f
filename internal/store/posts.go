package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/newsroomlab/pressharvest/internal/model"
)

// GetPostByRemoteID looks up a post by remote ID, returning (nil, nil) when
// absent.
func (q Queries) GetPostByRemoteID(ctx context.Context, remoteID int64) (*model.Post, error) {
	const query = `
SELECT id, remote_id, created_date, modified_date, slug, status, post_type,
	link, title, content, excerpt, author_id, featured_media_link,
	post_format, COALESCE(primary_category_id, 0)
FROM post
WHERE remote_id = $1`

	var p model.Post
	err := q.db.QueryRow(ctx, query, remoteID).Scan(
		&p.ID, &p.RemoteID, &p.CreatedDate, &p.ModifiedDate, &p.Slug,
		&p.Status, &p.Type, &p.Link, &p.Title, &p.Content, &p.Excerpt,
		&p.AuthorID, &p.FeaturedMediaLink, &p.Format, &p.PrimaryCategoryID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", remoteID, err)
	}
	return &p, nil
}

// UpsertPost inserts the post or updates the existing row keyed by remote ID,
// filling in the local ID. Re-ingesting the same remote ID updates in place
// and never creates a second row.
func (q Queries) UpsertPost(ctx context.Context, p *model.Post) error {
	const query = `
INSERT INTO post (remote_id, created_date, modified_date, slug, status,
	post_type, link, title, content, excerpt, author_id,
	featured_media_link, post_format, primary_category_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (remote_id) DO UPDATE
SET created_date = EXCLUDED.created_date,
	modified_date = EXCLUDED.modified_date,
	slug = EXCLUDED.slug,
	status = EXCLUDED.status,
	post_type = EXCLUDED.post_type,
	link = EXCLUDED.link,
	title = EXCLUDED.title,
	content = EXCLUDED.content,
	excerpt = EXCLUDED.excerpt,
	author_id = EXCLUDED.author_id,
	featured_media_link = EXCLUDED.featured_media_link,
	post_format = EXCLUDED.post_format,
	primary_category_id = EXCLUDED.primary_category_id
RETURNING id`

	var primaryCategory any
	if p.PrimaryCategoryID != 0 {
		primaryCategory = p.PrimaryCategoryID
	}

	err := q.db.QueryRow(ctx, query,
		p.RemoteID, p.CreatedDate, p.ModifiedDate, p.Slug, p.Status,
		p.Type, p.Link, p.Title, p.Content, p.Excerpt, p.AuthorID,
		p.FeaturedMediaLink, p.Format, primaryCategory,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upsert post %d: %w", p.RemoteID, err)
	}
	return nil
}

// LinkPostCategory records the (post, category) pair; duplicates are absorbed
// by the composite primary key.
func (q Queries) LinkPostCategory(ctx context.Context, postID, categoryID int64) error {
	const query = `
INSERT INTO post_category (post_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	if _, err := q.db.Exec(ctx, query, postID, categoryID); err != nil {
		return fmt.Errorf("link post %d category %d: %w", postID, categoryID, err)
	}
	return nil
}

// LinkPostTag records the (post, tag) pair; duplicates are absorbed by the
// composite primary key.
func (q Queries) LinkPostTag(ctx context.Context, postID, tagID int64) error {
	const query = `
INSERT INTO post_tag (post_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	if _, err := q.db.Exec(ctx, query, postID, tagID); err != nil {
		return fmt.Errorf("link post %d tag %d: %w", postID, tagID, err)
	}
	return nil
}
