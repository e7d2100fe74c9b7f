package store

import (
	"context"
	"fmt"
)

// schemaStatements creates the harvested-data schema. Every statement is
// idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS author (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		remote_id BIGINT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS category (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		remote_id BIGINT NOT NULL UNIQUE,
		count BIGINT NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tag (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		remote_id BIGINT NOT NULL UNIQUE,
		count BIGINT NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS post (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		remote_id BIGINT NOT NULL UNIQUE,
		created_date TIMESTAMPTZ,
		modified_date TIMESTAMPTZ,
		slug TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		post_type TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		author_id BIGINT NOT NULL REFERENCES author(id),
		featured_media_link TEXT NOT NULL DEFAULT '',
		post_format TEXT NOT NULL DEFAULT '',
		primary_category_id BIGINT REFERENCES category(id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_category (
		post_id BIGINT NOT NULL REFERENCES post(id) ON DELETE CASCADE,
		category_id BIGINT NOT NULL REFERENCES category(id) ON DELETE CASCADE,
		PRIMARY KEY (post_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_tag (
		post_id BIGINT NOT NULL REFERENCES post(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
		PRIMARY KEY (post_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS keyword (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		title TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS search_session (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		keyword_id BIGINT NOT NULL REFERENCES keyword(id),
		page_count INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS search_result_item (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES search_session(id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT '',
		post_id BIGINT REFERENCES post(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_post_author ON post (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_search_result_item_session ON search_result_item (session_id)`,
}

// EnsureSchema creates any missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
