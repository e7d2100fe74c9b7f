package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/newsroomlab/pressharvest/internal/model"
)

// tableForKind maps a taxonomy kind to its table. The two tables share one
// column layout so the queries below are built from the same templates.
func tableForKind(kind model.TermKind) (string, error) {
	switch kind {
	case model.KindCategory:
		return "category", nil
	case model.KindTag:
		return "tag", nil
	default:
		return "", fmt.Errorf("unknown term kind %q", kind)
	}
}

// GetTermByRemoteID looks up a category or tag by remote ID, returning
// (nil, nil) when absent.
func (q Queries) GetTermByRemoteID(ctx context.Context, kind model.TermKind, remoteID int64) (*model.Term, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT id, remote_id, count, name, description, link, slug
FROM %s
WHERE remote_id = $1`, table)

	t := model.Term{Kind: kind}
	err = q.db.QueryRow(ctx, query, remoteID).Scan(
		&t.ID, &t.RemoteID, &t.Count, &t.Name, &t.Description, &t.Link, &t.Slug,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, remoteID, err)
	}
	return &t, nil
}

// UpsertTerm inserts the term or updates the existing row keyed by remote ID,
// filling in the local ID.
func (q Queries) UpsertTerm(ctx context.Context, t *model.Term) error {
	table, err := tableForKind(t.Kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (remote_id, count, name, description, link, slug)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (remote_id) DO UPDATE
SET count = EXCLUDED.count,
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	link = EXCLUDED.link,
	slug = EXCLUDED.slug
RETURNING id`, table)

	err = q.db.QueryRow(ctx, query,
		t.RemoteID, t.Count, t.Name, t.Description, t.Link, t.Slug,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("upsert %s %d: %w", t.Kind, t.RemoteID, err)
	}
	return nil
}
