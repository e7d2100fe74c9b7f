package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/newsroomlab/pressharvest/internal/model"
)

// GetAuthorByRemoteID looks up an author by remote ID, returning (nil, nil)
// when absent.
func (q Queries) GetAuthorByRemoteID(ctx context.Context, remoteID int64) (*model.Author, error) {
	const query = `
SELECT id, remote_id, name, description, link, position
FROM author
WHERE remote_id = $1`

	var a model.Author
	err := q.db.QueryRow(ctx, query, remoteID).Scan(
		&a.ID, &a.RemoteID, &a.Name, &a.Description, &a.Link, &a.Position,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get author %d: %w", remoteID, err)
	}
	return &a, nil
}

// UpsertAuthor inserts the author or updates the existing row keyed by remote
// ID, filling in the local ID.
func (q Queries) UpsertAuthor(ctx context.Context, a *model.Author) error {
	const query = `
INSERT INTO author (remote_id, name, description, link, position)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (remote_id) DO UPDATE
SET name = EXCLUDED.name,
	description = EXCLUDED.description,
	link = EXCLUDED.link,
	position = EXCLUDED.position
RETURNING id`

	err := q.db.QueryRow(ctx, query,
		a.RemoteID, a.Name, a.Description, a.Link, a.Position,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("upsert author %d: %w", a.RemoteID, err)
	}
	return nil
}
