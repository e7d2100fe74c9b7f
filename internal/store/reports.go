package store

import (
	"context"
	"fmt"
)

// NameCount pairs an entity name with a post count for report output.
type NameCount struct {
	Name  string
	Count int64
}

// CategoryPostCountsRemote reports the remote usage count carried on each
// stored category.
func (q Queries) CategoryPostCountsRemote(ctx context.Context) ([]NameCount, error) {
	return q.nameCounts(ctx, `SELECT name, count FROM category ORDER BY count DESC, name`)
}

// CategoryPostCountsLocal reports how many stored posts reference each
// category through the join table.
func (q Queries) CategoryPostCountsLocal(ctx context.Context) ([]NameCount, error) {
	return q.nameCounts(ctx, `
SELECT c.name, COUNT(*) AS count
FROM post_category pc
JOIN category c ON c.id = pc.category_id
GROUP BY c.name
ORDER BY count DESC, c.name`)
}

// TagPostCountsRemote reports the remote usage count carried on each stored
// tag.
func (q Queries) TagPostCountsRemote(ctx context.Context) ([]NameCount, error) {
	return q.nameCounts(ctx, `SELECT name, count FROM tag ORDER BY count DESC, name`)
}

// TagPostCountsLocal reports how many stored posts reference each tag through
// the join table.
func (q Queries) TagPostCountsLocal(ctx context.Context) ([]NameCount, error) {
	return q.nameCounts(ctx, `
SELECT t.name, COUNT(*) AS count
FROM post_tag pt
JOIN tag t ON t.id = pt.tag_id
GROUP BY t.name
ORDER BY count DESC, t.name`)
}

// AuthorPostCounts reports how many stored posts each author wrote.
func (q Queries) AuthorPostCounts(ctx context.Context) ([]NameCount, error) {
	return q.nameCounts(ctx, `
SELECT a.name, COUNT(*) AS count
FROM post p
JOIN author a ON a.id = p.author_id
GROUP BY a.name
ORDER BY count DESC, a.name`)
}

func (q Queries) nameCounts(ctx context.Context, query string) ([]NameCount, error) {
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		out = append(out, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return out, nil
}
