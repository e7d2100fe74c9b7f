package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/fetch"
	"github.com/newsroomlab/pressharvest/internal/htmltext"
	"github.com/newsroomlab/pressharvest/internal/metrics"
	"github.com/newsroomlab/pressharvest/internal/model"
)

// entityCache memoizes resolved entities for the lifetime of a run. The
// pipeline is single-threaded, so the maps are unguarded.
type entityCache struct {
	authors map[int64]*model.Author
	terms   map[model.TermKind]map[int64]*model.Term
}

func newEntityCache() *entityCache {
	return &entityCache{
		authors: make(map[int64]*model.Author),
		terms: map[model.TermKind]map[int64]*model.Term{
			model.KindCategory: make(map[int64]*model.Term),
			model.KindTag:      make(map[int64]*model.Term),
		},
	}
}

func (c *entityCache) merge(other *entityCache) {
	for id, a := range other.authors {
		c.authors[id] = a
	}
	for kind, terms := range other.terms {
		for id, t := range terms {
			c.terms[kind][id] = t
		}
	}
}

// Resolver turns remote entity IDs into locally persisted rows, consulting
// the run cache, then the store, and only then the remote API.
//
// Entities resolved while a post is in flight carry local IDs that exist only
// inside that post's transaction, so they are staged separately and enter the
// run cache via Commit once the transaction has committed. Discard drops them
// after a rollback.
type Resolver struct {
	api    API
	cache  *entityCache
	staged *entityCache
	logger *zap.Logger
}

// NewResolver builds a Resolver with an empty cache.
func NewResolver(api API, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		api:    api,
		cache:  newEntityCache(),
		staged: newEntityCache(),
		logger: logger,
	}
}

// Commit promotes the entities staged by the post in flight into the run
// cache. Call it only after the enclosing transaction has committed.
func (r *Resolver) Commit() {
	r.cache.merge(r.staged)
	r.staged = newEntityCache()
}

// Discard drops the entities staged by the post in flight. After a rollback
// their local IDs may reference rows that were never committed, so they must
// not be reused by later posts.
func (r *Resolver) Discard() {
	r.staged = newEntityCache()
}

// Author resolves an author by remote ID. A remote 404 yields a persisted
// "Not Found" placeholder and a 401 a "Not Authorized" one; any other fetch
// failure propagates so the caller can abort the single post in flight.
func (r *Resolver) Author(ctx context.Context, st EntityStore, remoteID int64) (*model.Author, error) {
	if cached, ok := r.cache.authors[remoteID]; ok {
		metrics.IncEntityResolved("author", "cache")
		return cached, nil
	}
	if staged, ok := r.staged.authors[remoteID]; ok {
		metrics.IncEntityResolved("author", "cache")
		return staged, nil
	}

	existing, err := st.GetAuthorByRemoteID(ctx, remoteID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		r.staged.authors[remoteID] = existing
		metrics.IncEntityResolved("author", "store")
		return existing, nil
	}

	author := &model.Author{RemoteID: remoteID}
	payload, err := r.api.Author(ctx, remoteID)
	switch {
	case err == nil:
		author.Name = htmltext.Clean(payload.Name)
		author.Description = htmltext.Clean(payload.Description)
		author.Link = payload.Link
		author.Position = htmltext.Clean(payload.Position)
		metrics.IncEntityResolved("author", "remote")
	case isStatus(err, http.StatusNotFound):
		author.Name = model.AuthorNotFound
		metrics.IncEntityResolved("author", "placeholder")
	case isStatus(err, http.StatusUnauthorized):
		author.Name = model.AuthorNotAuthorized
		metrics.IncEntityResolved("author", "placeholder")
	default:
		return nil, fmt.Errorf("resolve author %d: %w", remoteID, err)
	}

	if author.Placeholder() {
		r.logger.Warn("author lookup failed terminally; storing placeholder",
			zap.Int64("remote_id", remoteID),
			zap.String("name", author.Name),
		)
	}
	if err := st.UpsertAuthor(ctx, author); err != nil {
		return nil, err
	}
	r.staged.authors[remoteID] = author
	return author, nil
}

// Term resolves a category or tag by remote ID. There is no placeholder path
// for taxonomy entities: a fetch failure aborts the post in flight.
func (r *Resolver) Term(ctx context.Context, st EntityStore, kind model.TermKind, remoteID int64) (*model.Term, error) {
	if cached, ok := r.cache.terms[kind][remoteID]; ok {
		metrics.IncEntityResolved(string(kind), "cache")
		return cached, nil
	}
	if staged, ok := r.staged.terms[kind][remoteID]; ok {
		metrics.IncEntityResolved(string(kind), "cache")
		return staged, nil
	}

	existing, err := st.GetTermByRemoteID(ctx, kind, remoteID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		r.staged.terms[kind][remoteID] = existing
		metrics.IncEntityResolved(string(kind), "store")
		return existing, nil
	}

	payload, err := r.api.Term(ctx, kind, remoteID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %d: %w", kind, remoteID, err)
	}
	term := &model.Term{
		RemoteID:    remoteID,
		Kind:        kind,
		Count:       payload.Count,
		Name:        htmltext.Clean(payload.Name),
		Description: htmltext.Clean(payload.Description),
		Link:        payload.Link,
		Slug:        payload.Slug,
	}
	if err := st.UpsertTerm(ctx, term); err != nil {
		return nil, err
	}
	r.staged.terms[kind][remoteID] = term
	metrics.IncEntityResolved(string(kind), "remote")
	return term, nil
}

func isStatus(err error, code int) bool {
	var statusErr *fetch.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
