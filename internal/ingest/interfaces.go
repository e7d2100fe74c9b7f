package ingest

import (
	"context"

	"github.com/newsroomlab/pressharvest/internal/model"
	"github.com/newsroomlab/pressharvest/internal/store"
	"github.com/newsroomlab/pressharvest/internal/wp"
)

// API is the remote surface the pipeline consumes.
type API interface {
	PostsPage(ctx context.Context, page int) ([]wp.PostPayload, error)
	PostBySlug(ctx context.Context, slug string) (*wp.PostPayload, error)
	Author(ctx context.Context, id int64) (*wp.AuthorPayload, error)
	Term(ctx context.Context, kind model.TermKind, id int64) (*wp.TermPayload, error)
	SearchPage(ctx context.Context, query string, page int) ([]byte, error)
}

// EntityStore is the persistence surface the resolver needs.
type EntityStore interface {
	GetAuthorByRemoteID(ctx context.Context, remoteID int64) (*model.Author, error)
	UpsertAuthor(ctx context.Context, a *model.Author) error
	GetTermByRemoteID(ctx context.Context, kind model.TermKind, remoteID int64) (*model.Term, error)
	UpsertTerm(ctx context.Context, t *model.Term) error
}

// PostStore extends EntityStore with post and join-row operations.
type PostStore interface {
	EntityStore
	GetPostByRemoteID(ctx context.Context, remoteID int64) (*model.Post, error)
	UpsertPost(ctx context.Context, p *model.Post) error
	LinkPostCategory(ctx context.Context, postID, categoryID int64) error
	LinkPostTag(ctx context.Context, postID, tagID int64) error
}

// SessionStore is the persistence surface for keyword-search bookkeeping.
type SessionStore interface {
	GetOrCreateKeyword(ctx context.Context, title string) (*model.Keyword, error)
	CreateSearchSession(ctx context.Context, s *model.SearchSession) error
	CreateSearchResultItem(ctx context.Context, item *model.SearchResultItem) error
	LinkResultItemPost(ctx context.Context, itemID, postID int64) error
}

// TxRunner runs a function against a transaction-bound PostStore. Each post
// is ingested inside exactly one transaction.
type TxRunner interface {
	WithPostTx(ctx context.Context, fn func(PostStore) error) error
}

// storeTxRunner adapts *store.Store to TxRunner.
type storeTxRunner struct {
	st *store.Store
}

// NewStoreTxRunner wraps the Postgres store for use by the Ingestor.
func NewStoreTxRunner(st *store.Store) TxRunner {
	return storeTxRunner{st: st}
}

func (r storeTxRunner) WithPostTx(ctx context.Context, fn func(PostStore) error) error {
	return r.st.WithTx(ctx, func(q store.Queries) error {
		return fn(q)
	})
}
