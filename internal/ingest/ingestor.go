package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/htmltext"
	"github.com/newsroomlab/pressharvest/internal/metrics"
	"github.com/newsroomlab/pressharvest/internal/model"
	"github.com/newsroomlab/pressharvest/internal/wp"
)

// Result is the fully resolved output of one post ingestion, complete enough
// for reporting and export without further remote calls.
type Result struct {
	Post       model.Post
	Author     model.Author
	Categories []model.Term
	Tags       []model.Term
	// Created is true when the post row did not exist before this ingestion.
	Created bool
}

// Ingestor normalizes post payloads and persists them with their author,
// terms and join rows. Slug-based and page-based ingestion converge here so
// the parsing logic exists exactly once.
type Ingestor struct {
	api      API
	resolver *Resolver
	tx       TxRunner
	logger   *zap.Logger
}

// NewIngestor builds an Ingestor.
func NewIngestor(api API, resolver *Resolver, tx TxRunner, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		api:      api,
		resolver: resolver,
		tx:       tx,
		logger:   logger,
	}
}

// IngestBySlug fetches the post identified by slug and ingests it.
func (ing *Ingestor) IngestBySlug(ctx context.Context, slug string) (*Result, error) {
	payload, err := ing.api.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return ing.Ingest(ctx, payload)
}

// Ingest persists one post payload inside a single transaction: the post row
// keyed by remote ID, its author, every category and tag, and the join rows.
// Re-ingesting the same remote ID updates the existing row in place.
func (ing *Ingestor) Ingest(ctx context.Context, payload *wp.PostPayload) (*Result, error) {
	if payload == nil || payload.ID == 0 {
		metrics.IncPostIngested("failed")
		return nil, fmt.Errorf("post payload missing remote id")
	}

	created, err := wp.ParseTime(payload.Date)
	if err != nil {
		metrics.IncPostIngested("failed")
		return nil, fmt.Errorf("post %d: bad created date: %w", payload.ID, err)
	}
	modified, err := wp.ParseTime(payload.Modified)
	if err != nil {
		metrics.IncPostIngested("failed")
		return nil, fmt.Errorf("post %d: bad modified date: %w", payload.ID, err)
	}

	var result *Result
	err = ing.tx.WithPostTx(ctx, func(st PostStore) error {
		existing, err := st.GetPostByRemoteID(ctx, payload.ID)
		if err != nil {
			return err
		}

		author, err := ing.resolver.Author(ctx, st, payload.Author)
		if err != nil {
			return err
		}

		categories, err := ing.resolveTerms(ctx, st, model.KindCategory, payload.Categories)
		if err != nil {
			return err
		}
		tags, err := ing.resolveTerms(ctx, st, model.KindTag, payload.Tags)
		if err != nil {
			return err
		}

		post := model.Post{
			RemoteID:          payload.ID,
			CreatedDate:       created,
			ModifiedDate:      modified,
			Slug:              payload.Slug,
			Status:            htmltext.Clean(payload.Status),
			Type:              htmltext.Clean(payload.Type),
			Link:              payload.Link,
			Title:             htmltext.Clean(payload.Title.Rendered),
			Content:           htmltext.Clean(payload.Content.Rendered),
			Excerpt:           htmltext.Clean(payload.Excerpt.Rendered),
			AuthorID:          author.ID,
			FeaturedMediaLink: payload.FeaturedMediaURL,
			Format:            payload.Format,
		}
		if payload.PrimaryCategory != nil {
			primary, err := ing.resolver.Term(ctx, st, model.KindCategory, payload.PrimaryCategory.TermID)
			if err != nil {
				return err
			}
			post.PrimaryCategoryID = primary.ID
		}

		if err := st.UpsertPost(ctx, &post); err != nil {
			return err
		}
		for _, c := range categories {
			if err := st.LinkPostCategory(ctx, post.ID, c.ID); err != nil {
				return err
			}
		}
		for _, tg := range tags {
			if err := st.LinkPostTag(ctx, post.ID, tg.ID); err != nil {
				return err
			}
		}

		result = &Result{
			Post:       post,
			Author:     *author,
			Categories: categories,
			Tags:       tags,
			Created:    existing == nil,
		}
		return nil
	})
	if err != nil {
		ing.resolver.Discard()
		metrics.IncPostIngested("failed")
		return nil, err
	}
	ing.resolver.Commit()

	outcome := "updated"
	if result.Created {
		outcome = "created"
	}
	metrics.IncPostIngested(outcome)
	ing.logger.Info("post ingested",
		zap.Int64("remote_id", result.Post.RemoteID),
		zap.String("slug", result.Post.Slug),
		zap.String("title", result.Post.Title),
		zap.String("author", result.Author.Name),
		zap.Int("categories", len(result.Categories)),
		zap.Int("tags", len(result.Tags)),
		zap.Bool("created", result.Created),
	)
	return result, nil
}

func (ing *Ingestor) resolveTerms(ctx context.Context, st PostStore, kind model.TermKind, ids []int64) ([]model.Term, error) {
	terms := make([]model.Term, 0, len(ids))
	for _, id := range ids {
		term, err := ing.resolver.Term(ctx, st, kind, id)
		if err != nil {
			return nil, err
		}
		terms = append(terms, *term)
	}
	return terms, nil
}
