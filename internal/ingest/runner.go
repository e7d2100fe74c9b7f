// Package ingest implements the incremental ingestion pipeline: pagination
// over the remote listing, keyword search, entity resolution and idempotent
// persistence.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/newsroomlab/pressharvest/internal/metrics"
	"github.com/newsroomlab/pressharvest/internal/model"
	"github.com/newsroomlab/pressharvest/internal/wp"
)

// Extractor parses a search results page into result items.
type Extractor interface {
	Extract(html []byte, sessionID int64) ([]model.SearchResultItem, error)
}

// Summary aggregates the outcome of one run for the final log line.
type Summary struct {
	RunID    string
	Pages    int
	Ingested int
	Failed   int
	Items    int
}

// Runner drives the two ingestion modes across remote pages.
type Runner struct {
	api       API
	ingestor  *Ingestor
	sessions  SessionStore
	extractor Extractor
	pacer     *rate.Limiter
	logger    *zap.Logger
}

// NewRunner builds a Runner. pageDelay is the cooperative pause between page
// fetches; zero disables pacing.
func NewRunner(
	api API,
	ingestor *Ingestor,
	sessions SessionStore,
	extractor Extractor,
	pageDelay time.Duration,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if pageDelay > 0 {
		limit = rate.Every(pageDelay)
	}
	return &Runner{
		api:       api,
		ingestor:  ingestor,
		sessions:  sessions,
		extractor: extractor,
		pacer:     rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// HarvestAll ingests every page of the remote post listing, starting at page
// 1 and stopping on the remote's invalid-page sentinel. A post that fails to
// ingest is logged and skipped; a page that fails to fetch after retries
// aborts the run.
func (r *Runner) HarvestAll(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("starting full harvest")

	for page := 1; ; page++ {
		if err := r.pacer.Wait(ctx); err != nil {
			return summary, err
		}

		posts, err := r.api.PostsPage(ctx, page)
		if errors.Is(err, wp.ErrInvalidPage) {
			logger.Info("reached last page", zap.Int("pages", summary.Pages))
			break
		}
		if err != nil {
			return summary, fmt.Errorf("fetch posts page %d: %w", page, err)
		}

		summary.Pages++
		metrics.IncPageHarvested()
		logger.Info("harvesting page", zap.Int("page", page), zap.Int("posts", len(posts)))

		for i := range posts {
			if _, err := r.ingestor.Ingest(ctx, &posts[i]); err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				summary.Failed++
				logger.Warn("post ingestion failed; continuing",
					zap.Int("page", page),
					zap.Int64("remote_id", posts[i].ID),
					zap.Error(err),
				)
				continue
			}
			summary.Ingested++
		}
	}

	logger.Info("full harvest finished",
		zap.Int("pages", summary.Pages),
		zap.Int("ingested", summary.Ingested),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// SearchByKeyword fetches pageCount search result pages for keyword, records
// the session and its items, then ingests the post behind each item's slug
// and links the item to it. Every requested page is visited; there is no
// early termination.
func (r *Runner) SearchByKeyword(ctx context.Context, keyword string, pageCount int) (Summary, []model.SearchResultItem, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := r.logger.With(
		zap.String("run_id", summary.RunID),
		zap.String("keyword", keyword),
	)
	logger.Info("starting keyword search", zap.Int("pages", pageCount))

	kw, err := r.sessions.GetOrCreateKeyword(ctx, keyword)
	if err != nil {
		return summary, nil, err
	}
	session := model.SearchSession{KeywordID: kw.ID, PageCount: pageCount}
	if err := r.sessions.CreateSearchSession(ctx, &session); err != nil {
		return summary, nil, err
	}

	var items []model.SearchResultItem
	for page := 1; page <= pageCount; page++ {
		if err := r.pacer.Wait(ctx); err != nil {
			return summary, items, err
		}

		html, err := r.api.SearchPage(ctx, keyword, page)
		if err != nil {
			if ctx.Err() != nil {
				return summary, items, ctx.Err()
			}
			logger.Warn("search page fetch failed; continuing", zap.Int("page", page), zap.Error(err))
			continue
		}
		summary.Pages++
		metrics.IncPageHarvested()

		extracted, err := r.extractor.Extract(html, session.ID)
		if err != nil {
			logger.Warn("search page parse failed; continuing", zap.Int("page", page), zap.Error(err))
			continue
		}
		for i := range extracted {
			if err := r.sessions.CreateSearchResultItem(ctx, &extracted[i]); err != nil {
				return summary, items, err
			}
		}
		items = append(items, extracted...)
	}
	summary.Items = len(items)
	logger.Info("search extraction finished", zap.Int("items", len(items)))

	for i := range items {
		result, err := r.ingestor.IngestBySlug(ctx, items[i].Slug)
		if err != nil {
			if ctx.Err() != nil {
				return summary, items, ctx.Err()
			}
			summary.Failed++
			logger.Warn("search item ingestion failed; continuing",
				zap.String("slug", items[i].Slug),
				zap.Error(err),
			)
			continue
		}
		if err := r.sessions.LinkResultItemPost(ctx, items[i].ID, result.Post.ID); err != nil {
			return summary, items, err
		}
		items[i].PostID = result.Post.ID
		summary.Ingested++
	}

	logger.Info("keyword search finished",
		zap.Int("items", summary.Items),
		zap.Int("ingested", summary.Ingested),
		zap.Int("failed", summary.Failed),
	)
	return summary, items, nil
}
