// Package wp is a typed client for a WordPress-style content API: paginated
// post listings, lookups by slug and ID, and the HTML search endpoint.
package wp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/config"
	"github.com/newsroomlab/pressharvest/internal/fetch"
	"github.com/newsroomlab/pressharvest/internal/model"
)

// invalidPageCode is the REST code signalling a page index beyond the last
// available page. It is the only terminal condition for full harvests.
const invalidPageCode = "rest_post_invalid_page_number"

// Sentinel errors surfaced by the client.
var (
	// ErrInvalidPage reports that the requested listing page is out of range.
	ErrInvalidPage = errors.New("page index beyond available pages")
	// ErrPostNotFound reports that a slug lookup matched no post.
	ErrPostNotFound = errors.New("no post with the requested slug")
	// ErrEmptyBody reports a 200 response with no payload, which the users
	// endpoint is known to produce.
	ErrEmptyBody = errors.New("empty response body")
)

// Fetcher abstracts the retrying HTTP client.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Client issues typed requests against the configured site.
type Client struct {
	site    config.SiteConfig
	fetcher Fetcher
	logger  *zap.Logger
}

// NewClient builds a Client for the endpoints described by site.
func NewClient(site config.SiteConfig, fetcher Fetcher, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{site: site, fetcher: fetcher, logger: logger}
}

// PostsPage fetches one page of the full post listing. Past the last page the
// remote responds with the invalid-page REST code (on a 400), which is
// translated into ErrInvalidPage.
func (c *Client) PostsPage(ctx context.Context, page int) ([]PostPayload, error) {
	target := fmt.Sprintf(c.site.AllPostsURL, c.site.BaseURL, page)
	resp, err := c.fetcher.Get(ctx, target)
	if err != nil {
		if resp != nil && restCode(resp.Body) == invalidPageCode {
			return nil, ErrInvalidPage
		}
		return nil, err
	}
	// Some deployments answer the sentinel with a 200.
	if code := restCode(resp.Body); code == invalidPageCode {
		return nil, ErrInvalidPage
	}

	var posts []PostPayload
	if err := json.Unmarshal(resp.Body, &posts); err != nil {
		return nil, fmt.Errorf("decode posts page %d: %w", page, err)
	}
	return posts, nil
}

// PostBySlug fetches the post identified by slug. The endpoint returns an
// array; by convention the match is at index 0.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*PostPayload, error) {
	target := fmt.Sprintf(c.site.PostBySlug, c.site.BaseURL, url.QueryEscape(slug))
	resp, err := c.fetcher.Get(ctx, target)
	if err != nil {
		return nil, err
	}

	var posts []PostPayload
	if err := json.Unmarshal(resp.Body, &posts); err != nil {
		return nil, fmt.Errorf("decode post %q: %w", slug, err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("post %q: %w", slug, ErrPostNotFound)
	}
	return &posts[0], nil
}

// Author fetches an author by remote ID. Status errors (404, 401) are
// surfaced unchanged so the resolver can apply its placeholder policy; a 200
// with an empty body is reported as ErrEmptyBody.
func (c *Client) Author(ctx context.Context, id int64) (*AuthorPayload, error) {
	target := fmt.Sprintf(c.site.AuthorByID, c.site.BaseURL, id)
	resp, err := c.fetcher.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, fmt.Errorf("author %d: %w", id, ErrEmptyBody)
	}

	var author AuthorPayload
	if err := json.Unmarshal(resp.Body, &author); err != nil {
		return nil, fmt.Errorf("decode author %d: %w", id, err)
	}
	return &author, nil
}

// Term fetches a category or tag by remote ID; the two endpoints share one
// payload shape.
func (c *Client) Term(ctx context.Context, kind model.TermKind, id int64) (*TermPayload, error) {
	template := c.site.CategoryByID
	if kind == model.KindTag {
		template = c.site.TagByID
	}
	target := fmt.Sprintf(template, c.site.BaseURL, id)
	resp, err := c.fetcher.Get(ctx, target)
	if err != nil {
		return nil, err
	}

	var term TermPayload
	if err := json.Unmarshal(resp.Body, &term); err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", kind, id, err)
	}
	return &term, nil
}

// SearchPage fetches one page of HTML search results for query.
func (c *Client) SearchPage(ctx context.Context, query string, page int) ([]byte, error) {
	target := fmt.Sprintf(c.site.SearchURL, c.site.BaseURL, url.QueryEscape(query), page)
	resp, err := c.fetcher.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// restCode extracts the REST error code from an error envelope, returning ""
// when the body is not an envelope.
func restCode(body []byte) string {
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Code
}
