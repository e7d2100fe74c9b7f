package wp

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsroomlab/pressharvest/internal/config"
	"github.com/newsroomlab/pressharvest/internal/fetch"
	"github.com/newsroomlab/pressharvest/internal/model"
)

var testSite = config.SiteConfig{
	BaseURL:      "https://example.com",
	AllPostsURL:  "%s/wp-json/wp/v2/posts?page=%d",
	PostBySlug:   "%s/wp-json/wp/v2/posts?slug=%s",
	AuthorByID:   "%s/wp-json/tc/v1/users/%d",
	CategoryByID: "%s/wp-json/wp/v2/categories/%d",
	TagByID:      "%s/wp-json/wp/v2/tags/%d",
	SearchURL:    "%s/search?query=%s&page=%d",
}

// fakeFetcher returns canned responses keyed by URL and records requests.
type fakeFetcher struct {
	responses map[string]*fetch.Response
	errs      map[string]error
	requested []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) (*fetch.Response, error) {
	f.requested = append(f.requested, url)
	if err, ok := f.errs[url]; ok {
		return f.responses[url], err
	}
	if resp, ok := f.responses[url]; ok {
		return resp, nil
	}
	return nil, &fetch.StatusError{URL: url, StatusCode: http.StatusNotFound}
}

func TestPostsPageDecodes(t *testing.T) {
	t.Parallel()

	url := "https://example.com/wp-json/wp/v2/posts?page=1"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		url: {URL: url, StatusCode: 200, Body: []byte(`[{"id":7,"slug":"hello","title":{"rendered":"Hello"}}]`)},
	}}

	client := NewClient(testSite, fetcher, nil)
	posts, err := client.PostsPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.EqualValues(t, 7, posts[0].ID)
	require.Equal(t, "hello", posts[0].Slug)
	require.Equal(t, "Hello", posts[0].Title.Rendered)
}

func TestPostsPageTranslatesSentinel(t *testing.T) {
	t.Parallel()

	url := "https://example.com/wp-json/wp/v2/posts?page=99"
	body := []byte(`{"code":"rest_post_invalid_page_number","message":"The page number requested is larger than the number of pages available."}`)

	t.Run("on 400 with status error", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{
			responses: map[string]*fetch.Response{url: {URL: url, StatusCode: 400, Body: body}},
			errs:      map[string]error{url: &fetch.StatusError{URL: url, StatusCode: 400}},
		}
		client := NewClient(testSite, fetcher, nil)
		_, err := client.PostsPage(context.Background(), 99)
		require.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("on 200", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{
			responses: map[string]*fetch.Response{url: {URL: url, StatusCode: 200, Body: body}},
		}
		client := NewClient(testSite, fetcher, nil)
		_, err := client.PostsPage(context.Background(), 99)
		require.ErrorIs(t, err, ErrInvalidPage)
	})
}

func TestPostBySlugUsesFirstMatch(t *testing.T) {
	t.Parallel()

	url := "https://example.com/wp-json/wp/v2/posts?slug=first-post"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		url: {URL: url, StatusCode: 200, Body: []byte(`[{"id":1,"slug":"first-post"},{"id":2,"slug":"first-post-2"}]`)},
	}}

	client := NewClient(testSite, fetcher, nil)
	post, err := client.PostBySlug(context.Background(), "first-post")
	require.NoError(t, err)
	require.EqualValues(t, 1, post.ID)
}

func TestPostBySlugEmptyResult(t *testing.T) {
	t.Parallel()

	url := "https://example.com/wp-json/wp/v2/posts?slug=missing"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		url: {URL: url, StatusCode: 200, Body: []byte(`[]`)},
	}}

	client := NewClient(testSite, fetcher, nil)
	_, err := client.PostBySlug(context.Background(), "missing")
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestAuthorDecodes(t *testing.T) {
	t.Parallel()

	url := "https://example.com/wp-json/tc/v1/users/5"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		url: {URL: url, StatusCode: 200, Body: []byte(`{"name":"Jane Doe","cbDescription":"Bio","link":"https://example.com/jane","position":"Editor"}`)},
	}}

	client := NewClient(testSite, fetcher, nil)
	author, err := client.Author(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", author.Name)
	require.Equal(t, "Bio", author.Description)
	require.Equal(t, "Editor", author.Position)
}

func TestAuthorEmptyBody(t *testing.T) {
	t.Parallel()

	url := "https://example.com/wp-json/tc/v1/users/9"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		url: {URL: url, StatusCode: 200, Body: []byte("  \n")},
	}}

	client := NewClient(testSite, fetcher, nil)
	_, err := client.Author(context.Background(), 9)
	require.ErrorIs(t, err, ErrEmptyBody)
}

func TestTermSelectsEndpointByKind(t *testing.T) {
	t.Parallel()

	catURL := "https://example.com/wp-json/wp/v2/categories/3"
	tagURL := "https://example.com/wp-json/wp/v2/tags/4"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		catURL: {URL: catURL, StatusCode: 200, Body: []byte(`{"count":12,"name":"AI","slug":"ai"}`)},
		tagURL: {URL: tagURL, StatusCode: 200, Body: []byte(`{"count":5,"name":"Gadgets","slug":"gadgets"}`)},
	}}

	client := NewClient(testSite, fetcher, nil)

	cat, err := client.Term(context.Background(), model.KindCategory, 3)
	require.NoError(t, err)
	require.Equal(t, "AI", cat.Name)

	tag, err := client.Term(context.Background(), model.KindTag, 4)
	require.NoError(t, err)
	require.Equal(t, "Gadgets", tag.Name)

	require.Equal(t, []string{catURL, tagURL}, fetcher.requested)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	ts, err := ParseTime("2024-03-01T10:30:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), ts)

	ts, err = ParseTime("2024-03-01T10:30:00Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), ts)

	ts, err = ParseTime("")
	require.NoError(t, err)
	require.True(t, ts.IsZero())

	_, err = ParseTime("yesterday")
	require.Error(t, err)
}
