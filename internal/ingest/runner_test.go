package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/model"
	"github.com/newsroomlab/pressharvest/internal/search"
	"github.com/newsroomlab/pressharvest/internal/wp"
)

func newRunner(api *fakeAPI, st *memStore) *Runner {
	ingestor := NewIngestor(api, NewResolver(api, nil), st, zap.NewNop())
	return NewRunner(api, ingestor, st, search.NewExtractor(nil), 0, zap.NewNop())
}

func pagePayload(id int64, slug string) wp.PostPayload {
	return wp.PostPayload{
		ID:         id,
		Slug:       slug,
		Title:      wp.RenderedField{Rendered: slug},
		Author:     5,
		Categories: []int64{3},
		Tags:       []int64{4},
	}
}

func TestHarvestAllStopsOnSentinel(t *testing.T) {
	t.Parallel()

	api := sampleAPI()
	api.pages = map[int][]wp.PostPayload{
		1: {pagePayload(100, "first"), pagePayload(101, "second")},
		2: {pagePayload(102, "third")},
	}
	st := newMemStore()

	summary, err := newRunner(api, st).HarvestAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, []int{1, 2, 3}, api.pageCalls, "must stop exactly at the sentinel page")
	require.Equal(t, 2, summary.Pages)
	require.Equal(t, 3, summary.Ingested)
	require.Zero(t, summary.Failed)
	require.Len(t, st.posts, 3)
}

func TestHarvestAllSkipsFailedPosts(t *testing.T) {
	t.Parallel()

	api := sampleAPI()
	api.pages = map[int][]wp.PostPayload{
		1: {pagePayload(100, "ok"), {} /* malformed: no remote id */, pagePayload(101, "also-ok")},
	}
	st := newMemStore()

	summary, err := newRunner(api, st).HarvestAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Ingested)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, st.posts, 2)
}

func TestHarvestAllAbortsOnPageFetchFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	api := sampleAPI()
	api.pages = map[int][]wp.PostPayload{1: {pagePayload(100, "first")}}
	api.pageErrs = map[int]error{2: boom}
	st := newMemStore()

	summary, err := newRunner(api, st).HarvestAll(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, summary.Ingested, "work before the failure is kept")
	require.Equal(t, []int{1, 2}, api.pageCalls)
}

const twoResultPage = `
<html><body>
<h4 class="pb-10"><a href="https://example.com/2024/03/01/first-story/comments">First Story</a></h4>
<h4 class="pb-10"><a href="https://example.com/2024/03/02/second-story/">Second Story</a></h4>
</body></html>`

func TestSearchByKeywordEndToEnd(t *testing.T) {
	t.Parallel()

	first := pagePayload(100, "first-story")
	second := pagePayload(101, "second-story")
	// Both posts share the category; tags are distinct.
	second.Tags = []int64{6}

	api := sampleAPI()
	api.terms[model.KindTag][6] = &wp.TermPayload{Count: 1, Name: "Robots", Slug: "robots"}
	api.slugs = map[string]*wp.PostPayload{
		"first-story":  &first,
		"second-story": &second,
	}
	api.searchPages = map[int][]byte{1: []byte(twoResultPage)}
	st := newMemStore()

	summary, items, err := newRunner(api, st).SearchByKeyword(context.Background(), "stories", 1)
	require.NoError(t, err)

	require.Equal(t, 2, summary.Items)
	require.Equal(t, 2, summary.Ingested)
	require.Zero(t, summary.Failed)

	require.Len(t, st.keywords, 1)
	require.Len(t, st.sessions, 1)
	require.Equal(t, 1, st.sessions[0].PageCount)

	require.Len(t, items, 2)
	require.Equal(t, "first-story", items[0].Slug)
	require.Equal(t, "second-story", items[1].Slug)
	for _, item := range items {
		require.NotZero(t, item.PostID, "items must be linked to their ingested posts")
	}

	require.Len(t, st.posts, 2)
	require.Len(t, st.terms[model.KindCategory], 1, "shared category resolved once")
	require.Len(t, st.terms[model.KindTag], 2)
	require.Len(t, st.postCats, 2, "one join row per post-category pair")
	require.Len(t, st.postTags, 2, "one join row per post-tag pair")
}

func TestSearchByKeywordVisitsEveryRequestedPage(t *testing.T) {
	t.Parallel()

	api := sampleAPI()
	api.searchPages = map[int][]byte{}
	st := newMemStore()

	summary, items, err := newRunner(api, st).SearchByKeyword(context.Background(), "nothing", 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, api.searchCalls, "no early termination in search mode")
	require.Empty(t, items)
	require.Zero(t, summary.Ingested)
}

func TestSearchByKeywordSkipsUnresolvableSlugs(t *testing.T) {
	t.Parallel()

	api := sampleAPI()
	api.searchPages = map[int][]byte{1: []byte(twoResultPage)}
	first := pagePayload(100, "first-story")
	api.slugs = map[string]*wp.PostPayload{"first-story": &first}
	st := newMemStore()

	summary, items, err := newRunner(api, st).SearchByKeyword(context.Background(), "stories", 1)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Ingested)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, items, 2)
	require.NotZero(t, items[0].PostID)
	require.Zero(t, items[1].PostID, "unresolved item keeps a null post ref")
}
