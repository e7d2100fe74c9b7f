package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const searchPage = `
<html><body>
<div class="results">
  <h4 class="pb-10"><a href="https://example.com/2024/03/01/example-title-slug/comments">Example Title</a></h4>
  <h4 class="pb-10"><a href="https://example.com/2024/03/02/second-story/">Second Story</a></h4>
  <h4 class="pb-10"><span>No anchor here</span></h4>
  <h4 class="other"><a href="https://example.com/2024/03/03/not-a-result/">Not a result</a></h4>
</div>
</body></html>`

func TestExtractFindsHeadings(t *testing.T) {
	t.Parallel()

	items, err := NewExtractor(nil).Extract([]byte(searchPage), 12)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "Example Title", items[0].Title)
	require.Equal(t, "example-title-slug", items[0].Slug)
	require.Equal(t, "https://example.com/2024/03/01/example-title-slug/comments", items[0].URL)
	require.EqualValues(t, 12, items[0].SessionID)

	require.Equal(t, "Second Story", items[1].Title)
	require.Equal(t, "second-story", items[1].Slug)
}

func TestExtractEmptyPage(t *testing.T) {
	t.Parallel()

	items, err := NewExtractor(nil).Extract([]byte("<html><body></body></html>"), 1)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestSlugFromURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		href string
		want string
	}{
		{"https://example.com/2024/03/01/example-title-slug/comments", "example-title-slug"},
		{"https://example.com/2024/03/01/example-title-slug/", "example-title-slug"},
		{"https://example.com/plain", "example.com"},
		{"nothing", ""},
	}
	for _, tc := range cases {
		if got := SlugFromURL(tc.href); got != tc.want {
			t.Errorf("SlugFromURL(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}
