package htmltext

import "testing"

func TestClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "hello world", "hello world"},
		{"tags removed", "<p>hello <b>world</b></p>", "hello world"},
		{"entities decoded", "Fish &amp; Chips", "Fish & Chips"},
		{"whitespace collapsed", "  a \n\t b  ", "a b"},
		{"nested markup", `<div class="excerpt"><a href="/x">Read <em>more</em></a> now</div>`, "Read more now"},
		{"script dropped", "<script>alert(1)</script>title", "title"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
