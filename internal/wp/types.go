package wp

import "time"

// Timestamp layouts observed on WordPress REST responses. Post dates come
// back without a zone offset; some deployments emit full RFC3339.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// RenderedField wraps the {"rendered": "..."} objects used for post text.
type RenderedField struct {
	Rendered string `json:"rendered"`
}

// PrimaryCategory identifies the term flagged as a post's primary category.
type PrimaryCategory struct {
	TermID int64 `json:"term_id"`
}

// PostPayload is a post object as served by the posts endpoints.
type PostPayload struct {
	ID               int64            `json:"id"`
	Date             string           `json:"date"`
	Modified         string           `json:"modified"`
	Slug             string           `json:"slug"`
	Status           string           `json:"status"`
	Type             string           `json:"type"`
	Link             string           `json:"link"`
	Title            RenderedField    `json:"title"`
	Content          RenderedField    `json:"content"`
	Excerpt          RenderedField    `json:"excerpt"`
	Author           int64            `json:"author"`
	FeaturedMediaURL string           `json:"jetpack_featured_media_url"`
	Format           string           `json:"format"`
	Categories       []int64          `json:"categories"`
	Tags             []int64          `json:"tags"`
	PrimaryCategory  *PrimaryCategory `json:"primary_category"`
}

// AuthorPayload is a user object from the site's users endpoint.
type AuthorPayload struct {
	Name        string `json:"name"`
	Description string `json:"cbDescription"`
	Link        string `json:"link"`
	Position    string `json:"position"`
}

// TermPayload is a category or tag object; both endpoints share the shape.
type TermPayload struct {
	Count       int64  `json:"count"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Slug        string `json:"slug"`
}

// apiError is the envelope WordPress uses for REST-level failures.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseTime parses a WordPress timestamp, trying the known layouts in order.
// The zero time and a nil error are returned for an empty string.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
