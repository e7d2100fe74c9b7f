// Package model defines the domain entities persisted by the harvester.
// Every entity carries the numeric ID assigned by the remote site alongside
// the local surrogate key, and uniqueness is always enforced on the remote ID.
package model

import "time"

// TermKind distinguishes the two taxonomy entity kinds, which share one
// payload shape on the remote API and one resolution path locally.
type TermKind string

// Supported taxonomy kinds.
const (
	KindCategory TermKind = "category"
	KindTag      TermKind = "tag"
)

// Author placeholder names used when the remote lookup fails terminally.
const (
	AuthorNotFound      = "Not Found"
	AuthorNotAuthorized = "Not Authorized"
)

// Author is a post author as exposed by the remote users endpoint.
type Author struct {
	ID          int64
	RemoteID    int64
	Name        string
	Description string
	Link        string
	Position    string
}

// Placeholder reports whether the author is a terminal stand-in created
// because the remote lookup returned 404 or 401.
func (a Author) Placeholder() bool {
	return a.Name == AuthorNotFound || a.Name == AuthorNotAuthorized
}

// Term is a category or tag. The remote API serves both with the same shape;
// Kind selects which table the row lives in.
type Term struct {
	ID          int64
	RemoteID    int64
	Kind        TermKind
	Count       int64
	Name        string
	Description string
	Link        string
	Slug        string
}

// Post is a normalized article row. Title, content, excerpt, status and type
// are stored with HTML markup stripped.
type Post struct {
	ID                int64
	RemoteID          int64
	CreatedDate       time.Time
	ModifiedDate      time.Time
	Slug              string
	Status            string
	Type              string
	Link              string
	Title             string
	Content           string
	Excerpt           string
	AuthorID          int64
	FeaturedMediaLink string
	Format            string
	// PrimaryCategoryID references the local category row flagged as the
	// post's primary category; zero when the payload carries none.
	PrimaryCategoryID int64
}

// Keyword is the root of a search session. Titles are unique.
type Keyword struct {
	ID    int64
	Title string
}

// SearchSession records one keyword-search run and owns its result items.
type SearchSession struct {
	ID        int64
	KeywordID int64
	PageCount int
	CreatedAt time.Time
}

// SearchResultItem is one heading scraped from a search results page.
// PostID stays zero until the referenced post has been ingested.
type SearchResultItem struct {
	ID        int64
	SessionID int64
	Title     string
	URL       string
	Slug      string
	PostID    int64
}
