package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/newsroomlab/pressharvest/internal/fetch"
	"github.com/newsroomlab/pressharvest/internal/model"
	"github.com/newsroomlab/pressharvest/internal/wp"
)

// memStore is an in-memory PostStore/SessionStore/TxRunner used across the
// package tests. Uniqueness is keyed by remote ID, mirroring the schema.
type memStore struct {
	nextID   int64
	authors  map[int64]*model.Author
	terms    map[model.TermKind]map[int64]*model.Term
	posts    map[int64]*model.Post
	postCats map[[2]int64]bool
	postTags map[[2]int64]bool
	keywords map[string]*model.Keyword
	sessions []*model.SearchSession
	items    []*model.SearchResultItem
}

func newMemStore() *memStore {
	return &memStore{
		authors: make(map[int64]*model.Author),
		terms: map[model.TermKind]map[int64]*model.Term{
			model.KindCategory: make(map[int64]*model.Term),
			model.KindTag:      make(map[int64]*model.Term),
		},
		posts:    make(map[int64]*model.Post),
		postCats: make(map[[2]int64]bool),
		postTags: make(map[[2]int64]bool),
		keywords: make(map[string]*model.Keyword),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// WithPostTx mimics transaction semantics: on error every table the
// transaction could touch is restored to its pre-transaction state.
func (m *memStore) WithPostTx(_ context.Context, fn func(PostStore) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	authors  map[int64]*model.Author
	terms    map[model.TermKind]map[int64]*model.Term
	posts    map[int64]*model.Post
	postCats map[[2]int64]bool
	postTags map[[2]int64]bool
}

func (m *memStore) snapshot() memSnapshot {
	terms := make(map[model.TermKind]map[int64]*model.Term, len(m.terms))
	for kind, byID := range m.terms {
		terms[kind] = copyMap(byID)
	}
	return memSnapshot{
		authors:  copyMap(m.authors),
		terms:    terms,
		posts:    copyMap(m.posts),
		postCats: copyMap(m.postCats),
		postTags: copyMap(m.postTags),
	}
}

// restore rewinds the data maps; nextID keeps advancing like a sequence.
func (m *memStore) restore(snap memSnapshot) {
	m.authors = snap.authors
	m.terms = snap.terms
	m.posts = snap.posts
	m.postCats = snap.postCats
	m.postTags = snap.postTags
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memStore) GetAuthorByRemoteID(_ context.Context, remoteID int64) (*model.Author, error) {
	if a, ok := m.authors[remoteID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) UpsertAuthor(_ context.Context, a *model.Author) error {
	if existing, ok := m.authors[a.RemoteID]; ok {
		a.ID = existing.ID
	} else {
		a.ID = m.id()
	}
	copied := *a
	m.authors[a.RemoteID] = &copied
	return nil
}

func (m *memStore) GetTermByRemoteID(_ context.Context, kind model.TermKind, remoteID int64) (*model.Term, error) {
	if t, ok := m.terms[kind][remoteID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) UpsertTerm(_ context.Context, t *model.Term) error {
	if existing, ok := m.terms[t.Kind][t.RemoteID]; ok {
		t.ID = existing.ID
	} else {
		t.ID = m.id()
	}
	copied := *t
	m.terms[t.Kind][t.RemoteID] = &copied
	return nil
}

func (m *memStore) GetPostByRemoteID(_ context.Context, remoteID int64) (*model.Post, error) {
	if p, ok := m.posts[remoteID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) UpsertPost(_ context.Context, p *model.Post) error {
	if existing, ok := m.posts[p.RemoteID]; ok {
		p.ID = existing.ID
	} else {
		p.ID = m.id()
	}
	copied := *p
	m.posts[p.RemoteID] = &copied
	return nil
}

func (m *memStore) LinkPostCategory(_ context.Context, postID, categoryID int64) error {
	m.postCats[[2]int64{postID, categoryID}] = true
	return nil
}

func (m *memStore) LinkPostTag(_ context.Context, postID, tagID int64) error {
	m.postTags[[2]int64{postID, tagID}] = true
	return nil
}

func (m *memStore) GetOrCreateKeyword(_ context.Context, title string) (*model.Keyword, error) {
	if kw, ok := m.keywords[title]; ok {
		copied := *kw
		return &copied, nil
	}
	kw := &model.Keyword{ID: m.id(), Title: title}
	m.keywords[title] = kw
	copied := *kw
	return &copied, nil
}

func (m *memStore) CreateSearchSession(_ context.Context, s *model.SearchSession) error {
	s.ID = m.id()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	copied := *s
	m.sessions = append(m.sessions, &copied)
	return nil
}

func (m *memStore) CreateSearchResultItem(_ context.Context, item *model.SearchResultItem) error {
	item.ID = m.id()
	copied := *item
	m.items = append(m.items, &copied)
	return nil
}

func (m *memStore) LinkResultItemPost(_ context.Context, itemID, postID int64) error {
	for _, item := range m.items {
		if item.ID == itemID {
			item.PostID = postID
			return nil
		}
	}
	return nil
}

// fakeAPI serves canned payloads and counts remote calls.
type fakeAPI struct {
	pages       map[int][]wp.PostPayload
	pageErrs    map[int]error
	slugs       map[string]*wp.PostPayload
	authors     map[int64]*wp.AuthorPayload
	authorErrs  map[int64]error
	terms       map[model.TermKind]map[int64]*wp.TermPayload
	searchPages map[int][]byte

	pageCalls   []int
	authorCalls []int64
	termCalls   int
	searchCalls []int
}

func (f *fakeAPI) PostsPage(_ context.Context, page int) ([]wp.PostPayload, error) {
	f.pageCalls = append(f.pageCalls, page)
	if err, ok := f.pageErrs[page]; ok {
		return nil, err
	}
	if posts, ok := f.pages[page]; ok {
		return posts, nil
	}
	return nil, wp.ErrInvalidPage
}

func (f *fakeAPI) PostBySlug(_ context.Context, slug string) (*wp.PostPayload, error) {
	if p, ok := f.slugs[slug]; ok {
		return p, nil
	}
	return nil, wp.ErrPostNotFound
}

func (f *fakeAPI) Author(_ context.Context, id int64) (*wp.AuthorPayload, error) {
	f.authorCalls = append(f.authorCalls, id)
	if err, ok := f.authorErrs[id]; ok {
		return nil, err
	}
	if a, ok := f.authors[id]; ok {
		return a, nil
	}
	return nil, &fetch.StatusError{URL: "author", StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) Term(_ context.Context, kind model.TermKind, id int64) (*wp.TermPayload, error) {
	f.termCalls++
	if t, ok := f.terms[kind][id]; ok {
		return t, nil
	}
	return nil, &fetch.StatusError{URL: "term", StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) SearchPage(_ context.Context, _ string, page int) ([]byte, error) {
	f.searchCalls = append(f.searchCalls, page)
	if html, ok := f.searchPages[page]; ok {
		return html, nil
	}
	return []byte("<html><body></body></html>"), nil
}
