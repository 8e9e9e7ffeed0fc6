package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamuelNgundi/fullstack-comic-app/catalog/core"
)

type stubCatalog struct {
	page       core.ComicPage
	listErr    error
	lastParams core.ListParams
	comics     map[string]core.Comic
	lastInput  core.ComicInput
}

func (s *stubCatalog) List(_ context.Context, p core.ListParams) (core.ComicPage, error) {
	s.lastParams = p
	return s.page, s.listErr
}

func (s *stubCatalog) Comic(_ context.Context, slug string) (core.Comic, error) {
	c, ok := s.comics[slug]
	if !ok {
		return core.Comic{}, core.ErrNotFound
	}
	return c, nil
}

func (s *stubCatalog) Categories(context.Context) ([]core.Category, error) {
	return []core.Category{{ID: 1, Name: "Action"}}, nil
}

func (s *stubCatalog) Chapters(_ context.Context, slug string) ([]core.Chapter, error) {
	if _, ok := s.comics[slug]; !ok {
		return nil, core.ErrNotFound
	}
	return []core.Chapter{{ID: 70, Number: 1, Title: "Romance Dawn", Views: 3}}, nil
}

func (s *stubCatalog) ViewChapter(_ context.Context, id int) (int, error) {
	if id != 70 {
		return 0, core.ErrNotFound
	}
	return 4, nil
}

func (s *stubCatalog) Create(_ context.Context, in core.ComicInput) (core.Comic, error) {
	s.lastInput = in
	if _, ok := s.comics[in.Slug]; ok {
		return core.Comic{}, core.ErrAlreadyExists
	}
	return core.Comic{ID: 9, Slug: in.Slug, Title: in.Title}, nil
}

func (s *stubCatalog) Update(_ context.Context, slug string, in core.ComicInput) (core.Comic, error) {
	s.lastInput = in
	if _, ok := s.comics[slug]; !ok {
		return core.Comic{}, core.ErrNotFound
	}
	return core.Comic{ID: 1, Slug: slug, Title: in.Title}, nil
}

func (s *stubCatalog) Delete(_ context.Context, slug string) error {
	if _, ok := s.comics[slug]; !ok {
		return core.ErrNotFound
	}
	return nil
}

type stubAuth struct{}

func (stubAuth) IssueToken() (string, error) { return "tok", nil }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newMux(c core.Catalog) *http.ServeMux {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	mux.Handle("GET /api/comics/{$}", NewComicsHandler(log, c))
	mux.Handle("POST /api/comics/{$}", NewCreateHandler(log, c))
	mux.Handle("GET /api/comics/{slug}/{$}", NewComicHandler(log, c))
	mux.Handle("PUT /api/comics/{slug}/{$}", NewUpdateHandler(log, c))
	mux.Handle("DELETE /api/comics/{slug}/{$}", NewDeleteHandler(log, c))
	mux.Handle("GET /api/comics/{slug}/chapters/{$}", NewChaptersHandler(log, c))
	mux.Handle("POST /api/chapters/{id}/views/{$}", NewChapterViewHandler(log, c))
	mux.Handle("GET /api/categories/{$}", NewCategoriesHandler(log, c))
	mux.Handle("POST /api/login", NewLoginHandler(log, stubAuth{}, "admin", "secret"))
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestComicsHandler(t *testing.T) {
	c := &stubCatalog{page: core.ComicPage{
		Comics: []core.Comic{{ID: 1, Slug: "one-piece", Title: "One Piece",
			Categories: []core.Category{{ID: 1, Name: "Action"}}}},
		Count:    40,
		Page:     2,
		PageSize: 12,
	}}
	mux := newMux(c)

	rec := serve(mux, http.MethodGet, "http://example.com/api/comics/?category=Action&page=2&search=pirate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, core.ListParams{Category: "Action", Search: "pirate", Page: 2}, c.lastParams)

	var got listReply
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, 40, got.Count)
	require.NotNil(t, got.Next)
	require.Equal(t, "http://example.com/api/comics/?category=Action&page=3&search=pirate", *got.Next)
	require.NotNil(t, got.Previous)
	require.Equal(t, "http://example.com/api/comics/?category=Action&search=pirate", *got.Previous)
	require.Len(t, got.Results, 1)
	require.Equal(t, "Action", got.Results[0].Categories[0].Name)
}

func TestComicsHandler_FirstAndOnlyPage(t *testing.T) {
	c := &stubCatalog{page: core.ComicPage{Count: 0, Page: 1, PageSize: 12}}
	rec := serve(newMux(c), http.MethodGet, "/api/comics/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, rec.Body.String())
	require.Equal(t, 1, c.lastParams.Page)
}

func TestComicsHandler_InvalidPage(t *testing.T) {
	c := &stubCatalog{}
	mux := newMux(c)

	for _, target := range []string{"/api/comics/?page=abc", "/api/comics/?page=0"} {
		rec := serve(mux, http.MethodGet, target, "")
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		require.JSONEq(t, `{"detail":"Not found."}`, rec.Body.String())
	}

	c.listErr = core.ErrNotFound
	rec := serve(mux, http.MethodGet, "/api/comics/?page=9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	c.listErr = errors.New("db down")
	rec = serve(mux, http.MethodGet, "/api/comics/", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDetailEndpoints(t *testing.T) {
	c := &stubCatalog{comics: map[string]core.Comic{"one-piece": {ID: 1, Slug: "one-piece", Title: "One Piece"}}}
	mux := newMux(c)

	rec := serve(mux, http.MethodGet, "/api/comics/one-piece/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":1,"slug":"one-piece","title":"One Piece","thumbnail":"","categories":[]}`, rec.Body.String())

	rec = serve(mux, http.MethodGet, "/api/comics/nope/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(mux, http.MethodGet, "/api/categories/", "")
	require.JSONEq(t, `[{"id":1,"name":"Action"}]`, rec.Body.String())

	rec = serve(mux, http.MethodGet, "/api/comics/one-piece/chapters/", "")
	require.JSONEq(t, `[{"id":70,"number":1,"title":"Romance Dawn","views":3}]`, rec.Body.String())

	rec = serve(mux, http.MethodPost, "/api/chapters/70/views/", "")
	require.JSONEq(t, `{"chapter":70,"views":4}`, rec.Body.String())
	rec = serve(mux, http.MethodPost, "/api/chapters/x/views/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteEndpoints(t *testing.T) {
	c := &stubCatalog{comics: map[string]core.Comic{"one-piece": {ID: 1, Slug: "one-piece"}}}
	mux := newMux(c)

	rec := serve(mux, http.MethodPost, "/api/comics/", `{"slug":"monster","title":"Monster","categories":["Drama"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []string{"Drama"}, c.lastInput.Categories)

	rec = serve(mux, http.MethodPost, "/api/comics/", `{"slug":"one-piece","title":"One Piece"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(mux, http.MethodPost, "/api/comics/", `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodPut, "/api/comics/one-piece/", `{"title":"One Piece Red"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "One Piece Red")

	rec = serve(mux, http.MethodDelete, "/api/comics/one-piece/", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(mux, http.MethodDelete, "/api/comics/nope/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	mux := newMux(&stubCatalog{})

	rec := serve(mux, http.MethodPost, "/api/login", `{"name":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "tok", rec.Body.String())

	rec = serve(mux, http.MethodPost, "/api/login", `{"name":"admin","password":"x"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPingHandler(t *testing.T) {
	h := NewPingHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), map[string]core.Pinger{
		"db":     stubPinger{},
		"broker": stubPinger{err: errors.New("down")},
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.JSONEq(t, `{"replies":{"db":"ok","broker":"unavailable"}}`, rec.Body.String())
}
