package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SamuelNgundi/fullstack-comic-app/catalog/core"
)

type pingReply struct {
	Replies map[string]string `json:"replies"`
}

type detailReply struct {
	Detail string `json:"detail"`
}

type categoryReply struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type comicReply struct {
	ID         int             `json:"id"`
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Thumbnail  string          `json:"thumbnail"`
	Categories []categoryReply `json:"categories"`
}

type listReply struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []comicReply `json:"results"`
}

type chapterReply struct {
	ID     int    `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Views  int    `json:"views"`
}

type chapterViewReply struct {
	Chapter int `json:"chapter"`
	Views   int `json:"views"`
}

type comicRequest struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Thumbnail  string   `json:"thumbnail"`
	Categories []string `json:"categories"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authService interface {
	IssueToken() (string, error)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, detailReply{Detail: "Not found."})
	case errors.Is(err, core.ErrBadArguments):
		writeJSON(w, http.StatusBadRequest, detailReply{Detail: err.Error()})
	case errors.Is(err, core.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, detailReply{Detail: err.Error()})
	default:
		log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, detailReply{Detail: "Internal error."})
	}
}

func toComicReply(c core.Comic) comicReply {
	out := comicReply{
		ID:         c.ID,
		Slug:       c.Slug,
		Title:      c.Title,
		Thumbnail:  c.Thumbnail,
		Categories: make([]categoryReply, 0, len(c.Categories)),
	}
	for _, cat := range c.Categories {
		out.Categories = append(out.Categories, categoryReply{ID: cat.ID, Name: cat.Name})
	}
	return out
}

// ParsePage reads the page query parameter. Anything but a positive integer
// is an invalid page and reported as not found.
func ParsePage(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, core.ErrNotFound
	}
	return v, nil
}

// pageURL links a neighbouring page of the current listing. The first page
// drops the page parameter.
func pageURL(r *http.Request, page int) *string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func NewPingHandler(log *slog.Logger, pingers map[string]core.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := pingReply{Replies: map[string]string{}}
		for name, p := range pingers {
			if err := p.Ping(r.Context()); err != nil {
				log.Warn("ping failed", "service", name, "error", err)
				resp.Replies[name] = "unavailable"
				continue
			}
			resp.Replies[name] = "ok"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func NewComicsHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := ParsePage(q.Get("page"))
		if err != nil {
			writeError(log, w, err)
			return
		}

		res, err := catalog.List(r.Context(), core.ListParams{
			Category: q.Get("category"),
			Search:   q.Get("search"),
			Page:     page,
		})
		if err != nil {
			writeError(log, w, err)
			return
		}

		out := listReply{
			Count:   res.Count,
			Results: make([]comicReply, 0, len(res.Comics)),
		}
		if res.HasNext() {
			out.Next = pageURL(r, res.Page+1)
		}
		if res.HasPrevious() {
			out.Previous = pageURL(r, res.Page-1)
		}
		for _, c := range res.Comics {
			out.Results = append(out.Results, toComicReply(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func NewComicHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := catalog.Comic(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeError(log, w, err)
			return
		}
		writeJSON(w, http.StatusOK, toComicReply(c))
	}
}

func NewCategoriesHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := catalog.Categories(r.Context())
		if err != nil {
			writeError(log, w, err)
			return
		}
		out := make([]categoryReply, 0, len(cats))
		for _, c := range cats {
			out = append(out, categoryReply{ID: c.ID, Name: c.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func NewChaptersHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chs, err := catalog.Chapters(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeError(log, w, err)
			return
		}
		out := make([]chapterReply, 0, len(chs))
		for _, ch := range chs {
			out = append(out, chapterReply{ID: ch.ID, Number: ch.Number, Title: ch.Title, Views: ch.Views})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func NewChapterViewHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			writeError(log, w, core.ErrNotFound)
			return
		}
		views, err := catalog.ViewChapter(r.Context(), id)
		if err != nil {
			writeError(log, w, err)
			return
		}
		writeJSON(w, http.StatusOK, chapterViewReply{Chapter: id, Views: views})
	}
}

func decodeComic(r *http.Request) (core.ComicInput, error) {
	var req comicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return core.ComicInput{}, core.ErrBadArguments
	}
	return core.ComicInput{
		Slug:       req.Slug,
		Title:      req.Title,
		Thumbnail:  req.Thumbnail,
		Categories: req.Categories,
	}, nil
}

func NewCreateHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeComic(r)
		if err != nil {
			writeError(log, w, err)
			return
		}
		c, err := catalog.Create(r.Context(), in)
		if err != nil {
			writeError(log, w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toComicReply(c))
	}
}

func NewUpdateHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeComic(r)
		if err != nil {
			writeError(log, w, err)
			return
		}
		c, err := catalog.Update(r.Context(), r.PathValue("slug"), in)
		if err != nil {
			writeError(log, w, err)
			return
		}
		writeJSON(w, http.StatusOK, toComicReply(c))
	}
}

func NewDeleteHandler(log *slog.Logger, catalog core.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalog.Delete(r.Context(), r.PathValue("slug")); err != nil {
			writeError(log, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func NewLoginHandler(log *slog.Logger, auth authService, adminUser, adminPass string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if req.Name != adminUser || req.Password != adminPass {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		token, err := auth.IssueToken()
		if err != nil {
			log.Error("failed to issue token", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(token))
	}
}
