package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SamuelNgundi/fullstack-comic-app/web/adapters/auth"
	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

type pingReply struct {
	Replies map[string]core.PingStatus `json:"replies"`
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
	DetailPath string          `json:"detail_path"`
	Categories []categoryReply `json:"categories"`
}

type listingReply struct {
	State       string       `json:"state"`
	Items       []comicReply `json:"items"`
	Loading     bool         `json:"loading"`
	Error       *string      `json:"error"`
	CurrentPage int          `json:"current_page"`
	TotalCount  int          `json:"total_count"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type meReply struct {
	User      string    `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type pageBuilder interface {
	CategoryPage(ctx context.Context, category string, page, limit int, session *core.Session) (core.CategoryPage, error)
}

type pageRenderer interface {
	CategoryPage(w io.Writer, page core.CategoryPage) error
	NotFound(w io.Writer) error
}

type sessionResolver interface {
	SessionFromRequest(r *http.Request) (*core.Session, error)
}

type tokenIssuer interface {
	IssueToken(user string) (string, error)
	TTL() time.Duration
}

const DefaultPage = 1

func ParsePage(s string) (int, error) {
	if s == "" {
		return DefaultPage, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, core.ErrBadArguments
	}
	return v, nil
}

// ParseLimit reads the optional card cap; zero means no cap.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, core.ErrBadArguments
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// optionalSession resolves the viewer if there is one; pages render without it.
func optionalSession(log *slog.Logger, sessions sessionResolver, r *http.Request) *core.Session {
	s, err := sessions.SessionFromRequest(r)
	if err != nil {
		if !errors.Is(err, core.ErrMissingContext) {
			log.Debug("ignoring invalid session", "error", err)
		}
		return nil
	}
	return s
}

func NewPingHandler(log *slog.Logger, pingers map[string]core.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := pingReply{Replies: map[string]core.PingStatus{}}
		for name, p := range pingers {
			if err := p.Ping(r.Context()); err != nil {
				log.Warn("ping failed", "service", name, "error", err)
				resp.Replies[name] = core.StatusPingUnavailable
				continue
			}
			resp.Replies[name] = core.StatusPingOK
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func NewCategoryPageHandler(log *slog.Logger, pages pageBuilder, renderer pageRenderer, sessions sessionResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.PathValue("category")
		page, err := ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		limit, err := ParseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		res, err := pages.CategoryPage(r.Context(), category, page, limit, optionalSession(log, sessions, r))
		var buf bytes.Buffer
		status := http.StatusOK
		switch {
		case errors.Is(err, core.ErrNotFound):
			status = http.StatusNotFound
			err = renderer.NotFound(&buf)
		case errors.Is(err, core.ErrBadArguments):
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		case err != nil:
			log.Error("category page failed", "category", category, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		default:
			err = renderer.CategoryPage(&buf, res)
		}
		if err != nil {
			log.Error("render failed", "category", category, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = buf.WriteTo(w)
	}
}

// NewComicsHandler exposes the list state as JSON: the displayed items, the
// loading and error flags and the pagination numbers.
func NewComicsHandler(log *slog.Logger, pages pageBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		if category == "" {
			category = core.AllCategory
		}
		page, err := ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		limit, err := ParseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		res, err := pages.CategoryPage(r.Context(), category, page, limit, nil)
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, core.ErrBadArguments):
				http.Error(w, "bad request", http.StatusBadRequest)
			default:
				log.Error("comics listing failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		p := res.List.Pagination
		out := listingReply{
			State:       res.List.State.String(),
			Items:       make([]comicReply, 0, len(res.List.Cards)),
			Loading:     res.List.Loading,
			CurrentPage: p.CurrentPage,
			TotalCount:  p.TotalCount,
			PageSize:    p.PageSize,
			TotalPages:  p.TotalPages(),
		}
		if res.Err != nil {
			msg := res.Err.Error()
			out.Error = &msg
		}
		for _, card := range res.List.Cards {
			c := comicReply{
				ID:         card.Comic.ID,
				Slug:       card.Comic.Slug,
				Title:      card.Comic.Title,
				Thumbnail:  card.Comic.Thumbnail,
				DetailPath: card.DetailPath,
				Categories: make([]categoryReply, 0, len(card.Comic.Categories)),
			}
			for _, cat := range card.Comic.Categories {
				c.Categories = append(c.Categories, categoryReply{ID: cat.ID, Name: cat.Name})
			}
			out.Items = append(out.Items, c)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func NewLoginHandler(log *slog.Logger, issuer tokenIssuer, adminUser, adminPass string) http.HandlerFunc {
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

		token, err := issuer.IssueToken(req.Name)
		if err != nil {
			log.Error("failed to issue token", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(issuer.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(token))
	}
}

func NewMeHandler(sessions sessionResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.SessionFromRequest(r)
		if err == nil {
			s, err = core.RequireSession(s)
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, meReply{User: s.User, ExpiresAt: s.ExpiresAt})
	}
}
