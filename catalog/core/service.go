package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSearchPhraseLen = 4096

type Service struct {
	log      *slog.Logger
	db       Storage
	words    Words
	events   Events
	pageSize int
}

// NewService builds the catalog. events may be nil when no broker is
// configured; writes are then not announced.
func NewService(log *slog.Logger, db Storage, words Words, events Events, pageSize int) (*Service, error) {
	if log == nil || db == nil || words == nil {
		return nil, ErrNilDependency
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size %d: %w", pageSize, ErrBadArguments)
	}
	return &Service{
		log:      log,
		db:       db,
		words:    words,
		events:   events,
		pageSize: pageSize,
	}, nil
}

func (s *Service) PageSize() int { return s.pageSize }

// List returns one page of comics. "All" or an empty category means no
// category filter. The first page always exists; any other page past the
// end is ErrNotFound.
func (s *Service) List(ctx context.Context, params ListParams) (ComicPage, error) {
	if params.Page < 1 {
		return ComicPage{}, fmt.Errorf("page %d: %w", params.Page, ErrNotFound)
	}
	q := ComicQuery{
		Limit:  s.pageSize,
		Offset: (params.Page - 1) * s.pageSize,
	}
	if c := strings.TrimSpace(params.Category); !strings.EqualFold(c, AllCategory) {
		q.Category = c
	}
	if phrase := strings.TrimSpace(params.Search); phrase != "" {
		q.Words = s.words.Norm(truncateUTF8ToBytes(phrase, maxSearchPhraseLen))
	}

	comics, count, err := s.db.Comics(ctx, q)
	if err != nil {
		return ComicPage{}, err
	}
	if params.Page > 1 && q.Offset >= count {
		return ComicPage{}, fmt.Errorf("page %d of %d comics: %w", params.Page, count, ErrNotFound)
	}
	return ComicPage{
		Comics:   comics,
		Count:    count,
		Page:     params.Page,
		PageSize: s.pageSize,
	}, nil
}

func (s *Service) Comic(ctx context.Context, slug string) (Comic, error) {
	return s.db.Comic(ctx, slug)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.db.Categories(ctx)
}

func (s *Service) Chapters(ctx context.Context, slug string) ([]Chapter, error) {
	c, err := s.db.Comic(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.db.Chapters(ctx, c.ID)
}

// ViewChapter counts one more view and returns the new total.
func (s *Service) ViewChapter(ctx context.Context, chapterID int) (int, error) {
	if chapterID < 1 {
		return 0, ErrBadArguments
	}
	return s.db.AddChapterView(ctx, chapterID)
}

func (s *Service) Create(ctx context.Context, in ComicInput) (Comic, error) {
	in, err := cleanInput(in)
	if err != nil {
		return Comic{}, err
	}
	c, err := s.db.CreateComic(ctx, in, s.words.Norm(in.Title))
	if err != nil {
		return Comic{}, err
	}
	s.publish(c.Slug)
	return c, nil
}

func (s *Service) Update(ctx context.Context, slug string, in ComicInput) (Comic, error) {
	if in.Slug == "" {
		in.Slug = slug
	}
	if in.Slug != slug {
		return Comic{}, fmt.Errorf("slug cannot change: %w", ErrBadArguments)
	}
	in, err := cleanInput(in)
	if err != nil {
		return Comic{}, err
	}
	c, err := s.db.UpdateComic(ctx, slug, in, s.words.Norm(in.Title))
	if err != nil {
		return Comic{}, err
	}
	s.publish(c.Slug)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, slug string) error {
	if err := s.db.DeleteComic(ctx, slug); err != nil {
		return err
	}
	s.publish(slug)
	return nil
}

func (s *Service) publish(slug string) {
	if s.events == nil {
		return
	}
	s.log.Info("publishing comic updated event", "slug", slug)
	s.events.PublishComicUpdated(slug)
}

func cleanInput(in ComicInput) (ComicInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Thumbnail = strings.TrimSpace(in.Thumbnail)
	if in.Title == "" {
		return in, fmt.Errorf("empty title: %w", ErrBadArguments)
	}
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		return in, fmt.Errorf("title %q has no slug: %w", in.Title, ErrBadArguments)
	}

	seen := make(map[string]struct{}, len(in.Categories))
	cats := make([]string, 0, len(in.Categories))
	for _, name := range in.Categories {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || strings.EqualFold(name, AllCategory) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cats = append(cats, name)
	}
	in.Categories = cats
	return in, nil
}

func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func truncateUTF8ToBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	i := 0
	for i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		if i+size > limit {
			break
		}
		i += size
	}
	return s[:i]
}
