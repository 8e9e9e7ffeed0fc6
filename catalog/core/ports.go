package core

import "context"

type Catalog interface {
	List(ctx context.Context, params ListParams) (ComicPage, error)
	Comic(ctx context.Context, slug string) (Comic, error)
	Categories(ctx context.Context) ([]Category, error)
	Chapters(ctx context.Context, slug string) ([]Chapter, error)
	ViewChapter(ctx context.Context, chapterID int) (int, error)
	Create(ctx context.Context, in ComicInput) (Comic, error)
	Update(ctx context.Context, slug string, in ComicInput) (Comic, error)
	Delete(ctx context.Context, slug string) error
}

type Storage interface {
	Comics(ctx context.Context, q ComicQuery) ([]Comic, int, error)
	Comic(ctx context.Context, slug string) (Comic, error)
	Categories(ctx context.Context) ([]Category, error)
	CreateComic(ctx context.Context, in ComicInput, words []string) (Comic, error)
	UpdateComic(ctx context.Context, slug string, in ComicInput, words []string) (Comic, error)
	DeleteComic(ctx context.Context, slug string) error
	Chapters(ctx context.Context, comicID int) ([]Chapter, error)
	AddChapterView(ctx context.Context, chapterID int) (int, error)
	Ping(ctx context.Context) error
}

type Words interface {
	Norm(phrase string) []string
}

type Events interface {
	PublishComicUpdated(slug string)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
