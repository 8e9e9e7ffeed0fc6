package core

// AllCategory disables the category filter, compared case-insensitively.
const AllCategory = "All"

type Category struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type Comic struct {
	ID         int    `db:"id"`
	Slug       string `db:"slug"`
	Title      string `db:"title"`
	Thumbnail  string `db:"thumbnail"`
	Categories []Category
}

// ComicInput is the writable part of a comic. Categories are matched by name
// and created when missing.
type ComicInput struct {
	Slug       string
	Title      string
	Thumbnail  string
	Categories []string
}

type Chapter struct {
	ID      int    `db:"id"`
	ComicID int    `db:"comic_id"`
	Number  int    `db:"number"`
	Title   string `db:"title"`
	Views   int    `db:"views"`
}

type ListParams struct {
	Category string
	Search   string
	Page     int
}

// ComicQuery is what storage sees: a resolved filter and a window.
type ComicQuery struct {
	Category string
	Words    []string
	Limit    int
	Offset   int
}

type ComicPage struct {
	Comics   []Comic
	Count    int
	Page     int
	PageSize int
}

func (p ComicPage) HasNext() bool {
	return p.Page*p.PageSize < p.Count
}

func (p ComicPage) HasPrevious() bool {
	return p.Page > 1
}
