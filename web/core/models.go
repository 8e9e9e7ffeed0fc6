package core

// AllCategory is the sentinel category that disables filtering.
const AllCategory = "All"

// PlaceholderCount is how many skeleton cards a loading list shows.
const PlaceholderCount = 12

type Category struct {
	ID   int
	Name string
}

type RawComic struct {
	ID         int
	Slug       string
	Title      string
	Thumbnail  string
	Categories []Category
}

type Comic struct {
	ID         int
	Slug       string
	Title      string
	Thumbnail  string
	Categories []Category
}

// Page is one page of records plus the total record count across all pages.
type Page[T any] struct {
	Results []T
	Count   int
}

type FilterOptions struct {
	Category string
	Search   string
}

type PageParams struct {
	Page int
	FilterOptions
}

type PingStatus string

const (
	StatusPingOK          PingStatus = "ok"
	StatusPingUnavailable PingStatus = "unavailable"
)
