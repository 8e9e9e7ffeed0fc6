package core

import "context"

type Pinger interface {
	Ping(context.Context) error
}

// Catalog is the remote comic/category data source.
type Catalog interface {
	Comics(ctx context.Context, params PageParams) (Page[RawComic], error)
	Categories(ctx context.Context) ([]Category, error)
}
