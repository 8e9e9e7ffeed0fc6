package core

import "net/url"

func ComicDetailPath(slug string) string {
	return "/comics/" + url.PathEscape(slug)
}

func CategoryPath(name string) string {
	return "/categories/" + url.PathEscape(name)
}
