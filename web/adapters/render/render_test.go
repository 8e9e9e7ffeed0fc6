package render

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

func renderPage(t *testing.T, page core.CategoryPage) *goquery.Document {
	t.Helper()
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.CategoryPage(&buf, page))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func testComics() []core.Comic {
	return []core.Comic{
		{ID: 1, Slug: "one-piece", Title: "One Piece", Thumbnail: "https://cdn/op.jpg",
			Categories: []core.Category{{ID: 1, Name: "Action"}, {ID: 2, Name: "Adventure"}, {ID: 3, Name: "Comedy"}}},
		{ID: 2, Slug: "monster", Title: "Monster <3", Categories: []core.Category{{ID: 4, Name: "Sci Fi"}}},
	}
}

func TestCategoryPage_Loading(t *testing.T) {
	page := core.CategoryPage{
		ActiveCategory: "All",
		Nav:            core.BuildFilterNav(nil, "All"),
		List: core.BuildListView(core.ListInput{
			Loading:    true,
			Items:      testComics(),
			Pagination: core.PaginationState{CurrentPage: 1, PageSize: 12, TotalCount: 3},
		}),
	}
	doc := renderPage(t, page)
	require.Equal(t, 12, doc.Find("article.placeholder").Length())
	require.Zero(t, doc.Find("article.card").Length())
	require.Equal(t, 1, doc.Find(".pagination-bar").Length())
}

func TestCategoryPage_Items(t *testing.T) {
	nav := core.BuildFilterNav([]core.Category{{ID: 1, Name: "Action"}, {ID: 4, Name: "Sci Fi"}}, "action")
	page := core.CategoryPage{
		ActiveCategory: "action",
		Nav:            nav,
		List: core.BuildListView(core.ListInput{
			Items:      testComics(),
			Pagination: core.PaginationState{CurrentPage: 2, PageSize: 12, TotalCount: 25},
		}),
		Session: &core.Session{User: "reader"},
	}
	doc := renderPage(t, page)

	require.Equal(t, 2, doc.Find("article.card").Length())
	first := doc.Find("article.card").First()
	href, _ := first.Find("a.card-link").Attr("href")
	require.Equal(t, "/comics/one-piece", href)
	require.Equal(t, 2, first.Find("a.card-category").Length())
	require.Equal(t, "Monster <3", doc.Find("article.card a.card-title").Last().Text())

	active := doc.Find(".tab-strip a.tab-active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "Action", active.Text())
	require.Equal(t, 3, doc.Find("#tabs option").Length())
	sciFi, _ := doc.Find(".tab-strip a").Last().Attr("href")
	require.Equal(t, "/categories/Sci%20Fi", sciFi)

	require.Equal(t, "2", strings.TrimSpace(doc.Find(".pagination-bar .active").Text()))
	prev, _ := doc.Find("a.page-prev").Attr("href")
	require.Equal(t, "?page=1", prev)
	require.Contains(t, doc.Find(".viewer").Text(), "reader")
}

func TestCategoryPage_EmptyKeepsPagination(t *testing.T) {
	page := core.CategoryPage{
		ActiveCategory: "Horror",
		Nav:            core.BuildFilterNav(nil, "Horror"),
		List: core.BuildListView(core.ListInput{
			Pagination: core.PaginationState{CurrentPage: 1, PageSize: 12, TotalCount: 25},
		}),
		Err: errors.New("boom"),
	}
	doc := renderPage(t, page)

	require.Equal(t, "No results found", doc.Find(".banner h2").Text())
	require.Zero(t, doc.Find("article.placeholder").Length())
	require.Equal(t, 3, doc.Find(".pagination-bar .page-item").Length())
	require.Equal(t, 1, doc.Find(".fetch-error").Length())
}

func TestNotFound(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.NotFound(&buf))
	require.Contains(t, buf.String(), "Page not found")
}

func TestLinkWrapper(t *testing.T) {
	inner := template.HTML("<b>x</b>")
	require.Equal(t, inner, LinkWrapper("", "c").Wrap(inner))
	require.Equal(t, inner, Identity().Wrap(inner))
	require.Equal(t, template.HTML(`<a href="/comics/a&amp;b" class="c"><b>x</b></a>`), LinkWrapper("/comics/a&b", "c").Wrap(inner))
}

func TestRenderImage(t *testing.T) {
	out := RenderImage(Image{Src: "/a.png", Alt: `"quoted"`, Width: 10, Height: 5}, nil)
	require.Equal(t,
		template.HTML(`<img src="/a.png" alt="&#34;quoted&#34;" width="10" height="5" class="card-image" loading="lazy">`),
		out)
}
