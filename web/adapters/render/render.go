package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	cardImageWidth  = 311
	cardImageHeight = 145
	eagerCards      = 4
)

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"cardImage": cardImage,
		"pageHref":  pageHref,
		"seq":       seq,
		"add":       func(a, b int) int { return a + b },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type categoryView struct {
	Title string
	Page  core.CategoryPage
	Error string
}

func (r *Renderer) CategoryPage(w io.Writer, page core.CategoryPage) error {
	view := categoryView{
		Title: page.ActiveCategory,
		Page:  page,
	}
	if page.Err != nil {
		view.Error = "Could not load this page, showing the first page instead."
	}
	return r.tmpl.ExecuteTemplate(w, "category.html", view)
}

func (r *Renderer) NotFound(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "notfound.html", categoryView{Title: "Not found"})
}

func cardImage(card core.Card, index int) template.HTML {
	return RenderImage(Image{
		Src:    card.Comic.Thumbnail,
		Alt:    card.Comic.Title,
		Width:  cardImageWidth,
		Height: cardImageHeight,
		Eager:  index < eagerCards,
	}, LinkWrapper(card.DetailPath, "card-link"))
}

func pageHref(page int) string {
	return "?page=" + strconv.Itoa(page)
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
