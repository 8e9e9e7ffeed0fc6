package render

import (
	"fmt"
	"html/template"
	"strings"
)

// Wrapper decorates already rendered markup.
type Wrapper interface {
	Wrap(inner template.HTML) template.HTML
}

type identity struct{}

func (identity) Wrap(inner template.HTML) template.HTML { return inner }

func Identity() Wrapper { return identity{} }

type linkWrapper struct {
	href  string
	class string
}

// LinkWrapper wraps markup in an anchor. Without an href it is Identity.
func LinkWrapper(href, class string) Wrapper {
	if href == "" {
		return identity{}
	}
	return linkWrapper{href: href, class: class}
}

func (l linkWrapper) Wrap(inner template.HTML) template.HTML {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(template.HTMLEscapeString(l.href))
	b.WriteString(`"`)
	if l.class != "" {
		b.WriteString(` class="`)
		b.WriteString(template.HTMLEscapeString(l.class))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(string(inner))
	b.WriteString("</a>")
	return template.HTML(b.String())
}

type Image struct {
	Src    string
	Alt    string
	Width  int
	Height int
	Class  string
	Eager  bool
}

// RenderImage renders an img tag and hands it to w.
func RenderImage(img Image, w Wrapper) template.HTML {
	if w == nil {
		w = identity{}
	}
	loading := "lazy"
	if img.Eager {
		loading = "eager"
	}
	tag := fmt.Sprintf(`<img src="%s" alt="%s" width="%d" height="%d" class="%s" loading="%s">`,
		template.HTMLEscapeString(img.Src),
		template.HTMLEscapeString(img.Alt),
		img.Width, img.Height,
		template.HTMLEscapeString(strings.TrimSpace("card-image "+img.Class)),
		loading,
	)
	return w.Wrap(template.HTML(tag))
}
