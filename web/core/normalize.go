package core

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Normalizer turns catalog records into display records: thumbnails become
// absolute against the media base and a missing slug is derived from the title.
type Normalizer struct {
	media *url.URL
}

func NewNormalizer(mediaURL string) (Normalizer, error) {
	if mediaURL == "" {
		return Normalizer{}, nil
	}
	u, err := url.Parse(mediaURL)
	if err != nil {
		return Normalizer{}, fmt.Errorf("parse media url: %w", err)
	}
	return Normalizer{media: u}, nil
}

func (n Normalizer) Comic(r RawComic) Comic {
	c := Comic{
		ID:         r.ID,
		Slug:       strings.TrimSpace(r.Slug),
		Title:      strings.TrimSpace(r.Title),
		Thumbnail:  n.thumbnail(r.Thumbnail),
		Categories: r.Categories,
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Title)
	}
	return c
}

func (n Normalizer) Comics(raw []RawComic) []Comic {
	if raw == nil {
		return nil
	}
	out := make([]Comic, 0, len(raw))
	for _, r := range raw {
		out = append(out, n.Comic(r))
	}
	return out
}

func (n Normalizer) thumbnail(src string) string {
	if src == "" || n.media == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil || ref.IsAbs() {
		return src
	}
	return n.media.ResolveReference(ref).String()
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
