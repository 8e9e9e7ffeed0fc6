package core

import "golang.org/x/text/cases"

// SameName compares category names ignoring case.
func SameName(a, b string) bool {
	if a == b {
		return true
	}
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// IsAllCategory reports whether category disables filtering.
// An empty category is treated the same way as "All".
func IsAllCategory(category string) bool {
	return category == "" || SameName(category, AllCategory)
}

// FilterByCategory keeps the comics that carry at least one category named
// active. Order is preserved. A nil input yields nil.
func FilterByCategory(comics []Comic, active string) []Comic {
	if IsAllCategory(active) || comics == nil {
		return comics
	}
	fold := cases.Fold()
	want := fold.String(active)

	out := make([]Comic, 0, len(comics))
	for _, c := range comics {
		for _, cat := range c.Categories {
			if fold.String(cat.Name) == want {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
