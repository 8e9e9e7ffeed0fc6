package core

type NavEntry struct {
	ID     int
	Name   string
	Path   string
	Active bool
}

type FilterNav struct {
	Entries []NavEntry
	Active  string
}

// BuildFilterNav lists the categories behind a leading "All" entry. Picking an
// entry navigates to its Path; the nav never holds the selection itself.
func BuildFilterNav(categories []Category, active string) FilterNav {
	nav := FilterNav{
		Entries: make([]NavEntry, 0, len(categories)+1),
		Active:  active,
	}
	all := append([]Category{{Name: AllCategory}}, categories...)
	for _, c := range all {
		nav.Entries = append(nav.Entries, NavEntry{
			ID:     c.ID,
			Name:   c.Name,
			Path:   CategoryPath(c.Name),
			Active: SameName(c.Name, active) || (c.Name == AllCategory && IsAllCategory(active)),
		})
	}
	return nav
}

// Step returns the entry delta positions away from the active one, wrapping
// around. The first entry is returned when nothing is active.
func (n FilterNav) Step(delta int) NavEntry {
	if len(n.Entries) == 0 {
		return NavEntry{Name: AllCategory, Path: CategoryPath(AllCategory)}
	}
	cur := 0
	for i, e := range n.Entries {
		if e.Active {
			cur = i
			break
		}
	}
	size := len(n.Entries)
	return n.Entries[((cur+delta)%size+size)%size]
}
