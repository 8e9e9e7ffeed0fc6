package core

type ListState int

const (
	ListLoading ListState = iota
	ListItems
	ListEmpty
)

func (s ListState) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListItems:
		return "items"
	case ListEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

const (
	NoResultsTitle       = "No results found"
	cardCategoriesPerRow = 2
)

type CategoryLink struct {
	Name string
	Path string
}

type Card struct {
	Comic      Comic
	DetailPath string
	Categories []CategoryLink
}

type ListInput struct {
	Loading    bool
	Items      []Comic
	Limit      int
	Pagination PaginationState
}

type ListView struct {
	State        ListState
	Placeholders int
	Cards        []Card
	Notice       string
	Pagination   PaginationState
	PageLinks    []PageLink
	// Loading disables the controls without hiding them.
	Loading bool
}

// BuildListView picks exactly one of three states, in order: loading shows a
// fixed placeholder grid, a non-empty list shows cards, anything else shows the
// empty notice. Pagination controls stay available in every state.
func BuildListView(in ListInput) ListView {
	v := ListView{
		Pagination: in.Pagination,
		PageLinks:  in.Pagination.PageRange(1),
		Loading:    in.Loading,
	}
	switch {
	case in.Loading:
		v.State = ListLoading
		v.Placeholders = PlaceholderCount
	case len(in.Items) > 0:
		v.State = ListItems
		items := in.Items
		if in.Limit > 0 && in.Limit < len(items) {
			items = items[:in.Limit]
		}
		v.Cards = make([]Card, 0, len(items))
		for _, c := range items {
			v.Cards = append(v.Cards, NewCard(c))
		}
	default:
		v.State = ListEmpty
		v.Notice = NoResultsTitle
	}
	return v
}

func NewCard(c Comic) Card {
	card := Card{Comic: c, DetailPath: ComicDetailPath(c.Slug)}
	for i, cat := range c.Categories {
		if i == cardCategoriesPerRow {
			break
		}
		card.Categories = append(card.Categories, CategoryLink{Name: cat.Name, Path: CategoryPath(cat.Name)})
	}
	return card
}
