package core

// PaginationState tracks the page a list shows. SetCurrentPage does not clamp:
// controls must only offer pages for which Valid reports true.
type PaginationState struct {
	CurrentPage int
	PageSize    int
	TotalCount  int
}

func NewPaginationState(pageSize, totalCount int) PaginationState {
	return PaginationState{CurrentPage: 1, PageSize: pageSize, TotalCount: totalCount}
}

func (p *PaginationState) SetCurrentPage(page int) {
	p.CurrentPage = page
}

func (p PaginationState) TotalPages() int {
	return TotalPages(p.TotalCount, p.PageSize)
}

// Valid reports whether page lies in [1, max(1, TotalPages)].
func (p PaginationState) Valid(page int) bool {
	return page >= 1 && page <= max(1, p.TotalPages())
}

func (p PaginationState) HasPrev() bool { return p.Valid(p.CurrentPage - 1) }
func (p PaginationState) HasNext() bool { return p.Valid(p.CurrentPage + 1) }

// TotalPages is ceil(count / pageSize); a non-positive page size yields 0.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// PageLink is one slot of the pagination control. Dots marks a gap.
type PageLink struct {
	Number int
	Active bool
	Dots   bool
}

// PageRange lays out the controls: the first and last page are always shown,
// siblings pages around the current one, and gaps collapse into dots.
func (p PaginationState) PageRange(siblings int) []PageLink {
	total := p.TotalPages()
	if total == 0 {
		return nil
	}
	if siblings < 0 {
		siblings = 0
	}

	// first + last + current + siblings on each side + two dots
	slots := siblings*2 + 5
	if total <= slots {
		return p.links(1, total)
	}

	left := max(p.CurrentPage-siblings, 1)
	right := min(p.CurrentPage+siblings, total)
	showLeftDots := left > 2
	showRightDots := right < total-1
	edge := 3 + 2*siblings

	var out []PageLink
	switch {
	case !showLeftDots && showRightDots:
		out = append(p.links(1, edge), PageLink{Dots: true})
		out = append(out, p.links(total, total)...)
	case showLeftDots && !showRightDots:
		out = append(p.links(1, 1), PageLink{Dots: true})
		out = append(out, p.links(total-edge+1, total)...)
	default:
		out = append(p.links(1, 1), PageLink{Dots: true})
		out = append(out, p.links(left, right)...)
		out = append(out, PageLink{Dots: true})
		out = append(out, p.links(total, total)...)
	}
	return out
}

func (p PaginationState) links(from, to int) []PageLink {
	out := make([]PageLink, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, PageLink{Number: n, Active: n == p.CurrentPage})
	}
	return out
}
