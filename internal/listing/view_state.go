package listing

import "invoice-console/internal/invoice"

const DefaultItemsPerPage = 10

// ViewState is the operator-controlled part of the list: selected tab, search
// text, current page and page size.
type ViewState struct {
	category     Category
	search       string
	currentPage  int
	itemsPerPage int

	// ResetPageOnFilterChange jumps back to page 1 when the tab or the search
	// text changes. Page size changes always reset.
	ResetPageOnFilterChange bool
}

func NewViewState(itemsPerPage int, resetOnFilter bool) *ViewState {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &ViewState{
		category:                CategoryAll,
		currentPage:             1,
		itemsPerPage:            itemsPerPage,
		ResetPageOnFilterChange: resetOnFilter,
	}
}

func (v *ViewState) Category() Category { return v.category }
func (v *ViewState) Search() string     { return v.search }
func (v *ViewState) CurrentPage() int   { return v.currentPage }
func (v *ViewState) ItemsPerPage() int  { return v.itemsPerPage }

func (v *ViewState) SetCategory(c Category) {
	if c == v.category {
		return
	}
	v.category = c
	if v.ResetPageOnFilterChange {
		v.currentPage = 1
	}
}

func (v *ViewState) SetSearch(s string) {
	if s == v.search {
		return
	}
	v.search = s
	if v.ResetPageOnFilterChange {
		v.currentPage = 1
	}
}

// SetItemsPerPage changes the page size and always returns to page 1.
func (v *ViewState) SetItemsPerPage(n int) {
	if n <= 0 {
		return
	}
	v.itemsPerPage = n
	v.currentPage = 1
}

// SetPage moves to page p. Pages below 1 are ignored; pages past the end are
// kept and simply render empty.
func (v *ViewState) SetPage(p int) {
	if p < 1 {
		return
	}
	v.currentPage = p
}

func (v *ViewState) NextPage(totalPages int) {
	if v.currentPage < totalPages {
		v.currentPage++
	}
}

func (v *ViewState) PrevPage() {
	if v.currentPage > 1 {
		v.currentPage--
	}
}

func (v *ViewState) Query() Query {
	return Query{
		Category: v.category,
		Search:   v.search,
		Page:     v.currentPage,
		PerPage:  v.itemsPerPage,
	}
}

// Apply derives the visible page from the collection.
func (v *ViewState) Apply(all []invoice.Invoice) Page {
	return Apply(all, v.Query())
}
