// Package listing derives the visible invoice page from the full collection:
// category tab, then text search, then the page window.
package listing

import (
	"fmt"
	"strings"

	"invoice-console/internal/invoice"
)

type Category string

const (
	CategoryAll       Category = "all"
	CategoryRegular   Category = "regular"
	CategoryGST       Category = "gst"
	CategoryPO        Category = "po"
	CategoryQuotation Category = "quotation"
)

// Categories lists the tabs in display order.
var Categories = []Category{CategoryAll, CategoryRegular, CategoryGST, CategoryPO, CategoryQuotation}

func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	c := Category(strings.ToLower(s))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) Label() string {
	switch c {
	case CategoryRegular:
		return "Regular"
	case CategoryGST:
		return "GST"
	case CategoryPO:
		return "PO"
	case CategoryQuotation:
		return "Quotation"
	default:
		return "All"
	}
}

// Matches evaluates the tab predicate. Tabs are independent, so an invoice
// flagged both gst and po appears under both.
func (c Category) Matches(inv *invoice.Invoice) bool {
	switch c {
	case CategoryRegular:
		return inv.IsRegular()
	case CategoryGST:
		return inv.Gst
	case CategoryPO:
		return inv.Po
	case CategoryQuotation:
		return inv.Quotation
	default:
		return true
	}
}

// MatchesSearch is a case-insensitive substring test on invoice number or
// customer name. An empty term matches everything.
func MatchesSearch(inv *invoice.Invoice, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(inv.InvoiceNo), term) ||
		strings.Contains(strings.ToLower(inv.CustomerDetails.Name), term)
}

// Filter applies the category then the search predicate, keeping order.
func Filter(all []invoice.Invoice, category Category, search string) []invoice.Invoice {
	out := make([]invoice.Invoice, 0, len(all))
	for i := range all {
		if category.Matches(&all[i]) && MatchesSearch(&all[i], search) {
			out = append(out, all[i])
		}
	}
	return out
}

// Paginate returns the [start, start+perPage) window clamped to bounds.
// Out-of-range pages yield an empty slice.
func Paginate(items []invoice.Invoice, page, perPage int) []invoice.Invoice {
	if perPage <= 0 || page < 1 {
		return []invoice.Invoice{}
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []invoice.Invoice{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(total / perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

type Query struct {
	Category Category
	Search   string
	Page     int
	PerPage  int
}

type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	ItemsPerPage int  `json:"items_per_page"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}

type Page struct {
	Category   Category
	Search     string
	Items      []invoice.Invoice
	Pagination Pagination
}

// Apply runs the full pipeline for q over the collection.
func Apply(all []invoice.Invoice, q Query) Page {
	filtered := Filter(all, q.Category, q.Search)
	totalPages := TotalPages(len(filtered), q.PerPage)
	return Page{
		Category: q.Category,
		Search:   q.Search,
		Items:    Paginate(filtered, q.Page, q.PerPage),
		Pagination: Pagination{
			CurrentPage:  q.Page,
			ItemsPerPage: q.PerPage,
			TotalItems:   len(filtered),
			TotalPages:   totalPages,
			HasNext:      q.Page < totalPages,
			HasPrev:      q.Page > 1,
		},
	}
}

// TabCounts returns how many invoices each tab shows before searching.
// Counts may overlap across the flagged tabs.
func TabCounts(all []invoice.Invoice) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for i := range all {
		for _, c := range Categories {
			if c.Matches(&all[i]) {
				counts[c]++
			}
		}
	}
	return counts
}
