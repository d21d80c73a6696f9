package listing

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"invoice-console/internal/invoice"
)

func makeInvoices(n int) []invoice.Invoice {
	out := make([]invoice.Invoice, n)
	for i := range out {
		out[i] = invoice.Invoice{
			ID:              fmt.Sprintf("id-%d", i),
			InvoiceNo:       fmt.Sprintf("INV-%03d", i),
			CustomerDetails: invoice.CustomerDetails{Name: fmt.Sprintf("Customer %d", i)},
			Gst:             i%2 == 0,
			Po:              i%3 == 0,
			Quotation:       i%5 == 0,
		}
	}
	return out
}

func ids(items []invoice.Invoice) []string {
	out := make([]string, len(items))
	for i, inv := range items {
		out[i] = inv.ID
	}
	return out
}

func equalIDs(a, b []invoice.Invoice) bool {
	x, y := ids(a), ids(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func TestCategoryMatches(t *testing.T) {
	both := invoice.Invoice{Gst: true, Po: true}
	plain := invoice.Invoice{}

	tests := []struct {
		category Category
		inv      invoice.Invoice
		want     bool
	}{
		{CategoryAll, plain, true},
		{CategoryAll, both, true},
		{CategoryRegular, plain, true},
		{CategoryRegular, both, false},
		{CategoryGST, both, true},
		{CategoryPO, both, true},
		{CategoryQuotation, both, false},
		{CategoryQuotation, invoice.Invoice{Quotation: true}, true},
	}

	for _, tt := range tests {
		if got := tt.category.Matches(&tt.inv); got != tt.want {
			t.Errorf("%s.Matches(%+v) = %v, want %v", tt.category, tt.inv, got, tt.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(""); err != nil || c != CategoryAll {
		t.Errorf("empty category = %q, %v", c, err)
	}
	if c, err := ParseCategory("GST"); err != nil || c != CategoryGST {
		t.Errorf("GST = %q, %v", c, err)
	}
	if _, err := ParseCategory("void"); err == nil {
		t.Errorf("expected error for unknown category")
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	all := []invoice.Invoice{
		{ID: "1", InvoiceNo: "AQ-2024-001", CustomerDetails: invoice.CustomerDetails{Name: "Ravi Kumar"}},
		{ID: "2", InvoiceNo: "AQ-2024-002", CustomerDetails: invoice.CustomerDetails{Name: "Lakshmi Traders"}},
		{ID: "3", InvoiceNo: "PO-77", CustomerDetails: invoice.CustomerDetails{Name: "aq supplies"}},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"aq", []string{"1", "2", "3"}},
		{"RAVI", []string{"1"}},
		{"traders", []string{"2"}},
		{"-002", []string{"2"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		got := ids(Filter(all, CategoryAll, tt.term))
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("search %q = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestApplyComposesFilterSearchSlice(t *testing.T) {
	all := makeInvoices(37)
	for _, c := range Categories {
		for _, search := range []string{"", "1", "customer 2", "zzz"} {
			for _, perPage := range []int{1, 3, 10} {
				for page := 1; page <= 15; page++ {
					got := Apply(all, Query{Category: c, Search: search, Page: page, PerPage: perPage})

					var filtered []invoice.Invoice
					for _, inv := range all {
						inv := inv
						if c.Matches(&inv) {
							filtered = append(filtered, inv)
						}
					}
					var searched []invoice.Invoice
					for _, inv := range filtered {
						inv := inv
						if MatchesSearch(&inv, search) {
							searched = append(searched, inv)
						}
					}
					start, end := (page-1)*perPage, page*perPage
					var want []invoice.Invoice
					if start < len(searched) {
						if end > len(searched) {
							end = len(searched)
						}
						want = searched[start:end]
					}

					if !equalIDs(got.Items, want) {
						t.Fatalf("c=%s s=%q n=%d p=%d: got %v want %v", c, search, perPage, page, ids(got.Items), ids(want))
					}
					if got.Pagination.TotalItems != len(searched) {
						t.Fatalf("TotalItems = %d, want %d", got.Pagination.TotalItems, len(searched))
					}
				}
			}
		}
	}
}

func TestPaginateClamps(t *testing.T) {
	all := makeInvoices(5)

	tests := []struct {
		name          string
		page, perPage int
		want          int
	}{
		{"first page", 1, 2, 2},
		{"last partial page", 3, 2, 1},
		{"past the end", 9, 2, 0},
		{"zero page", 0, 2, 0},
		{"negative page", -3, 2, 0},
		{"zero page size", 1, 0, 0},
		{"page size larger than collection", 1, 50, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(all, tt.page, tt.perPage)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, perPage, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{37, 5, 8},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.perPage); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestRegularPartitionCompleteness(t *testing.T) {
	all := append(makeInvoices(40), invoice.SampleInvoices()...)

	regular := len(Filter(all, CategoryRegular, ""))
	flagged := 0
	for _, inv := range all {
		if inv.Gst || inv.Po || inv.Quotation {
			flagged++
		}
	}
	if regular+flagged != len(all) {
		t.Errorf("regular(%d) + flagged(%d) != total(%d)", regular, flagged, len(all))
	}

	counts := TabCounts(all)
	if counts[CategoryAll] != len(all) || counts[CategoryRegular] != regular {
		t.Errorf("TabCounts = %v", counts)
	}
	if counts[CategoryGST]+counts[CategoryPO]+counts[CategoryQuotation] < flagged {
		t.Errorf("flagged tabs should cover every flagged invoice")
	}
}

func TestViewStatePageSizeResetsPage(t *testing.T) {
	for _, reset := range []bool{true, false} {
		v := NewViewState(5, reset)
		v.SetPage(4)
		v.SetItemsPerPage(20)
		if v.CurrentPage() != 1 {
			t.Errorf("reset=%v: page = %d after page size change, want 1", reset, v.CurrentPage())
		}
	}
}

func TestViewStateFilterReset(t *testing.T) {
	tests := []struct {
		name     string
		reset    bool
		change   func(v *ViewState)
		wantPage int
	}{
		{"category resets when enabled", true, func(v *ViewState) { v.SetCategory(CategoryGST) }, 1},
		{"search resets when enabled", true, func(v *ViewState) { v.SetSearch("ravi") }, 1},
		{"category keeps page when disabled", false, func(v *ViewState) { v.SetCategory(CategoryGST) }, 3},
		{"search keeps page when disabled", false, func(v *ViewState) { v.SetSearch("ravi") }, 3},
		{"same category is not a change", true, func(v *ViewState) { v.SetCategory(CategoryAll) }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewState(5, tt.reset)
			v.SetPage(3)
			tt.change(v)
			if v.CurrentPage() != tt.wantPage {
				t.Errorf("page = %d, want %d", v.CurrentPage(), tt.wantPage)
			}
		})
	}
}

func TestViewStateNavigation(t *testing.T) {
	v := NewViewState(0, true)
	if v.ItemsPerPage() != DefaultItemsPerPage {
		t.Fatalf("default page size = %d", v.ItemsPerPage())
	}
	v.PrevPage()
	if v.CurrentPage() != 1 {
		t.Errorf("PrevPage below 1 moved to %d", v.CurrentPage())
	}
	v.NextPage(2)
	v.NextPage(2)
	if v.CurrentPage() != 2 {
		t.Errorf("NextPage past total = %d, want 2", v.CurrentPage())
	}
	v.SetPage(0)
	if v.CurrentPage() != 2 {
		t.Errorf("SetPage(0) should be ignored")
	}

	page := v.Apply(makeInvoices(12))
	if len(page.Items) != 2 || page.Pagination.TotalPages != 2 || page.Pagination.HasNext {
		t.Errorf("unexpected page: %+v", page.Pagination)
	}
}

func TestRows(t *testing.T) {
	inv := invoice.Invoice{
		ID:              "x",
		InvoiceNo:       "AQ-9",
		Date:            "2024-01-22",
		CustomerDetails: invoice.CustomerDetails{Name: "Lakshmi"},
		Products: []invoice.LineItem{
			{ProductName: "Softener", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(25000)},
			{ProductName: "Kit", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(2000)},
		},
	}

	rows := Page{Items: []invoice.Invoice{inv}}.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.TotalDisplay != "₹27,000.00" || !r.Total.Equal(decimal.NewFromInt(27000)) {
		t.Errorf("total = %s / %q", r.Total, r.TotalDisplay)
	}
	if r.Date != "22/01/2024" || r.CustomerName != "Lakshmi" {
		t.Errorf("row = %+v", r)
	}
	if len(r.Actions) != 3 {
		t.Errorf("actions = %v", r.Actions)
	}
}
