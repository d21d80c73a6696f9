package tui

import (
	"fmt"
	"strings"

	"invoice-console/internal/invoice"
	"invoice-console/internal/listing"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Aquakart Invoices"))
	b.WriteString("\n\n")

	if m.advisory != "" {
		b.WriteString(advisoryStyle.Render("! " + m.advisory))
		b.WriteString("\n\n")
	}

	if m.mode == viewEditor {
		b.WriteString(m.viewEditor())
	} else {
		b.WriteString(m.viewList())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + submitErrorText(m.err)))
		b.WriteString("\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) viewTabs() string {
	counts := listing.TabCounts(m.opts.Collection.Snapshot())
	tabs := make([]string, 0, len(listing.Categories))
	for _, c := range listing.Categories {
		label := fmt.Sprintf("%s (%d)", c.Label(), counts[c])
		if c == m.view.Category() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) viewList() string {
	var b strings.Builder

	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	switch {
	case m.mode == viewSearch:
		b.WriteString("Search: " + m.searchInput.View() + "\n\n")
	case m.view.Search() != "":
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Search: %q", m.view.Search())) + "\n\n")
	}

	if m.loading {
		b.WriteString("Loading invoices...\n")
		return b.String()
	}

	rows := m.page.Rows()
	if len(rows) == 0 {
		b.WriteString(subtitleStyle.Render("No invoices found."))
		b.WriteString("\n")
	} else {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %-14s %-24s %-12s %16s", "Invoice No", "Customer", "Date", "Total")))
		b.WriteString("\n")
		for i, row := range rows {
			line := fmt.Sprintf("%-14s %-24s %-12s %16s",
				truncate(row.InvoiceNo, 14),
				truncate(row.CustomerName, 24),
				row.Date,
				row.TotalDisplay,
			)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	p := m.page.Pagination
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Page %d of %d · %d invoices · %d per page",
		p.CurrentPage, max(p.TotalPages, 1), p.TotalItems, p.ItemsPerPage)))
	b.WriteString("\n")

	if m.mode == viewConfirmDelete {
		if inv, ok := m.selected(); ok {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Delete invoice %s? (y/n)", inv.InvoiceNo)))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: navigate • h/l: tabs • p/n: page • +/-: page size • /: search • r: reload"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a: new • e: edit • s: send pdf • d: delete • x: export xlsx • q: quit"))
	return b.String()
}

func (m *Model) viewEditor() string {
	var b strings.Builder
	form := m.editor.Form()

	heading := "New Invoice"
	if form.ID != "" {
		heading = "Edit Invoice " + form.InvoiceNo
	}
	b.WriteString(selectedStyle.Render(heading))
	b.WriteString("\n\n")

	for i := fieldInvoiceNo; i <= fieldDeliveryDate; i++ {
		if !m.fieldVisible(i) {
			continue
		}
		b.WriteString(m.viewField(i))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("[%s] GST  [%s] PO  [%s] Quotation  [%s] Online user  [%s] Aquakart invoice\n",
		check(form.Gst), check(form.Po), check(form.Quotation), check(form.AquakartOnlineUser), check(form.AquakartInvoice)))
	b.WriteString(fmt.Sprintf("Paid status: %s  Payment type: %s\n",
		enumLabel(string(form.PaidStatus), form.PaidStatus.Valid()),
		enumLabel(string(form.PaymentType), form.PaymentType.Valid())))

	var items strings.Builder
	items.WriteString("Products\n")
	if len(form.Products) == 0 {
		items.WriteString(subtitleStyle.Render("  no products yet"))
		items.WriteString("\n")
	}
	for i, p := range form.Products {
		line := fmt.Sprintf("%-24s x%-4d %14s %16s",
			truncate(p.ProductName, 24),
			p.ProductQuantity,
			invoice.FormatINR(p.ProductPrice),
			invoice.FormatINR(p.Amount()),
		)
		if i == m.itemCursor {
			items.WriteString(selectedStyle.Render("> " + line))
		} else {
			items.WriteString("  " + line)
		}
		items.WriteString("\n")
	}
	items.WriteString(fmt.Sprintf("Total: %s", invoice.FormatINR(form.Total())))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(items.String()))
	b.WriteString("\n\n")

	b.WriteString("Add product\n")
	for i := fieldProduct; i <= fieldSerial; i++ {
		b.WriteString(m.viewField(i))
	}

	if m.submitting {
		b.WriteString("\nSaving...\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • ctrl+a: add product • ctrl+x: remove product • ctrl+j/k: select product"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+g: gst • ctrl+o: po • ctrl+t: quotation • ctrl+u: online user • ctrl+n: aquakart invoice"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+p: paid status • ctrl+y: payment type • ctrl+s: save • esc: cancel"))
	return b.String()
}

func (m *Model) viewField(i int) string {
	label := fmt.Sprintf("%-14s", fieldLabels[i]+":")
	if i == m.focusIndex {
		label = selectedStyle.Render(label)
	}
	return label + " " + m.inputs[i].View() + "\n"
}

// enumLabel shows unset values as "-" and flags values the API rejects.
func enumLabel(v string, valid bool) string {
	switch {
	case !valid:
		return errorStyle.Render(v + " (invalid)")
	case v == "":
		return "-"
	default:
		return v
	}
}

func check(on bool) string {
	if on {
		return "x"
	}
	return " "
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
