package listing

import (
	"github.com/shopspring/decimal"

	"invoice-console/internal/invoice"
)

type Action string

const (
	ActionEdit   Action = "edit"
	ActionSend   Action = "send"
	ActionDelete Action = "delete"
)

// RowActions are offered on every persisted row.
var RowActions = []Action{ActionEdit, ActionSend, ActionDelete}

// Row is the rendered form of one invoice in the table.
type Row struct {
	ID           string          `json:"id"`
	InvoiceNo    string          `json:"invoice_no"`
	CustomerName string          `json:"customer_name"`
	Date         string          `json:"date"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	Actions      []Action        `json:"actions"`
}

func NewRow(inv *invoice.Invoice) Row {
	total := inv.Total()
	return Row{
		ID:           inv.ID,
		InvoiceNo:    inv.InvoiceNo,
		CustomerName: inv.CustomerDetails.Name,
		Date:         invoice.DisplayDate(inv.Date),
		Total:        total,
		TotalDisplay: invoice.FormatINR(total),
		Actions:      RowActions,
	}
}

func (p Page) Rows() []Row {
	rows := make([]Row, 0, len(p.Items))
	for i := range p.Items {
		rows = append(rows, NewRow(&p.Items[i]))
	}
	return rows
}
