package document

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"invoice-console/internal/invoice"
	"invoice-console/internal/listing"
)

const exportSheet = "Invoices"

var exportHeader = []any{"Invoice No", "Customer", "Date", "Type", "Paid Status", "Payment", "Items", "Total"}

type colWidth struct {
	min, max int
	width    float64
}

var exportWidths = []colWidth{
	{1, 1, 16},
	{2, 2, 28},
	{3, 6, 14},
	{8, 8, 16},
}

// setColWidths must run before the first SetRow on sw.
func setColWidths(sw *excelize.StreamWriter, widths []colWidth) error {
	for _, c := range widths {
		if err := sw.SetColWidth(c.min, c.max, c.width); err != nil {
			return fmt.Errorf("set width of columns %d-%d: %w", c.min, c.max, err)
		}
	}
	return nil
}

// WriteXLSX streams the given invoices as a single-sheet workbook.
func WriteXLSX(w io.Writer, invoices []invoice.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}
	if err := setColWidths(sw, exportWidths); err != nil {
		return err
	}

	if err := sw.SetRow("A1", exportHeader); err != nil {
		return err
	}

	for i := range invoices {
		inv := &invoices[i]
		row := []any{
			inv.InvoiceNo,
			inv.CustomerDetails.Name,
			invoice.DisplayDate(inv.Date),
			typeLabel(inv),
			string(inv.PaidStatus),
			string(inv.PaymentType),
			len(inv.Products),
			inv.Total().Round(2).InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func typeLabel(inv *invoice.Invoice) string {
	for _, c := range []listing.Category{listing.CategoryQuotation, listing.CategoryPO, listing.CategoryGST} {
		if c.Matches(inv) {
			return c.Label()
		}
	}
	return listing.CategoryRegular.Label()
}

// XLSXFilename is the attachment name for an export made at now.
func XLSXFilename(now time.Time) string {
	return "invoices_" + now.Format("2006-01-02") + ".xlsx"
}
