// Package document renders invoices into downloadable files.
package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"invoice-console/internal/invoice"
)

// The core PDF fonts are cp1252 and have no rupee glyph.
func pdfAmount(inv invoice.LineItem) string {
	return pdfINR(invoice.FormatINR(inv.Amount()))
}

func pdfINR(s string) string {
	return strings.Replace(s, "₹", "Rs. ", 1)
}

// WritePDF renders a printable copy of inv for the send action.
func WritePDF(w io.Writer, inv invoice.Invoice) error {
	pdf := renderPDF(inv)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func renderPDF(inv invoice.Invoice) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNo, true)
	pdf.AddPage()
	// Core fonts take cp1252 bytes, so UTF-8 text goes through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(title(inv)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		if value == "" {
			return
		}
		pdf.CellFormat(40, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Invoice No:", inv.InvoiceNo)
	line("Date:", invoice.DisplayDate(inv.Date))
	line("Customer:", inv.CustomerDetails.Name)
	if inv.CustomerDetails.Phone != 0 {
		line("Phone:", strconv.FormatInt(inv.CustomerDetails.Phone, 10))
	}
	line("Email:", inv.CustomerDetails.Email)
	line("Address:", inv.CustomerDetails.Address)
	if inv.Gst {
		line("GST Name:", inv.GstDetails.GstName)
		line("GSTIN:", inv.GstDetails.GstNo)
		line("GST Address:", inv.GstDetails.GstAddress)
	}
	pdf.Ln(4)

	widths := []float64{80, 25, 40, 45}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 236, 245)
	for i, h := range []string{"Product", "Qty", "Price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, p := range inv.Products {
		pdf.CellFormat(widths[0], 7, tr(p.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(p.ProductQuantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(pdfINR(invoice.FormatINR(p.ProductPrice))), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(pdfAmount(p)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 9, tr("Total"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 9, tr(pdfINR(invoice.FormatINR(inv.Total()))), "1", 1, "R", false, 0, "")

	if inv.Transport.DeliveredBy != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, tr(fmt.Sprintf("Delivered by %s on %s", inv.Transport.DeliveredBy, invoice.DisplayDate(inv.Transport.DeliveryDate))))
	}
	return pdf
}

func title(inv invoice.Invoice) string {
	switch {
	case inv.Quotation:
		return "Quotation"
	case inv.Po:
		return "Purchase Order Invoice"
	case inv.Gst:
		return "Tax Invoice"
	default:
		return "Invoice"
	}
}

// PDFFilename is the attachment name used for inv.
func PDFFilename(inv invoice.Invoice) string {
	name := inv.InvoiceNo
	if name == "" {
		name = inv.ID
	}
	return "invoice_" + sanitize(name) + ".pdf"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
