// Package pdf renders invoices for the dashboard's download button.
package pdf

import (
	"bytes"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"paygate/internal/models"
	"paygate/internal/money"
)

// RenderInvoice produces an A4 PDF for the invoice and its items.
func RenderInvoice(merchant models.Merchant, customer models.Customer, invoice models.Invoice, items []models.InvoiceItem) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Arial", "B", 18)
	doc.Cell(120, 10, "Invoice "+invoice.InvoiceNumber)
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(60, 10, "Status: "+invoice.Status, "", 1, "R", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Arial", "B", 11)
	doc.Cell(95, 6, merchant.BusinessName)
	doc.Cell(95, 6, "Bill To")
	doc.Ln(6)
	doc.SetFont("Arial", "", 10)
	doc.Cell(95, 5, merchant.Email)
	doc.Cell(95, 5, customer.Name)
	doc.Ln(5)
	doc.Cell(95, 5, "")
	doc.Cell(95, 5, customer.Email)
	doc.Ln(8)

	doc.Cell(95, 5, "Issued: "+invoice.IssueDate.Format("02 Jan 2006"))
	doc.Cell(95, 5, "Due: "+invoice.DueDate.Format("02 Jan 2006"))
	doc.Ln(10)

	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(70, 7, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 7, "Qty", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, "Unit Price", "1", 0, "R", true, 0, "")
	doc.CellFormat(30, 7, "Tax", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, "Total", "1", 1, "R", true, 0, "")

	doc.SetFont("Arial", "", 10)
	for _, item := range items {
		doc.CellFormat(70, 7, item.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, strconv.FormatInt(item.Quantity, 10), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, money.FormatMinor(item.UnitPriceMinor, invoice.Currency), "1", 0, "R", false, 0, "")
		doc.CellFormat(30, 7, money.FormatMinor(item.TaxMinor, invoice.Currency), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, money.FormatMinor(item.TotalMinor, invoice.Currency), "1", 1, "R", false, 0, "")
	}

	doc.Ln(4)
	writeTotal(doc, "Subtotal", invoice.SubtotalMinor, invoice.Currency, false)
	writeTotal(doc, "Tax", invoice.TaxMinor, invoice.Currency, false)
	if invoice.DiscountMinor > 0 {
		writeTotal(doc, "Discount", -invoice.DiscountMinor, invoice.Currency, false)
	}
	writeTotal(doc, "Total ("+invoice.Currency+")", invoice.TotalMinor, invoice.Currency, true)

	if invoice.Notes != "" {
		doc.Ln(8)
		doc.SetFont("Arial", "I", 9)
		doc.MultiCell(190, 5, invoice.Notes, "", "L", false)
	}

	doc.SetFont("Arial", "", 8)
	doc.SetY(-20)
	doc.CellFormat(190, 5, "Generated "+time.Now().UTC().Format("02 Jan 2006 15:04 MST"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTotal(doc *gofpdf.Fpdf, label string, amountMinor int64, currency string, bold bool) {
	if bold {
		doc.SetFont("Arial", "B", 10)
	} else {
		doc.SetFont("Arial", "", 10)
	}
	doc.CellFormat(155, 6, label, "", 0, "R", false, 0, "")
	doc.CellFormat(35, 6, money.FormatMinor(amountMinor, currency), "", 1, "R", false, 0, "")
}
