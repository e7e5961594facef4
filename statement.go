package minibank

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const noMovements = "No movements were recorded."

type StatementFormat int

const (
	FormatText StatementFormat = iota
	FormatPDF
)

// FormatStatement renders history one entry per line followed by the balance. A non-empty history
// is separated from the balance by a blank line.
func FormatStatement(balance decimal.Decimal, history []Entry) string {
	var b strings.Builder
	if len(history) == 0 {
		b.WriteString(noMovements)
	}
	for _, e := range history {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nBalance: %s\n", balance.StringFixed(2))
	return b.String()
}

// WriteStatementPDF renders the same statement as FormatStatement as a single A4 document,
// adding the entry references and commit times.
func WriteStatementPDF(w io.Writer, acct Account) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Statement %s/%d", acct.Branch, acct.Number), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Account statement", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Branch: %s  Account: %d", acct.Branch, acct.Number), "", 1, "L", false, 0, "")
	if acct.Owner != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Holder: %s  ID: %s", acct.Owner.Name, acct.Owner.Identifier), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(acct.History) == 0 {
		pdf.CellFormat(0, 6, noMovements, "", 1, "L", false, 0, "")
	} else {
		widths := []float64{50, 45, 40, 45}
		pdf.SetFont("Helvetica", "B", 10)
		for i, h := range []string{"Reference", "Date", "Operation", "Amount"} {
			pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, e := range acct.History {
			at := ""
			if !e.At.IsZero() {
				at = e.At.Format("2006-01-02 15:04:05")
			}
			pdf.CellFormat(widths[0], 6, e.Ref.String(), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, at, "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, string(e.Kind), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 6, e.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Balance: %s", acct.Balance.StringFixed(2)), "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}
