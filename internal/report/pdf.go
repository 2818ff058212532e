package report

import (
	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the tables to a landscape A4 PDF at outPath. Columns
// share the page width evenly.
func WritePDF(outPath, title string, tables ...Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right

	for _, t := range tables {
		if len(t.Header) == 0 {
			continue
		}
		colW := usable / float64(len(t.Header))
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr(t.Title), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Header {
			pdf.CellFormat(colW, 7, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, r := range t.Rows {
			for i := range t.Header {
				cell := ""
				if i < len(r) {
					cell = r[i]
				}
				pdf.CellFormat(colW, 6, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		if t.Footer != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 6, tr(t.Footer), "", 1, "L", false, 0, "")
		}
	}
	return pdf.OutputFileAndClose(outPath)
}
