package formatter

import (
	"bytes"
	"os"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// internal gofpdf name of the UTF-8 font
	pdfFontName = "ReportFont"

	// Runtime layout copies fonts next to the binary; the source layout is for `go run` from the repo root.
	pdfFontRuntimePath = "ttf/NotoSansJP-Regular.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/NotoSansJP-Regular.ttf"
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

func (pf *PDFFormatter) resolveFontPath() string {
	for _, p := range []string{pf.fontPath, pdfFontRuntimePath, pdfFontSourcePath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Format draws the report as a table. Without a Japanese-capable font the
// labels and headings fall back to ASCII.
func (pf *PDFFormatter) Format(report *entity.RateReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Helvetica"
	unicode := false
	if fontPath := pf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		unicode = true
	}

	title := "Exchange rates"
	headers := []string{"Pair", "Symbol", "Bid", "Ask", "Spread"}
	fetched := "Fetched at: "
	if unicode {
		title = reportTitle
		headers = []string{"通貨ペア", "シンボル", "買値", "売値", "スプレッド"}
		fetched = "取得時刻: "
	}
	widths := []float64{40, 35, 35, 35, 35}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)

	pdf.SetFont(fontName, "B", 11)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontName, "", 11)
	for _, q := range report.Quotes {
		label := q.Symbol
		if unicode {
			label = q.Label
		}
		cells := []string{label, q.Symbol, q.Bid, q.Ask, spreadText(q)}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 8, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.Cell(0, 8, fetched+report.FetchedAt.Format(timeLayout))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
