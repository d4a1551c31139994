package formatter

import (
	"fmt"

	"github.com/futig/fxchat-backend/internal/entity"
)

const (
	reportTitle   = "現在の為替レート"
	timeLayout    = "2006-01-02 15:04:05"
	notApplicable = "-"
)

// Formatter renders a rate report as a downloadable document
type Formatter interface {
	Format(report *entity.RateReport) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	pdfFontPath string
}

// NewFactory creates a factory. pdfFontPath points at a UTF-8 TTF font used
// for PDF output; when empty the bundled lookup locations are tried.
func NewFactory(pdfFontPath string) *Factory {
	return &Factory{pdfFontPath: pdfFontPath}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.pdfFontPath), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// FileName builds the attachment name for a report
func FileName(f Formatter, report *entity.RateReport) string {
	return "rates_" + report.FetchedAt.Format("20060102_150405") + f.FileExtension()
}

func spreadText(q entity.RateQuote) string {
	if q.Spread == nil {
		return notApplicable
	}
	return fmt.Sprintf("%.4f", *q.Spread)
}
