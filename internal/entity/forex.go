package entity

import "time"

// TickerQuote is one entry of the forex ticker response. Prices arrive as strings.
type TickerQuote struct {
	Symbol    string `json:"symbol"`
	Bid       string `json:"bid"`
	Ask       string `json:"ask"`
	Timestamp string `json:"timestamp,omitempty"`
	Status    string `json:"status,omitempty"`
}

type TickerResponse struct {
	Status       int           `json:"status"`
	Data         []TickerQuote `json:"data"`
	ResponseTime string        `json:"responsetime,omitempty"`
}

// ExportFormat selects the document type of a rate report export
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatDOCX     ExportFormat = "docx"
	FormatPDF      ExportFormat = "pdf"
)

// RateQuote is an allow-listed quote ready for rendering.
// Spread is nil unless both sides parse as numbers.
type RateQuote struct {
	Symbol string
	Label  string
	Bid    string
	Ask    string
	Spread *float64
}

// RateReport is the filtered snapshot behind the all-pairs report
type RateReport struct {
	Quotes    []RateQuote
	FetchedAt time.Time
}
