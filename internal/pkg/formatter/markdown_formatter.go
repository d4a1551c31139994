package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/fxchat-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.RateReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", reportTitle)
	buf.WriteString("| 通貨ペア | シンボル | 買値 | 売値 | スプレッド |\n")
	buf.WriteString("|---|---|---:|---:|---:|\n")
	for _, q := range report.Quotes {
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | %s |\n", q.Label, q.Symbol, q.Bid, q.Ask, spreadText(q))
	}
	fmt.Fprintf(&buf, "\n取得時刻: %s\n", report.FetchedAt.Format(timeLayout))
	buf.WriteString("\n> ※ レートは参考値です。実際の取引レートとは異なる場合があります。\n")
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
