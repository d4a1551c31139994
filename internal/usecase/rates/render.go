package rates

import (
	"fmt"
	"strings"

	"github.com/Songmu/flextime"
	"github.com/futig/fxchat-backend/internal/entity"
)

// Disclaimer closes every all-pairs report
const Disclaimer = "※ レートは参考値です。実際の取引レートとは異なる場合があります。"

// RenderReport formats a report as chat text
func RenderReport(report *entity.RateReport) string {
	var sb strings.Builder

	sb.WriteString("📈 現在の為替レート\n\n")
	for _, q := range report.Quotes {
		fmt.Fprintf(&sb, "🔹 %s (%s)\n", q.Label, q.Symbol)
		fmt.Fprintf(&sb, "   買値: %s\n", q.Bid)
		fmt.Fprintf(&sb, "   売値: %s\n", q.Ask)
		if q.Spread != nil {
			fmt.Fprintf(&sb, "   スプレッド: %.4f\n", *q.Spread)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "⏰ 取得時刻: %s\n", report.FetchedAt.Format(timeLayout))
	sb.WriteString("\n")
	sb.WriteString(Disclaimer)

	return sb.String()
}

func renderPair(q entity.RateQuote) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "💱 %s\n", q.Symbol)
	fmt.Fprintf(&sb, "買値: %s\n", q.Bid)
	fmt.Fprintf(&sb, "売値: %s\n", q.Ask)
	if q.Spread != nil {
		fmt.Fprintf(&sb, "スプレッド: %.4f\n", *q.Spread)
	}
	fmt.Fprintf(&sb, "取得時刻: %s", flextime.Now().Format(timeLayout))

	return sb.String()
}
