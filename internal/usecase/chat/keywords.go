package chat

import (
	"context"
	"strings"
)

// Canned replies of the keyword dispatcher
const (
	GreetingReply = "こんにちは！私は為替情報などをお手伝いできるチャットボットです。何かご質問はありますか？"

	HelpReply = `私ができることをご紹介します：

📈 為替レート情報の取得
- 「為替レートを教えて」「USDJPYのレートは？」など

🔧 利用可能なツール：
- 為替情報取得ツール

その他ご質問があれば、お気軽にお聞きください！`

	RefusalReply = "申し訳ございませんが、その質問にはお答えできません。為替レートについて聞いてみてください。例：「今日の為替レートを教えて」"
)

var (
	forexKeywords    = []string{"為替", "レート", "usd", "eur", "jpy", "円", "ドル", "ユーロ"}
	greetingKeywords = []string{"こんにちは", "おはよう", "こんばんは", "はじめまして", "hello", "hi"}
	helpKeywords     = []string{"ヘルプ", "help", "機能", "何ができる", "できること"}

	// wider vocabulary used to decide whether rates go into the prompt
	exchangeKeywords = []string{"為替", "レート", "円", "ドル", "ユーロ", "ポンド", "豪ドル", "通貨", "usd", "eur", "gbp", "aud", "jpy"}
)

// keywordRoute answers a message containing any of its keywords
type keywordRoute struct {
	name     string
	keywords []string
	respond  func(ctx context.Context) string
}

// keywordRoutes is checked in order; the first match wins
func keywordRoutes(rates RatesProvider) []keywordRoute {
	return []keywordRoute{
		{name: "forex", keywords: forexKeywords, respond: rates.AllMajorPairs},
		{name: "greeting", keywords: greetingKeywords, respond: constant(GreetingReply)},
		{name: "help", keywords: helpKeywords, respond: constant(HelpReply)},
	}
}

func matchRoute(routes []keywordRoute, message string) (keywordRoute, bool) {
	lower := strings.ToLower(message)
	for _, r := range routes {
		if containsAny(lower, r.keywords) {
			return r, true
		}
	}
	return keywordRoute{}, false
}

func isExchangeQuery(message string) bool {
	return containsAny(strings.ToLower(message), exchangeKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func constant(s string) func(context.Context) string {
	return func(context.Context) string { return s }
}
