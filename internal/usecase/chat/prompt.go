package chat

import (
	"fmt"
	"strings"

	"github.com/futig/fxchat-backend/internal/entity"
)

const toolSystemPrompt = `あなたは親切で知識豊富な日本語チャットボットです。

このチャットボットは主に為替レート情報を提供することに特化しています。

利用可能なツール:
- get_exchange_rates: 主要通貨ペアの為替レートを取得
- get_specific_exchange_rate: 特定通貨ペアの為替レートを取得

為替、通貨、レートに関する質問の場合は、適切なツールを使用して最新のデータを取得してください。
為替関連以外の質問の場合は、丁寧にお断りし、為替関連の質問をお待ちしていることをお伝えください。

常に日本語で回答してください。`

const toolSystemPromptWithContext = `あなたは親切で知識豊富な日本語チャットボットです。

このチャットボットは為替レート情報と、ユーザーが登録したWebページの内容に基づく質問に回答します。

利用可能なツール:
- get_exchange_rates: 主要通貨ペアの為替レートを取得
- get_specific_exchange_rate: 特定通貨ペアの為替レートを取得

為替、通貨、レートに関する質問の場合は、適切なツールを使用して最新のデータを取得してください。
下記の参考資料に関連する質問の場合は、参考資料の内容に基づいて回答し、参考資料に書かれていないことは推測しないでください。
どちらにも当てはまらない質問の場合は、丁寧にお断りしてください。

常に日本語で回答してください。`

const augmentedSystemPrompt = `あなたは親切で知識豊富な日本語チャットボットです。

このチャットボットは主に為替レート情報を提供することに特化しています。

為替、通貨、レートに関する質問の場合、以下の為替データを参照して回答してください：
{exchange_data}

為替関連以外の質問の場合は、丁寧にお断りし、為替関連の質問をお待ちしていることをお伝えください。

常に日本語で回答してください。`

// NoExchangeData fills the exchange data slot for messages unrelated to rates
const NoExchangeData = "為替データの取得は不要です。"

// BuildToolPrompt returns the system instruction for tool-calling dispatch
func BuildToolPrompt(passages []entity.Passage) string {
	if len(passages) == 0 {
		return toolSystemPrompt
	}
	return toolSystemPromptWithContext + "\n\n" + renderPassages(passages)
}

// BuildAugmentedPrompt embeds the rate report, or NoExchangeData, into the instruction
func BuildAugmentedPrompt(exchangeData string, passages []entity.Passage) string {
	prompt := strings.ReplaceAll(augmentedSystemPrompt, "{exchange_data}", exchangeData)
	if len(passages) == 0 {
		return prompt
	}
	return prompt + "\n\n参考資料に関連する質問の場合は、参考資料の内容に基づいて回答してください。\n\n" + renderPassages(passages)
}

func renderPassages(passages []entity.Passage) string {
	blocks := make([]string, 0, len(passages))
	for i, p := range passages {
		blocks = append(blocks, fmt.Sprintf("[参考資料 %d] (出典: %s)\n%s", i+1, p.Source, p.Content))
	}
	return strings.Join(blocks, "\n\n")
}
