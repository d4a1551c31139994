package chat

import (
	"context"
	"fmt"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	ToolExchangeRates        = "get_exchange_rates"
	ToolSpecificExchangeRate = "get_specific_exchange_rate"

	argCurrencyPair = "currency_pair"
)

// tool binds a declared function to the code that runs it
type tool struct {
	spec entity.ToolSpec
	run  func(ctx context.Context, args map[string]any) (string, error)
}

// ToolExecutor runs the functions offered to the model. It never fails:
// unknown names and errors are reported back as text.
type ToolExecutor struct {
	tools map[string]tool
	specs []entity.ToolSpec
}

func NewToolExecutor(rates RatesProvider) *ToolExecutor {
	tools := []tool{
		{
			spec: entity.ToolSpec{
				Name:        ToolExchangeRates,
				Description: "GMO Coin APIから為替レート情報を取得します。主要通貨ペア（USD/JPY、EUR/JPY、GBP/JPY、AUD/JPY、EUR/USD）のレートを返します。",
			},
			run: func(ctx context.Context, _ map[string]any) (string, error) {
				return rates.AllMajorPairs(ctx), nil
			},
		},
		{
			spec: entity.ToolSpec{
				Name:        ToolSpecificExchangeRate,
				Description: "特定の通貨ペアの為替レートを取得します。",
				Params: []entity.ToolParam{{
					Name:        argCurrencyPair,
					Description: "取得したい通貨ペア（例: USD_JPY, EUR_JPY）",
					Required:    true,
				}},
			},
			run: func(ctx context.Context, args map[string]any) (string, error) {
				return rates.Pair(ctx, stringArg(args, argCurrencyPair)), nil
			},
		},
	}

	e := &ToolExecutor{tools: make(map[string]tool, len(tools))}
	for _, t := range tools {
		e.tools[t.spec.Name] = t
		e.specs = append(e.specs, t.spec)
	}
	return e
}

// Specs lists the declared tools in a stable order
func (e *ToolExecutor) Specs() []entity.ToolSpec {
	return e.specs
}

// Execute runs the named tool
func (e *ToolExecutor) Execute(ctx context.Context, name string, args map[string]any) (result string) {
	t, ok := e.tools[name]
	if !ok {
		ctxzap.Warn(ctx, "model requested unknown tool", zap.String("tool", name))
		return fmt.Sprintf("不明なツール: %s", name)
	}

	defer func() {
		if r := recover(); r != nil {
			ctxzap.Error(ctx, "tool panicked", zap.String("tool", name), zap.Any("panic", r))
			result = toolError(fmt.Errorf("%v", r))
		}
	}()

	ctxzap.Info(ctx, "executing tool", zap.String("tool", name), zap.Any("args", args))

	out, err := t.run(ctx, args)
	if err != nil {
		ctxzap.Error(ctx, "tool failed", zap.String("tool", name), zap.Error(err))
		return toolError(err)
	}

	return out
}

func toolError(err error) string {
	return fmt.Sprintf("ツール実行中にエラーが発生しました: %v", err)
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Catalog is the static tool list published over the API
func Catalog() []entity.ToolInfo {
	return []entity.ToolInfo{
		{
			Name:        ToolExchangeRates,
			Description: "GMO Coin APIから主要通貨ペアの為替レート情報を取得",
		},
		{
			Name:        ToolSpecificExchangeRate,
			Description: "GMO Coin APIから特定通貨ペアの為替レート情報を取得",
		},
		{
			Name:        "GeminiChat",
			Description: "OpenAI互換API経由でGoogle Gemini APIによる自然言語処理",
		},
	}
}
