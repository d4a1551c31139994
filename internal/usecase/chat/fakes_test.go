package chat

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
)

type fakeRates struct {
	allCalls  int
	pairCalls []string
	panicOn   string
}

func (f *fakeRates) AllMajorPairs(context.Context) string {
	f.allCalls++
	return "📈 現在の為替レート"
}

func (f *fakeRates) Pair(_ context.Context, symbol string) string {
	if f.panicOn != "" && symbol == f.panicOn {
		panic("ticker exploded")
	}
	f.pairCalls = append(f.pairCalls, symbol)
	return "💱 " + symbol
}

type llmCall struct {
	messages []entity.ChatMessage
	tools    []entity.ToolSpec
}

type fakeLLM struct {
	replies []entity.ModelReply
	errs    []error
	calls   []llmCall
}

func (f *fakeLLM) Chat(_ context.Context, messages []entity.ChatMessage, tools []entity.ToolSpec) (entity.ModelReply, error) {
	i := len(f.calls)
	f.calls = append(f.calls, llmCall{
		messages: append([]entity.ChatMessage(nil), messages...),
		tools:    tools,
	})

	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return entity.DirectText{Text: "default"}, nil
}

type fakeRetriever struct {
	passages []entity.Passage
	queries  []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, message string) []entity.Passage {
	f.queries = append(f.queries, message)
	return f.passages
}
