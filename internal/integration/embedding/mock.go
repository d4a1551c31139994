package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDimensions = 128

// MockConnector produces deterministic bag-of-characters vectors, so texts
// sharing characters land near each other without a provider.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding texts", zap.Int("total", len(texts)))

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = mockVector(text)
	}
	return out, nil
}

func mockVector(text string) []float32 {
	v := make([]float32, mockDimensions)
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(string(r)))
		v[h.Sum32()%mockDimensions]++
	}

	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	if sum > 0 {
		norm := float32(1 / math.Sqrt(sum))
		for i := range v {
			v[i] *= norm
		}
	}
	return v
}
