package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("VERCEL_ENV", "")

	cfg, err := Parse()
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.ServerAddr)
	require.Equal(t, DispatchFunctionCalling, cfg.ChatCfg.DispatchMode)
	require.Equal(t, 1000, cfg.RAGCfg.ChunkSize)
	require.Equal(t, 100, cfg.RAGCfg.ChunkOverlap)
	require.Equal(t, 3, cfg.RAGCfg.TopK)
	require.Equal(t, 10*time.Second, cfg.ForexConnectorCfg.RequestTimeout)
	require.Equal(t, "/public/v1/ticker", cfg.ForexConnectorCfg.TickerEndpoint)
	require.Equal(t, 30*time.Second, cfg.LLMConnectorCfg.Timeout)
	require.Equal(t, uint(1), cfg.LoaderCfg.Retry.Attempts)
	require.True(t, cfg.CORSEnabled())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("CHAT_DISPATCH_MODE", DispatchAugmented)
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("FOREX_TIMEOUT", "3s")
	t.Setenv("VERCEL_ENV", "production")

	cfg, err := Parse()
	require.NoError(t, err)

	require.Equal(t, DispatchAugmented, cfg.ChatCfg.DispatchMode)
	require.Equal(t, 5, cfg.RAGCfg.TopK)
	require.Equal(t, 3*time.Second, cfg.ForexConnectorCfg.RequestTimeout)
	require.False(t, cfg.CORSEnabled())
}

func TestParse_ValidationErrors(t *testing.T) {
	t.Setenv("CHAT_DISPATCH_MODE", "magic")
	t.Setenv("RAG_CHUNK_OVERLAP", "1000")
	t.Setenv("RAG_TOP_K", "0")

	_, err := Parse()
	require.Error(t, err)
	require.ErrorContains(t, err, "CHAT_DISPATCH_MODE")
	require.ErrorContains(t, err, "RAG_CHUNK_OVERLAP")
	require.ErrorContains(t, err, "RAG_TOP_K")
}

func TestGetEnvFile(t *testing.T) {
	require.Equal(t, ".env.prod", getEnvFile("production"))
	require.Equal(t, ".env.local", getEnvFile("dev"))
	require.Equal(t, ".env.staging", getEnvFile("staging"))
}
