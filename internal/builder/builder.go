package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/fxchat-backend/internal/api"
	chatapi "github.com/futig/fxchat-backend/internal/api/chat"
	knowledgeapi "github.com/futig/fxchat-backend/internal/api/knowledge"
	ratesapi "github.com/futig/fxchat-backend/internal/api/rates"
	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/integration/embedding"
	"github.com/futig/fxchat-backend/internal/integration/forex"
	"github.com/futig/fxchat-backend/internal/integration/llm"
	"github.com/futig/fxchat-backend/internal/integration/webloader"
	"github.com/futig/fxchat-backend/internal/pkg/formatter"
	pkgLogger "github.com/futig/fxchat-backend/internal/pkg/logger"
	"github.com/futig/fxchat-backend/internal/telegram"
	"github.com/futig/fxchat-backend/internal/usecase/chat"
	"github.com/futig/fxchat-backend/internal/usecase/knowledge"
	"github.com/futig/fxchat-backend/internal/usecase/rates"
	"go.uber.org/zap"
)

// usecases is the object graph shared by the HTTP server and the bot
type usecases struct {
	rates     *rates.RatesUsecase
	knowledge *knowledge.KnowledgeUsecase
	chat      *chat.ChatUsecase
}

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkgLogger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("dispatch_mode", cfg.ChatCfg.DispatchMode),
	)

	uc := buildUsecases(cfg, logger)

	chatHandler := chatapi.NewHandler(uc.chat)
	knowledgeHandler := knowledgeapi.NewHandler(uc.knowledge)
	ratesHandler := ratesapi.NewHandler(uc.rates, formatter.NewFactory(cfg.PDFFontPath))
	logger.Info("API handlers initialized")

	router := api.SetupRouter(api.Handlers{
		Chat:      chatHandler,
		Knowledge: knowledgeHandler,
		Rates:     ratesHandler,
	}, cfg.CORSEnabled(), logger)
	logger.Info("HTTP router configured", zap.Bool("cors", cfg.CORSEnabled()))

	// Chat requests may spend two LLM round trips plus a ticker call
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 130 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates the Telegram front-end over the same chat use case
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkgLogger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	uc := buildUsecases(cfg, logger)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, uc.chat, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

func buildUsecases(cfg *config.Config, logger *zap.Logger) *usecases {
	var (
		tickerConnector rates.TickerConnector
		embedder        knowledge.Embedder
		rewriter        knowledge.QueryRewriter
		llmConnector    chat.LLMConnector
	)

	switch {
	case cfg.EnableMocks:
		logger.Info("Using mock connectors for external services")
		tickerConnector = forex.NewMockConnector(logger)
		mockLLM := llm.NewMockConnector(logger)
		llmConnector = mockLLM
		rewriter = mockLLM
		embedder = embedding.NewMockConnector(logger)
	case cfg.GeminiAPIKey == "":
		logger.Warn("GEMINI_API_KEY is not set; chat and document ingestion are degraded")
		tickerConnector = forex.NewConnector(cfg.ForexConnectorCfg, logger)
	default:
		logger.Info("Using real connectors for external services")
		tickerConnector = forex.NewConnector(cfg.ForexConnectorCfg, logger)
		llmClient := llm.NewConnector(cfg.LLMConnectorCfg, cfg.GeminiAPIKey, logger)
		llmConnector = llmClient
		rewriter = llmClient
		embedder = embedding.NewConnector(cfg.EmbeddingConnectorCfg, cfg.LLMConnectorCfg, cfg.GeminiAPIKey, logger)
	}

	ratesUC := rates.NewUsecase(tickerConnector, logger)
	knowledgeUC := knowledge.NewUsecase(
		cfg.RAGCfg,
		webloader.NewLoader(cfg.LoaderCfg, logger),
		embedder,
		rewriter,
		logger,
	)
	chatUC := chat.NewUsecase(cfg.ChatCfg, llmConnector, knowledgeUC, ratesUC, logger)
	logger.Info("Use cases initialized")

	return &usecases{
		rates:     ratesUC,
		knowledge: knowledgeUC,
		chat:      chatUC,
	}
}
