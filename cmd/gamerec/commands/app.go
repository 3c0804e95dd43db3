package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/agents"
	"github.com/ludic-labs/gamerec/internal/config"
	"github.com/ludic-labs/gamerec/internal/db"
	"github.com/ludic-labs/gamerec/internal/discord"
	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/embedding"
	"github.com/ludic-labs/gamerec/internal/favorites"
	"github.com/ludic-labs/gamerec/internal/igdb"
	"github.com/ludic-labs/gamerec/internal/ingest"
	logpkg "github.com/ludic-labs/gamerec/internal/logger"
	"github.com/ludic-labs/gamerec/internal/metrics"
	"github.com/ludic-labs/gamerec/internal/prompting"
	budgetrepo "github.com/ludic-labs/gamerec/internal/repository/budget"
	"github.com/ludic-labs/gamerec/internal/repository/catalog"
	"github.com/ludic-labs/gamerec/internal/repository/embcache"
	embeddingrepo "github.com/ludic-labs/gamerec/internal/repository/embedding"
	"github.com/ludic-labs/gamerec/internal/scoring"
	"github.com/ludic-labs/gamerec/internal/similarity"
	openaiEmb "github.com/ludic-labs/gamerec/internal/transport/openai"
	"github.com/ludic-labs/gamerec/internal/vector"
)

// app is the composition root shared by all commands. Everything is wired
// once here; commands pick the collaborators they need.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	db         *db.DB
	catalog    *catalog.Repository
	embeddings *embeddingrepo.Repository

	igdb      *igdb.Client
	builder   *ingest.GameBuilder
	engine    *similarity.Service
	prompts   *prompting.Builder
	favorites *favorites.Loader
}

// newApp loads configuration and wires the full object graph. A .env file,
// when present, supplies the ${VAR} values referenced from the YAML config.
func newApp() (*app, error) {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	database, err := db.Open(db.Config{
		Path:             cfg.Storage.SQLitePath,
		VecExtensionPath: cfg.Storage.VecExtensionPath,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}

	metric, err := vector.ParseMetric(cfg.Similarity.Metric)
	if err != nil {
		_ = database.Close()
		_ = logger.Sync()
		return nil, err
	}

	embRepo, err := embeddingrepo.New(database, cfg.Embedding.Dimensions, metric, logger)
	if err != nil {
		_ = database.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("open embedding store: %w", err)
	}

	catalogRepo := catalog.New(database, logger)

	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	if !cfg.Embedding.CacheSkip {
		embedder = embcache.New(embedder, database, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embedding.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model,
		buildBudget(cfg, database, logger), logger,
	)

	tokenSource := igdb.NewTokenSource(igdb.TokenConfig{
		ClientID:      cfg.IGDB.ClientID,
		ClientSecret:  cfg.IGDB.ClientSecret,
		TokenURL:      cfg.IGDB.TokenURL,
		RefreshMargin: time.Duration(cfg.IGDB.RefreshMarginSec) * time.Second,
	})
	igdbClient := igdb.NewClient(igdb.ClientConfig{
		ClientID:    cfg.IGDB.ClientID,
		TokenSource: tokenSource,
		Logger:      logger,
	})

	tagResolver := ingest.NewTagResolver(catalogRepo, igdbClient, logger)
	gameBuilder := ingest.NewGameBuilder(igdbClient, tagResolver, embedder, logger)

	scorer := scoring.Policy{MinScoreThreshold: cfg.Similarity.MinScoreThreshold}
	engine := similarity.New(embRepo, embedder, scorer, similarity.Config{
		MaxLimit:          cfg.Similarity.MaxLimit,
		MinScoreThreshold: cfg.Similarity.MinScoreThreshold,
	}, logger)

	prompts, err := prompting.NewBuilder()
	if err != nil {
		_ = database.Close()
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         database,
		catalog:    catalogRepo,
		embeddings: embRepo,
		igdb:       igdbClient,
		builder:    gameBuilder,
		engine:     engine,
		prompts:    prompts,
		favorites:  favorites.NewLoader(catalogRepo, embRepo, logger),
	}, nil
}

// buildBudget returns the token-budget checker, nil when no limits are
// configured. A typed nil tracker must not leak into the interface.
func buildBudget(cfg config.Config, database *db.DB, logger *zap.Logger) embedding.BudgetChecker {
	if cfg.Embedding.DailyTokenLimit <= 0 && cfg.Embedding.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := embedding.BudgetActionWarn
	if cfg.Embedding.BudgetAction == "reject" {
		action = embedding.BudgetActionReject
	}
	tracker := embedding.NewBudgetTracker(
		cfg.Embedding.Provider,
		cfg.Embedding.DailyTokenLimit,
		cfg.Embedding.MonthlyTokenLimit,
		action, logger,
	)
	return tracker.WithStore(context.Background(), budgetrepo.New(database))
}

// Close releases the database handle and flushes buffered log entries.
func (a *app) Close() {
	_ = a.db.Close()
	_ = a.logger.Sync()
}

// webhook returns the configured Discord client, or an error when the
// webhook URL is missing.
func (a *app) webhook() (*discord.WebhookClient, error) {
	if a.cfg.Discord.WebhookURL == "" {
		return nil, fmt.Errorf("discord.webhook_url is not configured")
	}
	return discord.NewWebhookClient(discord.WebhookConfig{
		WebhookURL: a.cfg.Discord.WebhookURL,
		Username:   a.cfg.Discord.Username,
		Logger:     a.logger,
	}), nil
}

// agent returns the configured decision-agent runner, or an error when no
// agent command is configured.
func (a *app) agent() (agents.Runner, error) {
	if a.cfg.Agent.Command == "" {
		return nil, fmt.Errorf("agent.command is not configured")
	}
	return agents.NewExecRunner(agents.ExecConfig{
		Command: a.cfg.Agent.Command,
		Args:    a.cfg.Agent.Args,
		Timeout: time.Duration(a.cfg.Agent.TimeoutSec) * time.Second,
		Logger:  a.logger,
	}), nil
}
