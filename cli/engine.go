// ABOUTME: Wires the prioritization engine from configuration
// ABOUTME: Builds the OpenAI analyzer and optional Redis cache shared by every surface
package cli

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/config"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/enrichment"
	"github.com/harperreed/pagen-priority/prioritize"
)

// NewAnalyzer returns nil when image analysis is not configured. The returned
// cleanup func is never nil.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) (enrichment.Analyzer, func(), error) {
	noop := func() {}
	if !cfg.OpenAI.Enabled() {
		logger.Info("image analysis disabled, no OpenAI key or base URL configured")
		return nil, noop, nil
	}

	analyzer, err := enrichment.NewOpenAIAnalyzer(enrichment.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	}, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create image analyzer: %w", err)
	}

	if cfg.Redis.Addr == "" {
		return analyzer, noop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cleanup := func() { _ = client.Close() }

	return enrichment.NewCachedAnalyzer(analyzer, client, cfg.Redis.TTL, logger), cleanup, nil
}

// NewEngine builds the prioritization engine over the SQLite repositories.
func NewEngine(database *sql.DB, cfg *config.Config, logger *zap.Logger) (*prioritize.Engine, func(), error) {
	analyzer, cleanup, err := NewAnalyzer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	engine := prioritize.New(
		db.NewClientRepository(database),
		db.NewDealRepository(database),
		db.NewPrioritizationRepository(database),
		prioritize.Options{
			UserID:   cfg.UserID,
			Analyzer: analyzer,
			Logger:   logger,
		},
	)
	return engine, cleanup, nil
}
