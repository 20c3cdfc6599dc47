package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/anishxyz/review-digest/internal/domain/credential"
	"github.com/anishxyz/review-digest/internal/domain/review"
	"github.com/anishxyz/review-digest/internal/domain/summary"
	"github.com/anishxyz/review-digest/internal/infra/capture"
	"github.com/anishxyz/review-digest/internal/infra/config"
	"github.com/anishxyz/review-digest/internal/infra/credstore"
	"github.com/anishxyz/review-digest/internal/infra/llm/chatgpt"
	"github.com/anishxyz/review-digest/internal/infra/page/amazonpage"
	"github.com/anishxyz/review-digest/internal/infra/reviewrepo"
	"github.com/anishxyz/review-digest/pkg/metrics"
)

func provideSummaryConfig(cfg *config.Config) summary.Config {
	return summary.Config{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		SystemPrompt:    cfg.Summary.SystemPrompt,
		StreamTimeout:   cfg.LLM.StreamTimeout,
		MaxPromptTokens: cfg.Summary.MaxPromptTokens,
	}
}

func provideReviewConfig(cfg *config.Config) review.Config {
	return review.Config{
		SnapshotTTL:    cfg.Extract.SnapshotTTL,
		CaptureEnabled: cfg.Capture.Enabled,
	}
}

func provideCredentialConfig(cfg *config.Config) credential.Config {
	return credential.Config{EncryptionSecret: cfg.Credential.EncryptionSecret}
}

func provideChatClient(cfg *config.Config, logger *slog.Logger) *chatgpt.Client {
	return chatgpt.NewClient(cfg.LLM.BaseURL, logger)
}

func provideExtractor(cfg *config.Config, logger *slog.Logger) *amazonpage.Client {
	return amazonpage.NewClient(cfg.Extract.UserAgent, cfg.Extract.Timeout, logger)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) *metrics.TokenCounter {
	counter, err := metrics.NewTokenCounter(cfg.LLM.Model, cfg.Summary.MaxPromptTokens)
	if err != nil {
		logger.Warn("token counter unavailable, skipping prompt estimates", "error", err)
		return nil
	}
	return counter
}

func provideSnapshotRepository(cfg *config.Config, logger *slog.Logger) review.SnapshotRepository {
	fallback := reviewrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Extract.Postgres.DSN)
	if dsn == "" {
		logger.Info("snapshot postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Extract.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Extract.Postgres.MaxConns
	}
	if cfg.Extract.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Extract.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("snapshot postgres repository enabled")
	return reviewrepo.NewPostgresRepository(pool)
}

func provideCredentialStore(cfg *config.Config, logger *slog.Logger) credential.Store {
	if cfg.Credential.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Credential.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return credstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return credstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("credential valkey store enabled", "addr", cfg.Credential.Valkey.Addr)
			return credstore.NewValkeyStore(client, "cred")
		}
	}
	return credstore.NewMemoryStore()
}

func provideCaptureStore(cfg *config.Config, logger *slog.Logger) review.CaptureStore {
	if !cfg.Capture.Enabled {
		return capture.NewMemoryArchive()
	}
	archive, err := capture.NewS3Archive(
		cfg.Capture.Endpoint,
		cfg.Capture.AccessKey,
		cfg.Capture.SecretKey,
		cfg.Capture.Bucket,
		cfg.Capture.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize capture archive, using memory archive", "error", err)
		return capture.NewMemoryArchive()
	}
	return archive
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
