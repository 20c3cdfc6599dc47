//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/anishxyz/review-digest/internal/bootstrap"
	"github.com/anishxyz/review-digest/internal/domain/credential"
	"github.com/anishxyz/review-digest/internal/domain/review"
	"github.com/anishxyz/review-digest/internal/domain/summary"
	"github.com/anishxyz/review-digest/internal/infra/config"
	"github.com/anishxyz/review-digest/internal/infra/llm/chatgpt"
	"github.com/anishxyz/review-digest/internal/infra/page/amazonpage"
	httpiface "github.com/anishxyz/review-digest/internal/interface/http"
	"github.com/anishxyz/review-digest/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSummaryConfig,
		provideReviewConfig,
		provideCredentialConfig,
		provideChatClient,
		provideExtractor,
		provideTokenCounter,
		provideSnapshotRepository,
		provideCredentialStore,
		provideCaptureStore,
		credential.NewService,
		review.NewService,
		summary.NewService,
		wire.Bind(new(review.Extractor), new(*amazonpage.Client)),
		wire.Bind(new(summary.ChatClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
