// Package main provides the comment-proxy HTTP server, which posts or updates
// GitHub issue and pull request comments on behalf of validated callers.
package main

import (
	"fmt"
	"log/slog"

	githubout "github.com/nathantilsley/comment-proxy/internal/comment/adapters/github_out"
	httpin "github.com/nathantilsley/comment-proxy/internal/comment/adapters/http_in"
	"github.com/nathantilsley/comment-proxy/internal/comment/app"
	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
	"github.com/nathantilsley/comment-proxy/internal/comment/ports"
	"github.com/nathantilsley/comment-proxy/internal/platform/config"
	ghclient "github.com/nathantilsley/comment-proxy/internal/platform/github"
	"github.com/nathantilsley/comment-proxy/internal/platform/telemetry"
)

// Container holds all application dependencies.
type Container struct {
	Config         config.Config
	Logger         *slog.Logger
	Telemetry      *telemetry.Telemetry
	CommentService ports.CommentUseCase
	CommentHandler *httpin.Handler
}

// NewContainer builds and wires all dependencies.
func NewContainer(cfg config.Config, log *slog.Logger, tel *telemetry.Telemetry) (*Container, error) {
	comments, err := newCommentsFactory(cfg, log)
	if err != nil {
		return nil, err
	}

	inspector := githubout.NewInspector(ghclient.TokenClientFunc(cfg.GitHubAPIURL))

	service, err := app.NewCommentService(
		inspector,
		comments,
		app.Settings{
			TrustedToken: domain.Credential(cfg.TrustedToken),
			BotLogin:     cfg.BotLogin,
		},
		log,
		tel.Meter,
		tel.Tracer,
	)
	if err != nil {
		return nil, fmt.Errorf("creating comment service: %w", err)
	}

	return &Container{
		Config:         cfg,
		Logger:         log,
		Telemetry:      tel,
		CommentService: service,
		CommentHandler: httpin.NewHandler(service, log),
	}, nil
}

// newCommentsFactory selects the identity comments are posted as.
func newCommentsFactory(cfg config.Config, log *slog.Logger) (ports.CommentsFactory, error) {
	if cfg.CommentIdentity == config.IdentityCaller {
		log.Info("posting comments with the caller's credential")
		return githubout.NewCallerFactory(ghclient.TokenClientFunc(cfg.GitHubAPIURL), log), nil
	}

	if cfg.UsesApp() {
		log.Info("posting comments as github app installation",
			"appID", cfg.GitHubAppID,
			"installationID", cfg.GitHubInstallationID,
		)
		client, err := ghclient.NewAppClient(cfg.GitHubAppID, cfg.GitHubInstallationID, cfg.GitHubPrivateKey, cfg.GitHubAPIURL)
		if err != nil {
			return nil, fmt.Errorf("creating github app client: %w", err)
		}
		return githubout.NewBotFactory(client, log), nil
	}

	log.Info("posting comments with the bot token", "botLogin", cfg.BotLogin)
	client, err := ghclient.NewTokenClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	if err != nil {
		return nil, fmt.Errorf("creating github client: %w", err)
	}
	return githubout.NewBotFactory(client, log), nil
}
