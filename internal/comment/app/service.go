// Package app orchestrates credential validation and comment upserts.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
	"github.com/nathantilsley/comment-proxy/internal/comment/ports"
)

// Settings is the process-wide, read-only configuration of the service.
type Settings struct {
	TrustedToken domain.Credential // accepted without a remote check
	BotLogin     string            // author login used for author matching
}

// CommentService implements ports.CommentUseCase: validate the caller's
// credential, then upsert the comment through the configured identity.
type CommentService struct {
	validator *TokenValidator
	engine    *UpsertEngine
	comments  ports.CommentsFactory
	settings  Settings
	logger    *slog.Logger
	tracer    trace.Tracer

	upserts     metric.Int64Counter
	validations metric.Int64Counter
}

// NewCommentService creates a CommentService wired with its driven ports.
func NewCommentService(
	inspector ports.TokenInspectorPort,
	comments ports.CommentsFactory,
	settings Settings,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
) (*CommentService, error) {
	upserts, err := meter.Int64Counter("comment_proxy.upserts",
		metric.WithDescription("Comments created or updated through the proxy"),
		metric.WithUnit("{comment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating upserts counter: %w", err)
	}
	validations, err := meter.Int64Counter("comment_proxy.token_validations",
		metric.WithDescription("Credential validations by resulting token kind"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating validations counter: %w", err)
	}

	return &CommentService{
		validator:   NewTokenValidator(inspector, settings.TrustedToken, logger),
		engine:      NewUpsertEngine(logger),
		comments:    comments,
		settings:    settings,
		logger:      logger,
		tracer:      tracer,
		upserts:     upserts,
		validations: validations,
	}, nil
}

// PostComment validates req and upserts its comment.
func (s *CommentService) PostComment(ctx context.Context, req domain.PostRequest) (domain.UpsertResult, error) {
	ctx, span := s.tracer.Start(ctx, "comment.post",
		trace.WithAttributes(
			attribute.String("github.owner", req.Target.Owner),
			attribute.String("github.repo", req.Target.Repo),
			attribute.Int("github.issue_number", req.Target.IssueNumber),
		),
	)
	defer span.End()

	result, err := s.postComment(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.KindOf(err).String())
	}
	return result, err
}

func (s *CommentService) postComment(ctx context.Context, req domain.PostRequest, span trace.Span) (domain.UpsertResult, error) {
	if req.Credential == "" {
		return domain.UpsertResult{}, domain.NewError(domain.KindMissingCredential, "Invalid or missing GitHub token")
	}

	validation := s.validator.Validate(ctx, req.Credential)
	s.validations.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", validation.Kind.String())))
	span.SetAttributes(attribute.String("token.kind", validation.Kind.String()))
	if !validation.Valid {
		return domain.UpsertResult{}, domain.NewError(domain.KindInvalidCredential, "Invalid or missing GitHub token")
	}

	if err := req.Validate(); err != nil {
		return domain.UpsertResult{}, err
	}

	comments, err := s.comments.ForCredential(req.Credential)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("resolving comment identity: %w", err)
	}

	match := domain.ResolveMatch(req, s.settings.BotLogin)
	span.SetAttributes(attribute.String("match.policy", match.Policy.String()))

	result, err := s.engine.Upsert(ctx, comments, req.Target, req.Body, match)
	if err != nil {
		return domain.UpsertResult{}, err
	}

	s.upserts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", result.Action.String()),
		attribute.String("policy", match.Policy.String()),
	))
	span.SetAttributes(
		attribute.String("comment.action", result.Action.String()),
		attribute.Int64("comment.id", result.Comment.ID),
	)

	s.logger.Info("comment posted",
		"target", req.Target.String(),
		"action", result.Action.String(),
		"commentID", result.Comment.ID,
		"tokenKind", validation.Kind.String(),
	)
	return result, nil
}
