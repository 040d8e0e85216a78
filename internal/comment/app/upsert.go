package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
	"github.com/nathantilsley/comment-proxy/internal/comment/ports"
)

// UpsertEngine decides between creating and updating a comment.
//
// The found/not-found decision is made once, before the single mutating call.
// Two concurrent upserts for the same target can both miss and both create.
type UpsertEngine struct {
	logger *slog.Logger
}

// NewUpsertEngine creates an UpsertEngine.
func NewUpsertEngine(logger *slog.Logger) *UpsertEngine {
	return &UpsertEngine{logger: logger}
}

// Upsert creates a comment on target, or updates the first existing comment
// satisfying match. Exactly one create or update call is issued.
func (e *UpsertEngine) Upsert(
	ctx context.Context,
	comments ports.CommentsPort,
	target domain.Target,
	body string,
	match domain.Match,
) (domain.UpsertResult, error) {
	newBody := match.Body(body)

	if match.Policy != domain.MatchNone {
		existing, err := comments.ListComments(ctx, target)
		if err != nil {
			return domain.UpsertResult{}, fmt.Errorf("listing comments on %s: %w", target, err)
		}

		if found, ok := match.FindFirst(existing); ok {
			e.logger.Info("updating existing comment",
				"target", target.String(),
				"commentID", found.ID,
				"policy", match.Policy.String(),
			)
			updated, err := comments.UpdateComment(ctx, target, found.ID, newBody)
			if err != nil {
				return domain.UpsertResult{}, fmt.Errorf("updating comment %d: %w", found.ID, err)
			}
			return domain.UpsertResult{Action: domain.ActionUpdated, Comment: updated}, nil
		}

		e.logger.Debug("no matching comment found",
			"target", target.String(),
			"policy", match.Policy.String(),
			"scanned", len(existing),
		)
	}

	e.logger.Info("creating comment", "target", target.String(), "policy", match.Policy.String())
	created, err := comments.CreateComment(ctx, target, newBody)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("creating comment on %s: %w", target, err)
	}
	return domain.UpsertResult{Action: domain.ActionCreated, Comment: created}, nil
}
