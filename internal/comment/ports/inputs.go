package ports

import (
	"context"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
)

// CommentUseCase is the driving port for posting a comment through the proxy.
type CommentUseCase interface {
	PostComment(ctx context.Context, req domain.PostRequest) (domain.UpsertResult, error)
}
