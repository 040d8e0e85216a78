package ports

import (
	"context"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
)

// CommentsPort abstracts reading and writing issue comments on the remote
// issue tracker. Failures are returned as *domain.Error.
type CommentsPort interface {
	ListComments(ctx context.Context, target domain.Target) ([]domain.Comment, error)
	CreateComment(ctx context.Context, target domain.Target, body string) (domain.Comment, error)
	UpdateComment(ctx context.Context, target domain.Target, commentID int64, body string) (domain.Comment, error)
}

// TokenInspectorPort abstracts the lightweight authenticated read used to
// classify a caller's credential.
type TokenInspectorPort interface {
	// CurrentUser returns the login the credential authenticates as.
	CurrentUser(ctx context.Context, cred domain.Credential) (string, error)
}

// CommentsFactory returns the CommentsPort a request should post through.
// The bot identity ignores cred; the caller identity authenticates with it.
type CommentsFactory interface {
	ForCredential(cred domain.Credential) (CommentsPort, error)
}
