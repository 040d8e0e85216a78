// Package githubout talks to the GitHub REST API: issue comments and token inspection.
package githubout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
)

const commentsPerPage = 100

// Adapter implements ports.CommentsPort with a single authenticated client.
type Adapter struct {
	client *gogithub.Client
	logger *slog.Logger
}

// New creates a comments adapter posting as whoever client authenticates as.
func New(client *gogithub.Client, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, logger: logger}
}

// ListComments returns every comment on the target in the order GitHub
// returns them (oldest first), following pagination.
func (a *Adapter) ListComments(ctx context.Context, target domain.Target) ([]domain.Comment, error) {
	opts := &gogithub.IssueListCommentsOptions{
		ListOptions: gogithub.ListOptions{PerPage: commentsPerPage},
	}

	var out []domain.Comment
	for {
		page, resp, err := a.client.Issues.ListComments(ctx, target.Owner, target.Repo, target.IssueNumber, opts)
		if err != nil {
			return nil, translateError(domain.KindUpstreamRead, "listing comments", err)
		}
		for _, c := range page {
			out = append(out, toComment(c))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	a.logger.Debug("listed comments", "target", target.String(), "count", len(out))
	return out, nil
}

// CreateComment posts a new comment on the target.
func (a *Adapter) CreateComment(ctx context.Context, target domain.Target, body string) (domain.Comment, error) {
	c, _, err := a.client.Issues.CreateComment(ctx, target.Owner, target.Repo, target.IssueNumber, &gogithub.IssueComment{
		Body: gogithub.Ptr(body),
	})
	if err != nil {
		return domain.Comment{}, translateError(domain.KindUpstreamWrite, "creating comment", err)
	}
	return toComment(c), nil
}

// UpdateComment replaces the body of an existing comment.
func (a *Adapter) UpdateComment(ctx context.Context, target domain.Target, commentID int64, body string) (domain.Comment, error) {
	c, _, err := a.client.Issues.EditComment(ctx, target.Owner, target.Repo, commentID, &gogithub.IssueComment{
		Body: gogithub.Ptr(body),
	})
	if err != nil {
		return domain.Comment{}, translateError(domain.KindUpstreamWrite, "updating comment", err)
	}
	return toComment(c), nil
}

func toComment(c *gogithub.IssueComment) domain.Comment {
	return domain.Comment{
		ID:        c.GetID(),
		NodeID:    c.GetNodeID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		HTMLURL:   c.GetHTMLURL(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}

// translateError converts a go-github error into a *domain.Error carrying the
// upstream status code and the decoded error body.
func translateError(kind domain.ErrorKind, op string, err error) error {
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return domain.NewUpstreamError(kind, statusOf(rateErr.Response), rateErr.Message,
			map[string]any{"message": rateErr.Message}, err)
	}

	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return domain.NewUpstreamError(kind, statusOf(abuseErr.Response), abuseErr.Message,
			map[string]any{"message": abuseErr.Message}, err)
	}

	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) {
		details := map[string]any{"message": respErr.Message}
		if len(respErr.Errors) > 0 {
			details["errors"] = respErr.Errors
		}
		if respErr.DocumentationURL != "" {
			details["documentation_url"] = respErr.DocumentationURL
		}
		return domain.NewUpstreamError(kind, statusOf(respErr.Response), respErr.Message, details, err)
	}

	return domain.NewUpstreamError(kind, 0, op, nil, fmt.Errorf("%s: %w", op, err))
}
