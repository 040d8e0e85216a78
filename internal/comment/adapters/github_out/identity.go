package githubout

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
	"github.com/nathantilsley/comment-proxy/internal/comment/ports"
)

// ClientFunc builds a GitHub client authenticated with the given token.
type ClientFunc func(token string) (*gogithub.Client, error)

// Inspector implements ports.TokenInspectorPort with GET /user.
type Inspector struct {
	newClient ClientFunc
}

// NewInspector creates an inspector that authenticates each call with the
// inspected credential.
func NewInspector(newClient ClientFunc) *Inspector {
	return &Inspector{newClient: newClient}
}

// CurrentUser returns the login cred authenticates as.
func (i *Inspector) CurrentUser(ctx context.Context, cred domain.Credential) (string, error) {
	client, err := i.newClient(string(cred))
	if err != nil {
		return "", fmt.Errorf("creating inspection client: %w", err)
	}
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", translateError(domain.KindUpstreamRead, "getting current user", err)
	}
	return user.GetLogin(), nil
}

// Factory implements ports.CommentsFactory.
type Factory struct {
	bot       *Adapter
	newClient ClientFunc
	logger    *slog.Logger
}

// NewBotFactory posts every comment as the bot identity behind client.
func NewBotFactory(client *gogithub.Client, logger *slog.Logger) *Factory {
	return &Factory{bot: New(client, logger), logger: logger}
}

// NewCallerFactory posts every comment with the caller's own credential.
func NewCallerFactory(newClient ClientFunc, logger *slog.Logger) *Factory {
	return &Factory{newClient: newClient, logger: logger}
}

// ForCredential returns the comments adapter for a request.
func (f *Factory) ForCredential(cred domain.Credential) (ports.CommentsPort, error) {
	if f.bot != nil {
		return f.bot, nil
	}
	if f.newClient == nil {
		return nil, domain.ErrNoIdentity
	}
	client, err := f.newClient(string(cred))
	if err != nil {
		return nil, fmt.Errorf("creating caller client: %w", err)
	}
	return New(client, f.logger), nil
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
