// Package github provides authenticated GitHub API clients.
package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST API.
const DefaultAPIURL = "https://api.github.com"

const requestTimeout = 20 * time.Second

// NewAppClient creates a GitHub API client authenticated as a GitHub App installation.
// The ghinstallation transport automatically handles token renewal.
func NewAppClient(appID, installationID int64, privateKeyPEM, baseURL string) (*gogithub.Client, error) {
	transport, err := ghinstallation.New(baseTransport(), appID, installationID, []byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("creating github installation transport: %w", err)
	}
	if baseURL != "" {
		transport.BaseURL = strings.TrimRight(baseURL, "/")
	}

	client := gogithub.NewClient(&http.Client{Transport: transport, Timeout: requestTimeout})
	return withBaseURL(client, baseURL)
}

// NewTokenClient creates a GitHub API client authenticated with a static
// token: the bot's personal token or a caller's credential.
func NewTokenClient(token, baseURL string) (*gogithub.Client, error) {
	httpClient := &http.Client{Timeout: requestTimeout, Transport: baseTransport()}
	if token != "" {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   baseTransport(),
		}
	}
	return withBaseURL(gogithub.NewClient(httpClient), baseURL)
}

// TokenClientFunc returns a constructor binding NewTokenClient to baseURL.
func TokenClientFunc(baseURL string) func(token string) (*gogithub.Client, error) {
	return func(token string) (*gogithub.Client, error) {
		return NewTokenClient(token, baseURL)
	}
}

// baseTransport instruments outbound calls so they appear as child spans.
func baseTransport() http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport)
}

func withBaseURL(c *gogithub.Client, baseURL string) (*gogithub.Client, error) {
	if baseURL == "" || strings.TrimRight(baseURL, "/") == DefaultAPIURL {
		return c, nil
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid github api url %q: %w", baseURL, err)
	}
	c.BaseURL = u
	return c, nil
}
