// Command comment-proxy-cli posts a test comment to a pull request through a
// running comment-proxy.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultProxyURL = "http://localhost:8080"

var prURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

type options struct {
	proxyURL     string
	token        string
	header       string
	allowRepeats bool
}

type testComment struct {
	Body         string `json:"body"`
	Header       string `json:"header,omitempty"`
	AllowRepeats bool   `json:"allowRepeats"`
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "comment-proxy-cli <pr-url>",
		Short:         "Post a test comment to a pull request through comment-proxy",
		Example:       "  GITHUB_TOKEN=ghp_xxx comment-proxy-cli https://github.com/owner/repo/pull/123",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				opts.token = os.Getenv("GITHUB_TOKEN")
			}
			if opts.token == "" {
				return fmt.Errorf("github token required: pass --token or set GITHUB_TOKEN")
			}

			owner, repo, number, err := parsePRURL(args[0])
			if err != nil {
				return fmt.Errorf("parsing PR URL: %w", err)
			}

			payload := testComment{
				Body:         fmt.Sprintf("Test comment from bot at %s", time.Now().UTC().Format(time.RFC3339)),
				Header:       opts.header,
				AllowRepeats: opts.allowRepeats,
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Posting test comment to %s/%s#%d via %s\n", owner, repo, number, opts.proxyURL)

			status, body, err := postTestComment(cmd.Context(), http.DefaultClient, opts.proxyURL, opts.token, owner, repo, number, payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Response status: %d\n", status)
			if len(body) > 0 {
				fmt.Fprintf(out, "Response body: %s\n", strings.TrimSpace(string(body)))
			}
			if status != http.StatusOK {
				return fmt.Errorf("proxy returned status %d", status)
			}
			fmt.Fprintln(out, "✓ Comment submitted")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.proxyURL, "url", defaultProxyURL, "Base URL of the comment proxy")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub token sent as temporary-github-token (defaults to GITHUB_TOKEN)")
	cmd.Flags().StringVar(&opts.header, "header", "Test Comment Header", "Header used to find an existing comment to update")
	cmd.Flags().BoolVar(&opts.allowRepeats, "allow-repeats", false, "Always create a new comment")

	return cmd
}

// parsePRURL extracts owner, repo, and PR number from a GitHub PR URL such as
// https://github.com/owner/repo/pull/123 (trailing paths are ignored).
func parsePRURL(url string) (string, string, int, error) {
	matches := prURLPattern.FindStringSubmatch(url)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid PR URL format, expected: https://github.com/owner/repo/pull/123, got: %s", url)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number %q: %w", matches[3], err)
	}
	return matches[1], matches[2], number, nil
}

// postTestComment sends payload to the proxy's legacy path-parameter route.
func postTestComment(
	ctx context.Context,
	client *http.Client,
	proxyURL, token, owner, repo string,
	number int,
	payload testComment,
) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/repos/%s/%s/issues/%d/comments", strings.TrimRight(proxyURL, "/"), owner, repo, number)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("temporary-github-token", token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}
