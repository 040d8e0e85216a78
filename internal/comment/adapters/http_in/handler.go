// Package httpin handles inbound comment requests.
package httpin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
	"github.com/nathantilsley/comment-proxy/internal/comment/ports"
)

const (
	maxBodyBytes         = 1 << 20
	temporaryTokenHeader = "temporary-github-token"
)

// Handler serves the comment endpoint. It owns the whole request lifecycle:
// CORS, method check, credential extraction and error mapping.
type Handler struct {
	useCase ports.CommentUseCase
	logger  *slog.Logger
}

// NewHandler creates a new comment handler.
func NewHandler(uc ports.CommentUseCase, logger *slog.Logger) *Handler {
	return &Handler{useCase: uc, logger: logger}
}

// requestBody is the JSON payload. issueNumber may be a string or a number.
type requestBody struct {
	Owner        string      `json:"owner"`
	Repo         string      `json:"repo"`
	IssueNumber  json.Number `json:"issueNumber"`
	Body         string      `json:"body"`
	Header       string      `json:"header"`
	AllowRepeats *bool       `json:"allowRepeats"`
	MessageID    string      `json:"messageId"`
	Token        string      `json:"token"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// ServeHTTP runs one request through the proxy and writes exactly one response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	payload, err := decodeBody(w, r)
	if err != nil {
		h.logger.Info("rejecting malformed request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Details: err.Error()})
		return
	}

	req, err := buildRequest(r, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("received comment request",
		"path", r.URL.Path,
		"target", req.Target.String(),
		"hasToken", req.Credential != "",
		"tokenLength", len(req.Credential),
		"token", req.Credential.Redacted(),
	)

	result, err := h.useCase.PostComment(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentJSON(result.Comment))
}

// writeError maps a use case failure to a status code. Upstream failures
// mirror GitHub's status; unclassified failures collapse to a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	e, ok := domain.AsError(err)
	if !ok {
		h.logger.Error("comment request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	switch e.Kind {
	case domain.KindInvalidMethod:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	case domain.KindMissingCredential, domain.KindInvalidCredential:
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: e.Message})
	case domain.KindMissingField:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: e.Message, Details: e.Details})
	case domain.KindUpstreamRead, domain.KindUpstreamWrite:
		status := e.Status
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		h.logger.Error("github call failed", "kind", e.Kind.String(), "status", e.Status, "error", err)
		details := e.Details
		if details == nil {
			details = e.Message
		}
		writeJSON(w, status, errorResponse{Error: "Failed to post comment", Details: details})
	default:
		h.logger.Error("comment request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request) (requestBody, error) {
	var payload requestBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return requestBody{}, err
	}
	return payload, nil
}

// buildRequest extracts the credential and target. Body fields win over path
// values; the Authorization header wins over the legacy header and body token.
func buildRequest(r *http.Request, payload requestBody) (domain.PostRequest, error) {
	owner := firstNonEmpty(payload.Owner, r.PathValue("owner"))
	repo := firstNonEmpty(payload.Repo, r.PathValue("repo"))
	rawNumber := firstNonEmpty(payload.IssueNumber.String(), r.PathValue("issueNumber"))

	number := 0
	if rawNumber != "" {
		n, err := strconv.Atoi(strings.TrimSpace(rawNumber))
		if err != nil {
			return domain.PostRequest{}, domain.NewMissingFieldError("issueNumber")
		}
		number = n
	}

	return domain.PostRequest{
		Credential:   extractCredential(r, payload),
		Target:       domain.Target{Owner: owner, Repo: repo, IssueNumber: number},
		Body:         payload.Body,
		Header:       payload.Header,
		MessageID:    payload.MessageID,
		AllowRepeats: payload.AllowRepeats,
	}, nil
}

func extractCredential(r *http.Request, payload requestBody) domain.Credential {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
			return domain.Credential(strings.TrimSpace(token))
		}
	}
	if token := r.Header.Get(temporaryTokenHeader); token != "" {
		return domain.Credential(token)
	}
	return domain.Credential(payload.Token)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // headers already sent
}

// commentJSON mirrors the fields of GitHub's issue comment object.
type commentJSON struct {
	ID        int64     `json:"id"`
	NodeID    string    `json:"node_id,omitempty"`
	HTMLURL   string    `json:"html_url,omitempty"`
	Body      string    `json:"body"`
	User      userJSON  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userJSON struct {
	Login string `json:"login"`
}

func toCommentJSON(c domain.Comment) commentJSON {
	return commentJSON{
		ID:        c.ID,
		NodeID:    c.NodeID,
		HTMLURL:   c.HTMLURL,
		Body:      c.Body,
		User:      userJSON{Login: c.Author},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
