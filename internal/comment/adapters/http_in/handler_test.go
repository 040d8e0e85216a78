package httpin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type recordingUseCase struct {
	calls  int
	got    domain.PostRequest
	result domain.UpsertResult
	err    error
}

func (m *recordingUseCase) PostComment(_ context.Context, req domain.PostRequest) (domain.UpsertResult, error) {
	m.calls++
	m.got = req
	return m.result, m.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestHandler(uc *recordingUseCase) *Handler {
	return NewHandler(uc, slog.New(slog.NewTextHandler(
		&discardWriter{},
		&slog.HandlerOptions{Level: slog.LevelError},
	)))
}

// newMux registers the handler the way the server does, so path values resolve.
func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/comment", h)
	mux.Handle("/repos/{owner}/{repo}/issues/{issueNumber}/comments", h)
	return mux
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	newMux(h).ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rr.Body.String(), err)
	}
	return body
}

func assertCORS(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Method and CORS handling
// ---------------------------------------------------------------------------

func TestHandler_NonPostMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			uc := &recordingUseCase{}
			rr := serve(newTestHandler(uc), httptest.NewRequest(method, "/api/comment", nil))

			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("got %d, want 405", rr.Code)
			}
			if decodeError(t, rr).Error != "Method not allowed" {
				t.Errorf("unexpected body %q", rr.Body.String())
			}
			if uc.calls != 0 {
				t.Error("use case must not run for non-POST requests")
			}
			assertCORS(t, rr)
		})
	}
}

func TestHandler_Preflight(t *testing.T) {
	uc := &recordingUseCase{}
	rr := serve(newTestHandler(uc), httptest.NewRequest(http.MethodOptions, "/api/comment", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}
	if uc.calls != 0 {
		t.Error("use case must not run for preflight requests")
	}
	assertCORS(t, rr)
}

// ---------------------------------------------------------------------------
// Credential extraction
// ---------------------------------------------------------------------------

func TestHandler_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		body    string
		want    domain.Credential
	}{
		{
			name:    "authorization header wins",
			headers: map[string]string{"Authorization": "Bearer from-header", "temporary-github-token": "legacy"},
			body:    `{"token":"from-body"}`,
			want:    "from-header",
		},
		{
			name:    "temporary token header",
			headers: map[string]string{"temporary-github-token": "legacy"},
			body:    `{"token":"from-body"}`,
			want:    "legacy",
		},
		{
			name:    "non-bearer authorization falls through",
			headers: map[string]string{"Authorization": "Basic abc"},
			body:    `{"token":"from-body"}`,
			want:    "from-body",
		},
		{
			name: "body token",
			body: `{"token":"from-body"}`,
			want: "from-body",
		},
		{
			name: "none",
			body: `{}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &recordingUseCase{}
			req := httptest.NewRequest(http.MethodPost, "/api/comment", strings.NewReader(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			serve(newTestHandler(uc), req)

			if uc.got.Credential != tt.want {
				t.Errorf("credential = %q, want %q", uc.got.Credential, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Payload handling
// ---------------------------------------------------------------------------

func TestHandler_ParsesPayload(t *testing.T) {
	uc := &recordingUseCase{result: domain.UpsertResult{Comment: domain.Comment{ID: 9, Body: "hi", Author: "bot"}}}
	body := `{"owner":"a","repo":"b","issueNumber":"5","body":"hi","allowRepeats":false,"header":"H","messageId":"m"}`
	req := httptest.NewRequest(http.MethodPost, "/api/comment", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")

	rr := serve(newTestHandler(uc), req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	got := uc.got
	if got.Target != (domain.Target{Owner: "a", Repo: "b", IssueNumber: 5}) {
		t.Errorf("target = %+v", got.Target)
	}
	if got.Body != "hi" || got.Header != "H" || got.MessageID != "m" {
		t.Errorf("unexpected request: %+v", got)
	}
	if got.AllowRepeats == nil || *got.AllowRepeats {
		t.Errorf("allowRepeats = %v, want explicit false", got.AllowRepeats)
	}

	var comment map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &comment); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if comment["id"] != float64(9) || comment["body"] != "hi" {
		t.Errorf("unexpected response %v", comment)
	}
	if user, _ := comment["user"].(map[string]any); user["login"] != "bot" {
		t.Errorf("unexpected user %v", comment["user"])
	}
}

func TestHandler_NumericIssueNumber(t *testing.T) {
	uc := &recordingUseCase{}
	req := httptest.NewRequest(http.MethodPost, "/api/comment",
		strings.NewReader(`{"owner":"a","repo":"b","issueNumber":12,"body":"x","token":"t"}`))
	serve(newTestHandler(uc), req)

	if uc.got.Target.IssueNumber != 12 {
		t.Errorf("IssueNumber = %d, want 12", uc.got.Target.IssueNumber)
	}
}

func TestHandler_LegacyPathParams(t *testing.T) {
	uc := &recordingUseCase{}
	req := httptest.NewRequest(http.MethodPost, "/repos/octo/proj/issues/77/comments", strings.NewReader(`{"body":"x"}`))
	req.Header.Set("temporary-github-token", "ghs_tmp")

	rr := serve(newTestHandler(uc), req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if uc.got.Target != (domain.Target{Owner: "octo", Repo: "proj", IssueNumber: 77}) {
		t.Errorf("target = %+v", uc.got.Target)
	}
	if uc.got.Credential != "ghs_tmp" {
		t.Errorf("credential = %q", uc.got.Credential)
	}
}

func TestHandler_MalformedJSON(t *testing.T) {
	uc := &recordingUseCase{}
	rr := serve(newTestHandler(uc), httptest.NewRequest(http.MethodPost, "/api/comment", strings.NewReader(`{"owner":`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if uc.calls != 0 {
		t.Error("use case must not run for malformed bodies")
	}
}

func TestHandler_InvalidIssueNumber(t *testing.T) {
	uc := &recordingUseCase{}
	rr := serve(newTestHandler(uc), httptest.NewRequest(http.MethodPost, "/repos/a/b/issues/abc/comments",
		strings.NewReader(`{"body":"x","token":"t"}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if uc.calls != 0 {
		t.Error("use case must not run for an invalid issue number")
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails bool
	}{
		{
			name:       "missing credential",
			err:        domain.NewError(domain.KindMissingCredential, "Invalid or missing GitHub token"),
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid or missing GitHub token",
		},
		{
			name:       "invalid credential",
			err:        domain.NewError(domain.KindInvalidCredential, "Invalid or missing GitHub token"),
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid or missing GitHub token",
		},
		{
			name:        "missing field",
			err:         domain.NewMissingFieldError("body"),
			wantStatus:  http.StatusBadRequest,
			wantError:   "Missing required fields: token, owner, repo, issueNumber, body",
			wantDetails: true,
		},
		{
			name: "upstream write mirrors status",
			err: domain.NewUpstreamError(domain.KindUpstreamWrite, http.StatusNotFound, "Not Found",
				map[string]any{"message": "Not Found"}, nil),
			wantStatus:  http.StatusNotFound,
			wantError:   "Failed to post comment",
			wantDetails: true,
		},
		{
			name:        "upstream without status",
			err:         domain.NewUpstreamError(domain.KindUpstreamRead, 0, "listing comments", nil, nil),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Failed to post comment",
			wantDetails: true,
		},
		{
			name:       "unclassified",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &recordingUseCase{err: tt.err}
			req := httptest.NewRequest(http.MethodPost, "/api/comment", strings.NewReader(`{"token":"t"}`))
			rr := serve(newTestHandler(uc), req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d", rr.Code, tt.wantStatus)
			}
			body := decodeError(t, rr)
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if (body.Details != nil) != tt.wantDetails {
				t.Errorf("details = %v, wantDetails %v", body.Details, tt.wantDetails)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
			}
		})
	}
}
