package app

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nathantilsley/comment-proxy/internal/comment/domain"
	"github.com/nathantilsley/comment-proxy/internal/comment/ports"
)

// integrationDeniedPrefix is the message GitHub returns when an installation
// or Actions token calls a user-scoped endpoint.
const integrationDeniedPrefix = "Resource not accessible by integration"

// TokenValidator classifies caller credentials.
//
// Classification is a heuristic: a personal token can read /user, an Actions
// token is refused with a specific 403, and anything else is rejected. It may
// misclassify tokens with unusual scopes.
type TokenValidator struct {
	inspector ports.TokenInspectorPort
	trusted   domain.Credential
	logger    *slog.Logger
}

// NewTokenValidator creates a validator. trusted is the server-held secret
// accepted without a remote check; an empty value disables the short-circuit.
func NewTokenValidator(inspector ports.TokenInspectorPort, trusted domain.Credential, logger *slog.Logger) *TokenValidator {
	return &TokenValidator{inspector: inspector, trusted: trusted, logger: logger}
}

// Validate classifies cred. It issues at most one outbound call and never retries.
func (v *TokenValidator) Validate(ctx context.Context, cred domain.Credential) domain.Validation {
	if cred == "" {
		v.logger.Debug("token is missing")
		return domain.Validation{Kind: domain.TokenInvalid}
	}

	if v.trusted != "" && subtle.ConstantTimeCompare([]byte(cred), []byte(v.trusted)) == 1 {
		v.logger.Debug("token matches trusted server token")
		return domain.Validation{Valid: true, Kind: domain.TokenTrusted}
	}

	login, err := v.inspector.CurrentUser(ctx, cred)
	if err == nil {
		v.logger.Debug("token validated as personal access token", "login", login, "token", cred.Redacted())
		return domain.Validation{Valid: true, Kind: domain.TokenPersonal}
	}

	kind := classifyInspectionError(err)
	if kind == domain.TokenAutomation {
		v.logger.Debug("token validated as automation token", "token", cred.Redacted())
		return domain.Validation{Valid: true, Kind: kind}
	}

	v.logger.Info("token validation failed", "token", cred.Redacted(), "error", err)
	return domain.Validation{Kind: domain.TokenInvalid}
}

// classifyInspectionError maps a failed /user read to a token kind. Only a
// 403 "not accessible by integration" identifies an automation token.
func classifyInspectionError(err error) domain.TokenKind {
	e, ok := domain.AsError(err)
	if !ok {
		return domain.TokenInvalid
	}
	if e.Status == http.StatusForbidden && strings.HasPrefix(e.Message, integrationDeniedPrefix) {
		return domain.TokenAutomation
	}
	return domain.TokenInvalid
}
