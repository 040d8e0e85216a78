package domain

// Credential is an opaque GitHub token presented by a caller. It is never
// persisted and must only be logged through Redacted.
type Credential string

// Redacted returns the first four characters of the credential followed by an
// ellipsis, or an empty string when no credential was presented.
func (c Credential) Redacted() string {
	switch {
	case c == "":
		return ""
	case len(c) <= 4:
		return "…"
	default:
		return string(c[:4]) + "…"
	}
}

// TokenKind classifies a credential.
type TokenKind int

const (
	TokenInvalid    TokenKind = iota // Missing, unknown or rejected by GitHub
	TokenTrusted                     // Equal to the server-held secret
	TokenPersonal                    // Personal access token (user endpoints accessible)
	TokenAutomation                  // Short-lived Actions/installation token
)

// String returns the string representation of the TokenKind.
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "unknown"
	}
	return tokenKindNames[k]
}

var tokenKindNames = [...]string{
	TokenInvalid:    "invalid",
	TokenTrusted:    "trusted",
	TokenPersonal:   "personal-access-token",
	TokenAutomation: "automation-token",
}

// Validation is the result of validating a credential.
type Validation struct {
	Valid bool
	Kind  TokenKind
}
