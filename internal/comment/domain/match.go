package domain

import (
	"fmt"
	"strings"
)

// MatchPolicy selects how an existing comment is located among the comments
// of a target.
type MatchPolicy int

const (
	MatchNone   MatchPolicy = iota // Always create
	MatchHeader                    // Body contains a header string
	MatchAuthor                    // Author login equals the bot identity
	MatchMarker                    // Body contains a message-id marker
)

// String returns the string representation of the MatchPolicy.
func (p MatchPolicy) String() string {
	if p < 0 || int(p) >= len(matchPolicyNames) {
		return "unknown"
	}
	return matchPolicyNames[p]
}

var matchPolicyNames = [...]string{
	MatchNone:   "none",
	MatchHeader: "header",
	MatchAuthor: "author",
	MatchMarker: "marker",
}

// Match is a policy together with the value it matches against.
type Match struct {
	Policy MatchPolicy
	Value  string
}

// Matches reports whether c satisfies the match predicate. MatchNone never
// matches.
func (m Match) Matches(c Comment) bool {
	switch m.Policy {
	case MatchHeader:
		return m.Value != "" && strings.Contains(c.Body, m.Value)
	case MatchAuthor:
		return m.Value != "" && strings.EqualFold(c.Author, m.Value)
	case MatchMarker:
		return m.Value != "" && strings.Contains(c.Body, Marker(m.Value))
	default:
		return false
	}
}

// Body returns the body to persist for this match. Marker matches prefix the
// body with the marker so later lookups find the comment again.
func (m Match) Body(body string) string {
	if m.Policy == MatchMarker {
		return WithMarker(m.Value, body)
	}
	return body
}

// FindFirst returns the first comment in comments satisfying m.
func (m Match) FindFirst(comments []Comment) (Comment, bool) {
	if m.Policy == MatchNone {
		return Comment{}, false
	}
	for _, c := range comments {
		if m.Matches(c) {
			return c, true
		}
	}
	return Comment{}, false
}

// Marker returns the hidden HTML marker identifying a logical message.
// Example: "<!-- message-id: build-report -->"
func Marker(messageID string) string {
	return fmt.Sprintf("<!-- message-id: %s -->", messageID)
}

// WithMarker prefixes body with the marker for messageID on its own line. A
// body already starting with the marker is returned unchanged.
func WithMarker(messageID, body string) string {
	marker := Marker(messageID)
	if strings.HasPrefix(body, marker) {
		return body
	}
	return marker + "\n" + body
}

// ResolveMatch selects the match policy for a request:
//   - a message id always selects marker matching
//   - allowRepeats=false with a header selects header matching
//   - allowRepeats=false without a header falls back to the bot login, if known
//   - anything else creates a new comment
func ResolveMatch(req PostRequest, botLogin string) Match {
	if req.MessageID != "" {
		return Match{Policy: MatchMarker, Value: req.MessageID}
	}
	if req.AllowRepeats == nil || *req.AllowRepeats {
		return Match{Policy: MatchNone}
	}
	if req.Header != "" {
		return Match{Policy: MatchHeader, Value: req.Header}
	}
	if botLogin != "" {
		return Match{Policy: MatchAuthor, Value: botLogin}
	}
	return Match{Policy: MatchNone}
}
