// Package domain holds the types of the comment proxy: targets, comments,
// match policies and the error taxonomy shared by all adapters.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Target identifies the issue or pull request a comment is posted to.
type Target struct {
	Owner       string
	Repo        string
	IssueNumber int
}

// Validate reports the first missing or invalid coordinate.
func (t Target) Validate() error {
	switch {
	case t.Owner == "":
		return NewMissingFieldError("owner")
	case t.Repo == "":
		return NewMissingFieldError("repo")
	case t.IssueNumber <= 0:
		return NewMissingFieldError("issueNumber")
	}
	return nil
}

// String returns the target as owner/repo#number.
func (t Target) String() string {
	return fmt.Sprintf("%s/%s#%d", t.Owner, t.Repo, t.IssueNumber)
}

// Comment is a read-only view of a remote issue comment.
type Comment struct {
	ID        int64
	NodeID    string
	Author    string
	Body      string
	HTMLURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Action records whether an upsert created or updated a comment.
type Action int

const (
	ActionCreated Action = iota
	ActionUpdated
)

// String returns the string representation of the Action.
func (a Action) String() string {
	if a == ActionUpdated {
		return "updated"
	}
	return "created"
}

// UpsertResult is the outcome of an upsert. Comment.Body is the body that was
// actually persisted remotely.
type UpsertResult struct {
	Action  Action
	Comment Comment
}

// PostRequest is everything the proxy needs to post a single comment.
type PostRequest struct {
	Credential   Credential
	Target       Target
	Body         string
	Header       string
	MessageID    string
	AllowRepeats *bool // nil when the caller did not say
}

// Validate checks that the request carries a credential and every required
// payload field.
func (r PostRequest) Validate() error {
	if r.Credential == "" {
		return NewError(KindMissingCredential, "Invalid or missing GitHub token")
	}
	if err := r.Target.Validate(); err != nil {
		return err
	}
	if r.Body == "" {
		return NewMissingFieldError("body")
	}
	return nil
}

// ErrNoIdentity is returned when no posting identity is available for a request.
var ErrNoIdentity = errors.New("no comment posting identity configured")
