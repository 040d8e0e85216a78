package domain

import (
	"errors"
	"testing"
)

func TestPostRequest_Validate(t *testing.T) {
	valid := PostRequest{
		Credential: "ghs_token",
		Target:     Target{Owner: "a", Repo: "b", IssueNumber: 5},
		Body:       "hi",
	}

	tests := []struct {
		name     string
		mutate   func(r *PostRequest)
		wantKind ErrorKind
		wantOK   bool
	}{
		{name: "valid", mutate: func(*PostRequest) {}, wantOK: true},
		{name: "missing credential", mutate: func(r *PostRequest) { r.Credential = "" }, wantKind: KindMissingCredential},
		{name: "missing owner", mutate: func(r *PostRequest) { r.Target.Owner = "" }, wantKind: KindMissingField},
		{name: "missing repo", mutate: func(r *PostRequest) { r.Target.Repo = "" }, wantKind: KindMissingField},
		{name: "zero issue", mutate: func(r *PostRequest) { r.Target.IssueNumber = 0 }, wantKind: KindMissingField},
		{name: "negative issue", mutate: func(r *PostRequest) { r.Target.IssueNumber = -3 }, wantKind: KindMissingField},
		{name: "missing body", mutate: func(r *PostRequest) { r.Body = "" }, wantKind: KindMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(Validate()) = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestCredential_Redacted(t *testing.T) {
	tests := map[Credential]string{
		"":                "",
		"abc":             "…",
		"ghp_secretvalue": "ghp_…",
	}
	for in, want := range tests {
		if got := in.Redacted(); got != want {
			t.Errorf("Credential(%q).Redacted() = %q, want %q", in, got, want)
		}
	}
}

func TestError_UnwrapAndKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewUpstreamError(KindUpstreamRead, 502, "listing comments", nil, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if KindOf(err) != KindUpstreamRead {
		t.Errorf("KindOf() = %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should be KindUnknown")
	}

	write := err.WithKind(KindUpstreamWrite)
	if write.Kind != KindUpstreamWrite || err.Kind != KindUpstreamRead {
		t.Error("WithKind should copy, not mutate")
	}
}

func TestTarget_String(t *testing.T) {
	if got := (Target{Owner: "a", Repo: "b", IssueNumber: 5}).String(); got != "a/b#5" {
		t.Errorf("String() = %q", got)
	}
}
