package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCreds(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".credentials.json")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStoreLoad(t *testing.T) {
	tests := []struct {
		name      string
		contents  string
		wantToken string
		wantPlan  Plan
		wantErr   error
	}{
		{
			name:      "max plan",
			contents:  `{"claudeAiOauth":{"accessToken":"abc","subscriptionType":"max_5x"}}`,
			wantToken: "abc",
			wantPlan:  PlanMax,
		},
		{
			name:      "pro plan case insensitive",
			contents:  `{"claudeAiOauth":{"accessToken":"tok","subscriptionType":"Claude Pro"}}`,
			wantToken: "tok",
			wantPlan:  PlanPro,
		},
		{
			name:      "absent subscription type is not an error",
			contents:  `{"claudeAiOauth":{"accessToken":"tok"}}`,
			wantToken: "tok",
			wantPlan:  PlanUnknown,
		},
		{
			name:      "unrecognized subscription type",
			contents:  `{"claudeAiOauth":{"accessToken":"tok","subscriptionType":"team"}}`,
			wantToken: "tok",
			wantPlan:  PlanUnknown,
		},
		{
			name:     "missing oauth object",
			contents: `{"other":"data"}`,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "empty access token",
			contents: `{"claudeAiOauth":{"accessToken":""}}`,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "invalid JSON",
			contents: `{invalid}`,
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCreds(t, tt.contents)
			var s Store
			creds, err := s.Load(path)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				if _, ok := s.Token(); ok {
					t.Error("failed load must not cache a token")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.AccessToken != tt.wantToken {
				t.Errorf("token = %q, want %q", creds.AccessToken, tt.wantToken)
			}
			if creds.Plan != tt.wantPlan {
				t.Errorf("plan = %v, want %v", creds.Plan, tt.wantPlan)
			}
			if creds.SourcePath != path {
				t.Errorf("source path = %q, want %q", creds.SourcePath, path)
			}
		})
	}
}

func TestStoreLoad_MissingFile(t *testing.T) {
	var s Store
	_, err := s.Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("got %v, want ErrNoCredentials", err)
	}
}

func TestStoreInvalidate(t *testing.T) {
	path := writeCreds(t, `{"claudeAiOauth":{"accessToken":"abc","subscriptionType":"max"}}`)
	var s Store
	if _, err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Token(); !ok {
		t.Fatal("expected cached token after load")
	}

	s.Invalidate()
	if _, ok := s.Token(); ok {
		t.Error("token should be dropped after Invalidate")
	}

	// The file is untouched; a reload recovers the token.
	if _, err := s.Load(path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if tok, ok := s.Token(); !ok || tok != "abc" {
		t.Errorf("reloaded token = %q, want abc", tok)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x/y.json"); got != filepath.Join(home, "x", "y.json") {
		t.Errorf("ExpandPath(~/x/y.json) = %q", got)
	}
	if got := ExpandPath("/abs/path.json"); got != "/abs/path.json" {
		t.Errorf("absolute path changed: %q", got)
	}
}
