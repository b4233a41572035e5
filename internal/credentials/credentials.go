package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNoCredentials means the credentials file is missing or unreadable.
	ErrNoCredentials = errors.New("no credentials file")
	// ErrInvalidCredentials means the file exists but does not contain a
	// usable OAuth access token.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Plan is the subscription tier named in the credentials file.
type Plan int

const (
	PlanUnknown Plan = iota
	PlanPro
	PlanMax
)

func (p Plan) String() string {
	switch p {
	case PlanPro:
		return "Pro"
	case PlanMax:
		return "Max"
	}
	return "—"
}

// MarshalText makes Plan readable in JSON output.
func (p Plan) MarshalText() ([]byte, error) {
	switch p {
	case PlanPro:
		return []byte("pro"), nil
	case PlanMax:
		return []byte("max"), nil
	}
	return []byte("unknown"), nil
}

// Credentials holds the OAuth token Claude Code keeps on disk.
type Credentials struct {
	AccessToken string
	Plan        Plan
	SourcePath  string
}

// credentialsFile mirrors ~/.claude/.credentials.json.
type credentialsFile struct {
	ClaudeAiOauth *struct {
		AccessToken      string `json:"accessToken"`
		SubscriptionType string `json:"subscriptionType"`
	} `json:"claudeAiOauth"`
}

// DefaultPath returns the standard Claude Code credentials location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", ".credentials.json")
	}
	return filepath.Join(home, ".claude", ".credentials.json")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

// ResolvePath maps an empty path to the default location and expands ~.
func ResolvePath(path string) string {
	if path == "" {
		return DefaultPath()
	}
	return ExpandPath(path)
}

// Parse extracts credentials from the raw file contents.
func Parse(raw []byte) (Credentials, error) {
	var file credentialsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if file.ClaudeAiOauth == nil {
		return Credentials{}, fmt.Errorf("%w: missing claudeAiOauth object", ErrInvalidCredentials)
	}
	if file.ClaudeAiOauth.AccessToken == "" {
		return Credentials{}, fmt.Errorf("%w: empty access token", ErrInvalidCredentials)
	}
	return Credentials{
		AccessToken: file.ClaudeAiOauth.AccessToken,
		Plan:        planFromSubscription(file.ClaudeAiOauth.SubscriptionType),
	}, nil
}

// planFromSubscription infers the tier by substring match; an absent or
// unrecognized subscription type is not an error.
func planFromSubscription(sub string) Plan {
	sub = strings.ToLower(sub)
	switch {
	case strings.Contains(sub, "max"):
		return PlanMax
	case strings.Contains(sub, "pro"):
		return PlanPro
	}
	return PlanUnknown
}

// Store caches the most recently loaded credentials. The token can be
// invalidated without touching the file, forcing the next Load to pick
// up tokens refreshed by Claude Code out-of-band.
type Store struct {
	mu    sync.Mutex
	creds Credentials
}

// Load reads and parses the credentials file at path (empty means the
// default location) and caches the result on success.
func (s *Store) Load(path string) (Credentials, error) {
	path = ResolvePath(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	creds, err := Parse(raw)
	if err != nil {
		return Credentials{}, err
	}
	creds.SourcePath = path

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return creds, nil
}

// Token returns the cached access token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken, s.creds.AccessToken != ""
}

// Current returns the cached credentials.
func (s *Store) Current() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Invalidate drops the cached token. The file is left alone.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.creds.AccessToken = ""
	s.mu.Unlock()
}
