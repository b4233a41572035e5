package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jcurbo/claude-status/internal/api"
	"github.com/jcurbo/claude-status/internal/credentials"
	"github.com/jcurbo/claude-status/internal/monitor"
	"github.com/jcurbo/claude-status/internal/severity"
	"github.com/jcurbo/claude-status/internal/transcript"
)

// maxAuthRetries bounds credential reloads per poll tick, so a tick is
// never more than three sequential round-trips.
const maxAuthRetries = 2

// Config holds the settings that drive polling. All fields can change
// at runtime through the setters on Engine.
type Config struct {
	UpdateInterval  int // seconds
	YellowThreshold int
	OrangeThreshold int
	RedThreshold    int
	CredentialsPath string // empty means ~/.claude/.credentials.json
	TranscriptRoot  string // empty means ~/.claude/projects
}

func DefaultConfig() Config {
	return Config{
		UpdateInterval:  30,
		YellowThreshold: 25,
		OrangeThreshold: 50,
		RedThreshold:    75,
	}
}

// usageFetcher is implemented by api.Client and by test fakes.
type usageFetcher interface {
	FetchUsage(ctx context.Context, token string) (*api.UsageData, error)
}

// credentialStore is implemented by credentials.Store.
type credentialStore interface {
	Load(path string) (credentials.Credentials, error)
	Token() (string, bool)
	Current() credentials.Credentials
	Invalidate()
}

// changeMonitor is implemented by monitor.Monitor.
type changeMonitor interface {
	Start(path string) error
	Stop()
	ConsumeChanged() bool
}

// Engine orchestrates one poll tick: credential load, the usage fetch
// with its bounded auth retry, and the independent transcript scan. It
// owns the last snapshot; the display layer only reads what Poll
// returns.
type Engine struct {
	mu   sync.Mutex // guards cfg and snap
	cfg  Config
	snap Snapshot

	store   credentialStore
	fetcher usageFetcher
	monitor changeMonitor
	scan    func(root string) transcript.ContextUsage
	now     func() time.Time

	// busy enforces at most one poll in flight; a tick that lands while
	// another is running gets the previous snapshot back untouched.
	busy atomic.Bool

	// authRetries spans the reload loop within a tick. Only touched while
	// busy is held, so no lock is needed.
	authRetries int
}

func New(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   &credentials.Store{},
		fetcher: api.NewClient(),
		monitor: monitor.New(),
		scan:    transcript.ScanContext,
		now:     time.Now,
	}
}

// StartMonitor begins watching the configured credentials file.
func (e *Engine) StartMonitor() error {
	return e.monitor.Start(e.credentialsPath())
}

// StopMonitor cancels the credentials watch. Call before teardown.
func (e *Engine) StopMonitor() {
	e.monitor.Stop()
}

// Poll runs one tick and returns the resulting snapshot. Fetch failures
// that are not credential problems leave the last good windows in place;
// the transcript scan runs regardless of network state.
func (e *Engine) Poll(ctx context.Context) Snapshot {
	if !e.busy.CompareAndSwap(false, true) {
		return e.LastSnapshot()
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	cfg := e.cfg
	snap := e.snap
	e.mu.Unlock()

	// A credentials file change clears any error state and forces a
	// reload on this tick instead of waiting out a failed token.
	if e.monitor.ConsumeChanged() {
		snap.CredentialsError = false
		e.store.Invalidate()
	}

	e.fetchUsage(ctx, cfg, &snap)

	root := cfg.TranscriptRoot
	if root == "" {
		root = transcript.DefaultRoot()
	}
	snap.Context = e.scan(root)

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()
	return snap
}

// fetchUsage ensures a token is loaded, calls the API, and drives the
// auth-retry loop: on 401 the credentials are invalidated and reloaded
// from disk at most maxAuthRetries times per tick before giving up into
// the credentials-error state.
func (e *Engine) fetchUsage(ctx context.Context, cfg Config, snap *Snapshot) {
	token, ok := e.store.Token()
	if !ok {
		creds, err := e.store.Load(cfg.CredentialsPath)
		if err != nil {
			snap.CredentialsError = true
			return
		}
		token = creds.AccessToken
		snap.CredentialsError = false
	}
	snap.Plan = e.store.Current().Plan

	for {
		data, err := e.fetcher.FetchUsage(ctx, token)
		if err == nil {
			e.authRetries = 0
			snap.CredentialsError = false
			snap.FiveHour = newWindow(data.FiveHour)
			snap.SevenDay = newWindow(data.SevenDay)
			snap.Plan = e.store.Current().Plan
			snap.LastSuccess = e.now()
			return
		}
		if !errors.Is(err, api.ErrUnauthorized) {
			// Transport or parse trouble: keep the stale windows, let the
			// next scheduled tick try again.
			return
		}
		if e.authRetries >= maxAuthRetries {
			e.authRetries = 0
			snap.CredentialsError = true
			return
		}
		e.authRetries++
		e.store.Invalidate()
		creds, err := e.store.Load(cfg.CredentialsPath)
		if err != nil {
			snap.CredentialsError = true
			return
		}
		token = creds.AccessToken
	}
}

// LastSnapshot returns the result of the most recent poll.
func (e *Engine) LastSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Interval returns the poll interval as a duration.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.cfg.UpdateInterval) * time.Second
}

// SetUpdateInterval changes the poll interval, in seconds.
func (e *Engine) SetUpdateInterval(seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds > 0 {
		e.cfg.UpdateInterval = seconds
	}
}

// SetThresholds replaces the three severity cutoffs.
func (e *Engine) SetThresholds(yellow, orange, red int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.YellowThreshold = yellow
	e.cfg.OrangeThreshold = orange
	e.cfg.RedThreshold = red
}

// SetCredentialsPath points the engine at a different credentials file,
// drops the cached token, and moves the file watch over.
func (e *Engine) SetCredentialsPath(path string) error {
	e.mu.Lock()
	e.cfg.CredentialsPath = path
	e.mu.Unlock()
	e.store.Invalidate()
	return e.monitor.Start(e.credentialsPath())
}

// Severity classifies a percentage against the current thresholds. The
// display layer uses it for bars and labels.
func (e *Engine) Severity(pct float64) severity.Severity {
	e.mu.Lock()
	y, o, r := e.cfg.YellowThreshold, e.cfg.OrangeThreshold, e.cfg.RedThreshold
	e.mu.Unlock()
	return severity.Classify(pct, y, o, r)
}

func (e *Engine) credentialsPath() string {
	e.mu.Lock()
	path := e.cfg.CredentialsPath
	e.mu.Unlock()
	return credentials.ResolvePath(path)
}

func newWindow(w api.WindowData) Window {
	return Window{
		Utilization: w.Utilization,
		ResetsAt:    w.ResetsAt.Time,
		Valid:       true,
	}
}
