package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jcurbo/claude-status/internal/config"
	"github.com/jcurbo/claude-status/internal/engine"
	"github.com/jcurbo/claude-status/internal/ui"
)

// version is set by goreleaser via ldflags.
var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", config.DefaultPath(), "config file path")
		credsPath   = flag.String("creds", "", "credentials file path (default ~/.claude/.credentials.json)")
		dataDir     = flag.String("data-dir", "", "Claude Code data directory (default ~/.claude/projects)")
		interval    = flag.Int("interval", 0, "override poll interval in seconds")
		noTUI       = flag.Bool("no-tui", false, "poll once and print the snapshot as JSON")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("claude-status", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI overrides
	if *credsPath != "" {
		cfg.General.CredentialsFile = *credsPath
	}
	if *dataDir != "" {
		cfg.General.DataDir = *dataDir
	}
	if *interval > 0 {
		cfg.General.Interval = *interval
	}

	eng := engine.New(engine.Config{
		UpdateInterval:  cfg.General.Interval,
		YellowThreshold: cfg.Thresholds.Yellow,
		OrangeThreshold: cfg.Thresholds.Orange,
		RedThreshold:    cfg.Thresholds.Red,
		CredentialsPath: cfg.General.CredentialsFile,
		TranscriptRoot:  cfg.General.DataDir,
	})

	if *noTUI {
		snap := eng.Poll(context.Background())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The watcher is a refresh hint, not a requirement; polling still
	// picks up new tokens without it.
	if err := eng.StartMonitor(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: credentials watch unavailable: %v\n", err)
	}
	defer eng.StopMonitor()

	p := tea.NewProgram(ui.New(eng))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
