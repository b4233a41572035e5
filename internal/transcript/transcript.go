package transcript

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// ContextUsage is the token footprint of the most recent assistant turn
// in the most recently active session.
type ContextUsage struct {
	Tokens     int64  `json:"tokens"`
	WindowSize int64  `json:"window_size"`
	Model      string `json:"model,omitempty"`
}

// Percent returns how much of the context window is used, clamped to
// 100 so a session that overflows its nominal window still displays.
func (c ContextUsage) Percent() float64 {
	if c.WindowSize <= 0 {
		return 0
	}
	pct := float64(c.Tokens) / float64(c.WindowSize) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// DefaultRoot returns the standard Claude Code transcript location.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// rawRecord maps the JSONL structure we care about.
type rawRecord struct {
	Type    string `json:"type"`
	Message *struct {
		Model string `json:"model"`
		Usage *struct {
			InputTokens              int64 `json:"input_tokens"`
			CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
			CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// LatestTranscript returns the .jsonl file with the greatest modification
// time across the per-project directories under root. Ties go to the
// lexicographically smaller path so the pick is deterministic.
func LatestTranscript(root string) (string, bool) {
	projects, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}

	var latestPath string
	var latestMod int64
	for _, project := range projects {
		if !project.IsDir() {
			continue
		}
		dir := filepath.Join(root, project.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".jsonl" {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			path := filepath.Join(dir, f.Name())
			mod := info.ModTime().UnixNano()
			if latestPath == "" || mod > latestMod || (mod == latestMod && path < latestPath) {
				latestPath = path
				latestMod = mod
			}
		}
	}
	return latestPath, latestPath != ""
}

// ScanContext reads the latest transcript under root and returns the
// context usage of its last assistant turn. Missing directories or
// transcripts are a valid "no active session" result, never an error.
func ScanContext(root string) ContextUsage {
	path, ok := LatestTranscript(root)
	if !ok {
		return ContextUsage{WindowSize: DefaultWindow}
	}
	f, err := os.Open(path)
	if err != nil {
		return ContextUsage{WindowSize: DefaultWindow}
	}
	defer f.Close()
	return ScanReader(f)
}

// ScanReader streams JSONL records and keeps the token counts and model
// of the last assistant record seen. Values are overwritten, never
// accumulated: each assistant turn reports the full context it carried.
// Lines that fail to parse are skipped.
func ScanReader(r io.Reader) ContextUsage {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max line

	var tokens int64
	var model string
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Type != "assistant" || rec.Message == nil {
			continue
		}

		if rec.Message.Model != "" {
			model = rec.Message.Model
		}
		if u := rec.Message.Usage; u != nil {
			tokens = u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
		}
	}

	return ContextUsage{
		Tokens:     tokens,
		WindowSize: WindowFor(model),
		Model:      model,
	}
}
