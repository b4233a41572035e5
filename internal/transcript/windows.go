package transcript

import "strings"

// DefaultWindow is the context window size assumed when the model is
// unknown or absent. Every current model family ships a 200K window;
// larger long-context variants exist on some tiers, but overstating
// headroom is worse than understating it, so the table stays
// conservative.
const DefaultWindow = 200_000

// Context window sizes by model family prefix.
var contextWindows = map[string]int64{
	"claude-opus-4":     200_000,
	"claude-sonnet-4":   200_000,
	"claude-haiku-4":    200_000,
	"claude-3-7-sonnet": 200_000,
	"claude-3-5-haiku":  200_000,
}

// WindowFor returns the context window size for a model ID, matched by
// family prefix. Unknown models fall back to DefaultWindow.
func WindowFor(model string) int64 {
	for prefix, size := range contextWindows {
		if strings.HasPrefix(model, prefix) {
			return size
		}
	}
	return DefaultWindow
}
