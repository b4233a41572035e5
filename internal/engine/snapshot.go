package engine

import (
	"time"

	"github.com/jcurbo/claude-status/internal/credentials"
	"github.com/jcurbo/claude-status/internal/transcript"
)

// Window is one rate-limit window as last reported by the usage API.
// Valid is false until the first successful fetch.
type Window struct {
	Utilization float64   `json:"utilization"`
	ResetsAt    time.Time `json:"resets_at"`
	Valid       bool      `json:"valid"`
}

// Snapshot is the combined state handed to the display layer after each
// poll. Windows survive failed fetches unchanged (stale but valid);
// context usage is recomputed every tick.
type Snapshot struct {
	CredentialsError bool                    `json:"credentials_error"`
	Plan             credentials.Plan        `json:"plan"`
	FiveHour         Window                  `json:"five_hour"`
	SevenDay         Window                  `json:"seven_day"`
	Context          transcript.ContextUsage `json:"context"`
	LastSuccess      time.Time               `json:"last_success"`
}

// PlanName is the display name of the subscription tier.
func (s Snapshot) PlanName() string {
	return s.Plan.String()
}
