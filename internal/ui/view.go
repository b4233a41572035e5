package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jcurbo/claude-status/internal/engine"
)

const barWidth = 8

// Panel chrome colors, matched to the original xfce4 plugin markup.
var (
	planStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a574")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d75f5f")).Bold(true)
)

func (m Model) View() string {
	if !m.polled {
		return mutedStyle.Render("claude-status: loading…") + "\n"
	}
	if m.snap.CredentialsError {
		var b strings.Builder
		b.WriteString(errStyle.Render("No creds") + "\n")
		b.WriteString(labelStyle.Render("Run: ") + planStyle.Render("claude login") + "\n")
		b.WriteString(mutedStyle.Render("q quit · r retry") + "\n")
		return b.String()
	}

	snap := m.snap
	now := m.now()

	var b strings.Builder
	b.WriteString(planStyle.Render("Claude "+snap.PlanName()) + "\n")
	b.WriteString(m.windowLine("5h ", snap.FiveHour, formatShortReset, now))
	b.WriteString(m.windowLine("7d ", snap.SevenDay, formatLongReset, now))
	b.WriteString(m.contextLine(snap))

	if snap.Context.Model != "" || !snap.LastSuccess.IsZero() {
		var parts []string
		if snap.Context.Model != "" {
			parts = append(parts, snap.Context.Model)
		}
		if !snap.LastSuccess.IsZero() {
			parts = append(parts, "updated "+snap.LastSuccess.Local().Format("3:04:05 PM"))
		}
		b.WriteString(mutedStyle.Render(strings.Join(parts, " · ")) + "\n")
	}
	b.WriteString(mutedStyle.Render("q quit · r refresh") + "\n")
	return b.String()
}

// windowLine renders one rate-limit window: bar, percentage, countdown.
func (m Model) windowLine(label string, w engine.Window, countdown func(time.Duration) string, now time.Time) string {
	if !w.Valid {
		return labelStyle.Render(label) + mutedStyle.Render(" —") + "\n"
	}
	color := lipgloss.Color(m.eng.Severity(w.Utilization).Color())
	style := lipgloss.NewStyle().Foreground(color)

	line := labelStyle.Render(label) + " " +
		style.Render(Bar(w.Utilization, barWidth)) +
		style.Render(fmt.Sprintf(" %3.0f%%", w.Utilization))
	if !w.ResetsAt.IsZero() {
		line += " " + mutedStyle.Render(countdown(w.ResetsAt.Sub(now)))
	}
	return line + "\n"
}

func (m Model) contextLine(snap engine.Snapshot) string {
	pct := snap.Context.Percent()
	color := lipgloss.Color(m.eng.Severity(pct).Color())
	style := lipgloss.NewStyle().Foreground(color)

	line := labelStyle.Render("Ctx") + " " +
		style.Render(Bar(pct, barWidth)) +
		style.Render(fmt.Sprintf(" %3.0f%%", pct))
	if snap.Context.Tokens > 0 {
		line += " " + mutedStyle.Render(fmt.Sprintf("%s / %s tokens",
			FormatNumber(snap.Context.Tokens), FormatNumber(snap.Context.WindowSize)))
	}
	return line + "\n"
}

// Bar renders a fixed-width block bar for a 0-100 percentage.
func Bar(pct float64, width int) string {
	filled := int(pct/100*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatShortReset renders a 5-hour window countdown as "(2h 13m)".
func formatShortReset(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("(%dh %dm)", h, mins)
	}
	return fmt.Sprintf("(%dm)", mins)
}

// formatLongReset renders a 7-day window countdown as "(3d 4h)".
func formatLongReset(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("(%dd %dh)", days, h)
	}
	return fmt.Sprintf("(%dh)", h)
}

// FormatNumber formats an integer with comma separators (e.g. 1,234,567).
func FormatNumber(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		if negative {
			return "-" + s
		}
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	out := string(result)
	if negative {
		return "-" + out
	}
	return out
}
