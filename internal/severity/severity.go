package severity

// Severity is the tier a utilization percentage falls into, given the
// three configured thresholds.
type Severity int

const (
	Normal Severity = iota
	Warning
	Caution
	Critical
)

// Panel colors, matched to the original xfce4 plugin palette.
var colors = [...]string{
	Normal:   "#5faf5f", // green
	Warning:  "#d7af5f", // yellow
	Caution:  "#d78700", // orange
	Critical: "#d75f5f", // red
}

func (s Severity) String() string {
	switch s {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Caution:
		return "caution"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// Color returns the hex display color for the tier.
func (s Severity) Color() string {
	if s < Normal || s > Critical {
		return colors[Critical]
	}
	return colors[s]
}

// Classify maps a percentage onto a tier: below yellow is Normal, below
// orange is Warning, below red is Caution, everything else Critical.
// Thresholds are not validated; with a degenerate ordering the first
// cutoff hit in that sequence wins, which is the defined behavior.
func Classify(pct float64, yellow, orange, red int) Severity {
	switch {
	case pct < float64(yellow):
		return Normal
	case pct < float64(orange):
		return Warning
	case pct < float64(red):
		return Caution
	}
	return Critical
}
