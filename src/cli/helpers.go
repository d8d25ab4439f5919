package cli

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
)

// Helper functions for parsing arguments and formatting output

func boolToEnabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Format(time.RFC1123)
}

func formatPoint(x, y int) string {
	return fmt.Sprintf("(%d, %d)", x, y)
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.2fHz", rate)
}

func formatMode(m arrangement.Monitor) string {
	return fmt.Sprintf("%s@%s", m.Resolution(), formatRate(m.RefreshRate))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func parsePoint(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x coordinate %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y coordinate %q", ys)
	}
	return x, y, nil
}

func parseFloat(what, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return v, nil
}

// hasRate reports whether rate is among rates, within display rounding
func hasRate(rates []float64, rate float64) bool {
	return slices.ContainsFunc(rates, func(r float64) bool {
		d := r - rate
		return d < 0.005 && d > -0.005
	})
}
