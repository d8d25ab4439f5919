/**
 * Display settings - mode string parsing and resolution/refresh-rate selection
 */

package arrangement

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

const (
	fallbackResolution = "1920x1080"
	fallbackMode       = "1920x1080@60Hz"

	// rates parsed from "%.2f" strings and rates reported by the compositor
	// can differ in the last digits
	rateEpsilon = 0.005
)

// Tried in order; the first match wins.
var modePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)x(\d+)@(\d+(?:\.\d+)?)Hz`),
	regexp.MustCompile(`(\d+)x(\d+)@(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+)x(\d+)_(\d+(?:\.\d+)?)Hz`),
	regexp.MustCompile(`(\d+)x(\d+) (\d+(?:\.\d+)?)Hz`),
}

// Mode is one parsed entry of a monitor's available modes
type Mode struct {
	Width       int
	Height      int
	RefreshRate float64
}

// Resolution returns the "WxH" key of the mode
func (m Mode) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// ModeOption pairs a parsed mode with the string it came from
type ModeOption struct {
	Resolution  string
	RefreshRate float64
	Mode        string
}

// DisplaySettings is the selectable projection of a monitor's available modes
type DisplaySettings struct {
	Resolutions     []string
	RefreshRates    []float64
	ResolutionModes map[string][]float64
	AllModes        []ModeOption
}

// ParseMode parses a single mode string such as "2560x1440@143.91Hz".
func ParseMode(s string) (Mode, error) {
	for _, re := range modePatterns {
		match := re.FindStringSubmatch(s)
		if match == nil {
			continue
		}
		width, err := strconv.Atoi(match[1])
		if err != nil {
			return Mode{}, fmt.Errorf("parse width in %q: %w", s, err)
		}
		height, err := strconv.Atoi(match[2])
		if err != nil {
			return Mode{}, fmt.Errorf("parse height in %q: %w", s, err)
		}
		rate, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			return Mode{}, fmt.Errorf("parse refresh rate in %q: %w", s, err)
		}
		if width <= 0 || height <= 0 {
			return Mode{}, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
		}
		return Mode{Width: width, Height: height, RefreshRate: rate}, nil
	}
	return Mode{}, fmt.Errorf("unrecognized mode format %q", s)
}

// ParseResolution parses a "WxH" string
func ParseResolution(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	if w <= 0 || h <= 0 || fmt.Sprintf("%dx%d", w, h) != s {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	return w, h, nil
}

// BuildDisplaySettings parses m's available modes. Unparsable modes are
// reported through warn (which may be nil) and skipped. If nothing parses,
// a single 1920x1080@60Hz mode is synthesized.
func BuildDisplaySettings(m Monitor, warn func(ParseWarning)) DisplaySettings {
	settings := DisplaySettings{ResolutionModes: map[string][]float64{}}
	resolutions := map[string]Mode{}
	var rates []float64

	for _, raw := range m.AvailableModes {
		mode, err := ParseMode(raw)
		if err != nil {
			if warn != nil {
				warn(ParseWarning{Monitor: m.Name, Mode: raw})
			}
			continue
		}
		res := mode.Resolution()
		resolutions[res] = mode
		rates = append(rates, mode.RefreshRate)
		settings.ResolutionModes[res] = append(settings.ResolutionModes[res], mode.RefreshRate)
		settings.AllModes = append(settings.AllModes, ModeOption{Resolution: res, RefreshRate: mode.RefreshRate, Mode: raw})
	}

	if len(resolutions) == 0 {
		resolutions[fallbackResolution] = Mode{Width: 1920, Height: 1080, RefreshRate: DefaultRefreshRate}
		rates = []float64{DefaultRefreshRate}
		settings.ResolutionModes[fallbackResolution] = []float64{DefaultRefreshRate}
		settings.AllModes = []ModeOption{{Resolution: fallbackResolution, RefreshRate: DefaultRefreshRate, Mode: fallbackMode}}
	}

	for res, list := range settings.ResolutionModes {
		settings.ResolutionModes[res] = uniqueDescending(list)
	}
	settings.RefreshRates = uniqueDescending(rates)

	for res := range resolutions {
		settings.Resolutions = append(settings.Resolutions, res)
	}
	area := func(res string) int {
		mode := resolutions[res]
		return mode.Width * mode.Height
	}
	sort.SliceStable(settings.Resolutions, func(i, j int) bool {
		ai, aj := area(settings.Resolutions[i]), area(settings.Resolutions[j])
		if ai != aj {
			return ai > aj
		}
		return settings.Resolutions[i] < settings.Resolutions[j]
	})

	sort.SliceStable(settings.AllModes, func(i, j int) bool {
		ai, aj := area(settings.AllModes[i].Resolution), area(settings.AllModes[j].Resolution)
		if ai != aj {
			return ai > aj
		}
		return settings.AllModes[i].RefreshRate > settings.AllModes[j].RefreshRate
	})

	return settings
}

// HasResolution reports whether res is one of the parsed resolutions
func (d DisplaySettings) HasResolution(res string) bool {
	_, ok := d.ResolutionModes[res]
	return ok
}

// RefreshRateFor picks the rate to use after switching to res: the current
// rate if res supports it, otherwise the highest rate known for res, and
// DefaultRefreshRate when res has none.
func (d DisplaySettings) RefreshRateFor(res string, current float64) float64 {
	rates := d.ResolutionModes[res]
	for _, r := range rates {
		if math.Abs(r-current) < rateEpsilon {
			return current
		}
	}
	if len(rates) == 0 {
		return DefaultRefreshRate
	}
	return rates[0]
}

func uniqueDescending(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	seen := map[float64]bool{}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
