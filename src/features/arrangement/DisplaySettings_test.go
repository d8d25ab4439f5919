package arrangement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "1920x1080@60.00Hz", want: Mode{Width: 1920, Height: 1080, RefreshRate: 60}},
		{input: "2560x1440@143.91Hz", want: Mode{Width: 2560, Height: 1440, RefreshRate: 143.91}},
		{input: "1920x1080@75", want: Mode{Width: 1920, Height: 1080, RefreshRate: 75}},
		{input: "1280x1024_75.03Hz", want: Mode{Width: 1280, Height: 1024, RefreshRate: 75.03}},
		{input: "800x600 60Hz", want: Mode{Width: 800, Height: 600, RefreshRate: 60}},
		{input: "preferred", wantErr: true},
		{input: "1920x1080", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResolution(t *testing.T) {
	w, h, err := ParseResolution("2560x1440")
	require.NoError(t, err)
	assert.Equal(t, 2560, w)
	assert.Equal(t, 1440, h)

	for _, bad := range []string{"2560", "0x1080", "1920x-1", "1920x1080@60", "axb"} {
		_, _, err := ParseResolution(bad)
		assert.True(t, errors.Is(err, ErrInvalidResolution), bad)
	}
}

func TestBuildDisplaySettings(t *testing.T) {
	m := Monitor{
		Name: "DP-1",
		AvailableModes: []string{
			"1920x1080@60.00Hz",
			"2560x1440@60.00Hz",
			"not-a-mode",
			"2560x1440@75.00Hz",
			"1920x1080@144.00Hz",
			"2560x1440@60.00Hz",
		},
	}

	var warnings []ParseWarning
	settings := BuildDisplaySettings(m, func(w ParseWarning) { warnings = append(warnings, w) })

	assert.Equal(t, []string{"2560x1440", "1920x1080"}, settings.Resolutions)
	assert.Equal(t, []float64{144, 75, 60}, settings.RefreshRates)
	assert.Equal(t, []float64{75, 60}, settings.ResolutionModes["2560x1440"])
	assert.Equal(t, []float64{144, 60}, settings.ResolutionModes["1920x1080"])

	require.Len(t, settings.AllModes, 5)
	assert.Equal(t, ModeOption{Resolution: "2560x1440", RefreshRate: 75, Mode: "2560x1440@75.00Hz"}, settings.AllModes[0])
	assert.Equal(t, "1920x1080", settings.AllModes[len(settings.AllModes)-1].Resolution)
	assert.Equal(t, 60.0, settings.AllModes[len(settings.AllModes)-1].RefreshRate)

	require.Len(t, warnings, 1)
	assert.Equal(t, ParseWarning{Monitor: "DP-1", Mode: "not-a-mode"}, warnings[0])
}

func TestBuildDisplaySettingsFallback(t *testing.T) {
	for _, modes := range [][]string{nil, {"garbage", "also garbage"}} {
		settings := BuildDisplaySettings(Monitor{AvailableModes: modes}, nil)

		assert.Equal(t, []string{"1920x1080"}, settings.Resolutions)
		assert.Equal(t, []float64{60}, settings.RefreshRates)
		assert.Equal(t, []ModeOption{{Resolution: "1920x1080", RefreshRate: 60, Mode: "1920x1080@60Hz"}}, settings.AllModes)
	}
}

func TestRefreshRateFor(t *testing.T) {
	settings := BuildDisplaySettings(Monitor{AvailableModes: []string{
		"1920x1080@144.00Hz",
		"1920x1080@60.00Hz",
		"2560x1440@60.00Hz",
		"2560x1440@75.00Hz",
	}}, nil)

	tests := []struct {
		name    string
		res     string
		current float64
		want    float64
	}{
		{name: "current rate unsupported picks highest", res: "2560x1440", current: 144, want: 75},
		{name: "current rate supported is kept", res: "2560x1440", current: 60, want: 60},
		{name: "rounding noise still counts as supported", res: "1920x1080", current: 143.999, want: 143.999},
		{name: "unknown resolution falls back to 60", res: "3840x2160", current: 144, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settings.RefreshRateFor(tt.res, tt.current))
		})
	}
}

func TestNormalizeScale(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 5.0, want: 3.0},
		{in: 0.1, want: 0.25},
		{in: 1.333, want: 1.33},
		{in: 1.5, want: 1.5},
		{in: 0.25, want: 0.25},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeScale(tt.in), 1e-9, "scale %v", tt.in)
	}
}
