/**
 * Display monitor - reads the output inventory from Hyprland
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	"github.com/ln64-git/hyprarrange/src/utility"
)

// FallbackModes is offered for outputs that report no mode list
var FallbackModes = []string{
	"1920x1080@60.00Hz",
	"1920x1080@59.94Hz",
	"1680x1050@59.95Hz",
	"1280x1024@75.03Hz",
	"1280x1024@60.02Hz",
	"1440x900@59.89Hz",
	"1280x960@60.00Hz",
	"1280x720@60.00Hz",
	"1024x768@75.03Hz",
	"1024x768@70.07Hz",
	"1024x768@60.00Hz",
	"800x600@75.00Hz",
	"800x600@72.19Hz",
	"800x600@60.32Hz",
	"640x480@75.00Hz",
	"640x480@72.81Hz",
	"640x480@59.94Hz",
}

// DisplayMonitor lists outputs via `hyprctl monitors all -j`. It is the
// arrangement session's inventory provider.
type DisplayMonitor struct {
	logger  *utility.Logger
	hyprctl *Hyprctl
}

// NewDisplayMonitor creates a display monitor
func NewDisplayMonitor(logger *utility.Logger, hyprctl *Hyprctl) *DisplayMonitor {
	return &DisplayMonitor{logger: logger, hyprctl: hyprctl}
}

// GetMonitors returns the raw hyprctl view of every output, disabled ones included
func (dm *DisplayMonitor) GetMonitors(ctx context.Context) ([]MonitorInfo, error) {
	var monitors []MonitorInfo
	if err := dm.hyprctl.JSON(ctx, &monitors, "monitors", "all"); err != nil {
		dm.logger.Error("hyprctl monitors failed: %v", err)
		return nil, err
	}
	return monitors, nil
}

// FetchMonitors implements arrangement.InventoryProvider. Ids are the
// position in hyprctl's list.
func (dm *DisplayMonitor) FetchMonitors(ctx context.Context) ([]arrangement.Monitor, error) {
	infos, err := dm.GetMonitors(ctx)
	if err != nil {
		return nil, err
	}

	monitors := make([]arrangement.Monitor, 0, len(infos))
	for i, info := range infos {
		m := toArrangement(i, info)
		if m.Width != info.Width || m.Height != info.Height {
			dm.logger.Warn("%s reported %dx%d, using %dx%d", info.Name, info.Width, info.Height, m.Width, m.Height)
		}
		monitors = append(monitors, m)
	}

	dm.logger.Debug("hyprctl reported %d monitors", len(monitors))
	return monitors, nil
}

func toArrangement(index int, info MonitorInfo) arrangement.Monitor {
	m := arrangement.Monitor{
		ID:          index,
		Name:        info.Name,
		X:           info.X,
		Y:           info.Y,
		Width:       info.Width,
		Height:      info.Height,
		RefreshRate: arrangement.DefaultRefreshRate,
		Scale:       1.0,
		Disabled:    info.Disabled,
	}
	if m.Name == "" {
		m.Name = "Unknown"
	}
	if info.RefreshRate != nil && *info.RefreshRate > 0 {
		m.RefreshRate = *info.RefreshRate
	}
	if info.Scale != nil && *info.Scale > 0 {
		m.Scale = *info.Scale
	}

	if info.AvailableModes != nil {
		m.AvailableModes = append([]string(nil), info.AvailableModes...)
	} else {
		m.AvailableModes = append([]string(nil), FallbackModes...)
	}

	// disabled outputs can report 0x0; fall back to their best mode
	if m.Width <= 0 || m.Height <= 0 {
		m.Width, m.Height = 1920, 1080
		for _, raw := range m.AvailableModes {
			if mode, err := arrangement.ParseMode(raw); err == nil {
				m.Width, m.Height = mode.Width, mode.Height
				break
			}
		}
	}

	return m
}

// FormatMonitorInfo formats monitor info for display
func (dm *DisplayMonitor) FormatMonitorInfo(monitors []MonitorInfo) string {
	if len(monitors) == 0 {
		return "Display Information:\n  No monitors detected"
	}

	lines := []string{"Display Information:"}

	for _, monitor := range monitors {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("  %s:", monitor.Name))

		if monitor.Description != "" && monitor.Description != monitor.Name {
			lines = append(lines, fmt.Sprintf("    Description: %s", monitor.Description))
		}

		if monitor.Make != "" && monitor.Model != "" {
			lines = append(lines, fmt.Sprintf("    Make/Model: %s %s", monitor.Make, monitor.Model))
		}

		if monitor.Disabled {
			lines = append(lines, "    State: disabled")
			continue
		}

		rate := arrangement.DefaultRefreshRate
		if monitor.RefreshRate != nil {
			rate = *monitor.RefreshRate
		}
		scale := 1.0
		if monitor.Scale != nil {
			scale = *monitor.Scale
		}

		lines = append(lines, fmt.Sprintf("    Resolution: %dx%d@%.2fHz", monitor.Width, monitor.Height, rate))
		lines = append(lines, fmt.Sprintf("    Position: %d,%d", monitor.X, monitor.Y))
		lines = append(lines, fmt.Sprintf("    Scale: %.2f", scale))
		lines = append(lines, fmt.Sprintf("    VRR: %s", boolToEnabled(monitor.VRR)))
		lines = append(lines, fmt.Sprintf("    DPMS: %s", boolToOnOff(monitor.DPMSStatus)))
		lines = append(lines, fmt.Sprintf("    Modes: %d", len(monitor.AvailableModes)))

		if monitor.Transform != 0 {
			lines = append(lines, fmt.Sprintf("    Transform: %d", monitor.Transform))
		}
	}

	return strings.Join(lines, "\n")
}

// FormatMonitorSummary formats a summary of monitors
func (dm *DisplayMonitor) FormatMonitorSummary(monitors []MonitorInfo) string {
	if len(monitors) == 0 {
		return "No monitors"
	}

	var summaries []string
	for _, m := range monitors {
		if m.Disabled {
			summaries = append(summaries, fmt.Sprintf("%s (disabled)", m.Name))
			continue
		}
		rate := 0.0
		if m.RefreshRate != nil {
			rate = *m.RefreshRate
		}
		vrrStr := ""
		if m.VRR {
			vrrStr = " VRR"
		}
		summaries = append(summaries, fmt.Sprintf("%s (%dx%d@%.0fHz%s)", m.Name, m.Width, m.Height, rate, vrrStr))
	}

	return strings.Join(summaries, ", ")
}

// boolToEnabled converts bool to "enabled"/"disabled"
func boolToEnabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// boolToOnOff converts bool to "on"/"off"
func boolToOnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
