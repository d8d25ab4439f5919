/**
 * Compositor monitor - reports which Hyprland build we are talking to
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ln64-git/hyprarrange/src/utility"
)

// CompositorMonitor queries `hyprctl version -j`
type CompositorMonitor struct {
	logger  *utility.Logger
	hyprctl *Hyprctl
}

type versionPayload struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	Tag    string `json:"tag"`
	Date   string `json:"commit_date"`
}

// NewCompositorMonitor creates a compositor monitor
func NewCompositorMonitor(logger *utility.Logger, hyprctl *Hyprctl) *CompositorMonitor {
	return &CompositorMonitor{logger: logger, hyprctl: hyprctl}
}

// IsAvailable checks if Hyprland is available
func (cm *CompositorMonitor) IsAvailable() bool {
	return cm.hyprctl.IsAvailable()
}

// GetCompositorInfo gets compositor information. Failures are reported as
// an unavailable compositor, not as an error.
func (cm *CompositorMonitor) GetCompositorInfo(ctx context.Context) (*CompositorInfo, error) {
	if !cm.IsAvailable() {
		return &CompositorInfo{
			Name:      "unknown",
			Version:   "unknown",
			Available: false,
		}, nil
	}

	var payload versionPayload
	if err := cm.hyprctl.JSON(ctx, &payload, "version"); err != nil {
		cm.logger.Error("hyprctl version failed: %v", err)
		return &CompositorInfo{
			Name:      "Hyprland",
			Version:   "unknown",
			Available: false,
		}, nil
	}

	version := "unknown"
	if payload.Tag != "" {
		version = payload.Tag
	} else if payload.Commit != "" {
		version = shortCommit(payload.Commit)
	}

	return &CompositorInfo{
		Name:      "Hyprland",
		Version:   version,
		Available: true,
		Branch:    payload.Branch,
		Commit:    payload.Commit,
		BuildDate: payload.Date,
	}, nil
}

// FormatCompositorInfo formats compositor info for display
func (cm *CompositorMonitor) FormatCompositorInfo(info *CompositorInfo) string {
	lines := []string{
		"Compositor Information:",
		fmt.Sprintf("  Name: %s", info.Name),
		fmt.Sprintf("  Version: %s", info.Version),
		fmt.Sprintf("  Available: %s", boolToYesNo(info.Available)),
	}

	if info.Branch != "" {
		lines = append(lines, fmt.Sprintf("  Branch: %s", info.Branch))
	}
	if info.Commit != "" {
		lines = append(lines, fmt.Sprintf("  Commit: %s", shortCommit(info.Commit)))
	}
	if info.BuildDate != "" {
		lines = append(lines, fmt.Sprintf("  Built: %s", info.BuildDate))
	}

	return strings.Join(lines, "\n")
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

func boolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
