/**
 * Config writer - persists an arrangement as a Hyprland monitors.conf
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	"github.com/ln64-git/hyprarrange/src/utility"
)

const confHeader = "###############################################################\n" +
	"## DO NOT EDIT THIS FILE!                                    ##\n" +
	"## This file is automatically generated by hyprarrange.      ##\n" +
	"###############################################################\n"

// ConfigWriter implements arrangement.Persister. It rewrites monitors.conf
// and, when live apply is on, pushes every rule through `hyprctl keyword`.
type ConfigWriter struct {
	logger    *utility.Logger
	hyprctl   *Hyprctl
	path      string
	applyLive bool
}

// NewConfigWriter creates a writer for path. hyprctl may be nil when
// applyLive is false.
func NewConfigWriter(logger *utility.Logger, hyprctl *Hyprctl, path string, applyLive bool) *ConfigWriter {
	return &ConfigWriter{logger: logger, hyprctl: hyprctl, path: path, applyLive: applyLive}
}

// Path returns the monitors.conf location
func (w *ConfigWriter) Path() string {
	return w.path
}

// PersistMonitors writes the configuration file, creating its directory.
// With live apply on, the rules are pushed to the compositor between
// staging the file and renaming it into place; a rejected rule leaves
// monitors.conf untouched.
func (w *ConfigWriter) PersistMonitors(ctx context.Context, monitors []arrangement.Monitor) error {
	content := RenderMonitorsConf(monitors)

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if w.applyLive {
		if err := w.Apply(ctx, monitors); err != nil {
			os.Remove(tmp)
			return err
		}
	}

	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	w.logger.Info("Monitor configuration saved to %s", w.path)
	w.logger.Debug("Generated monitor configuration:\n%s", content)
	return nil
}

// Apply pushes the arrangement to the running compositor
func (w *ConfigWriter) Apply(ctx context.Context, monitors []arrangement.Monitor) error {
	if w.hyprctl == nil {
		return ErrHyprlandUnavailable
	}

	for _, m := range monitors {
		rule := KeywordRule(m)
		result, err := w.hyprctl.Run(ctx, "keyword", "monitor", rule)
		if err != nil {
			return fmt.Errorf("failed to configure monitor %s: %w", m.Name, err)
		}
		if out := strings.TrimSpace(result.Stdout); out != "" && out != "ok" {
			return fmt.Errorf("failed to configure monitor %s: %s", m.Name, out)
		}
		w.logger.Debug("Applied %s", rule)
	}
	return nil
}

// RenderMonitorsConf produces the monitors.conf content for monitors
func RenderMonitorsConf(monitors []arrangement.Monitor) string {
	var b strings.Builder
	b.WriteString(confHeader)
	for _, m := range monitors {
		b.WriteString("monitor = ")
		b.WriteString(MonitorRule(m))
		b.WriteString("\n")
		if m.Disabled {
			fmt.Fprintf(&b, "monitor = %s, disabled\n", m.Name)
		}
	}
	return b.String()
}

// MonitorRule formats the rule body "NAME, WxH@R.RR, XxY, S.SS"
func MonitorRule(m arrangement.Monitor) string {
	return fmt.Sprintf("%s, %dx%d@%.2f, %dx%d, %.2f", m.Name, m.Width, m.Height, m.RefreshRate, m.X, m.Y, m.Scale)
}

// KeywordRule is the argument for `hyprctl keyword monitor`
func KeywordRule(m arrangement.Monitor) string {
	if m.Disabled {
		return m.Name + ", disable"
	}
	return MonitorRule(m)
}
