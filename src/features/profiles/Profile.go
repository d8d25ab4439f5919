/**
 * Profiles - named arrangements exported to and imported from TOML
 */

package profiles

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
)

// Profile is a named arrangement. Monitors are matched by connector name,
// so a profile survives hyprctl reordering its output list.
type Profile struct {
	Name     string         `toml:"name"`
	Created  time.Time      `toml:"created"`
	Monitors []MonitorEntry `toml:"monitor"`
}

// MonitorEntry is the persisted part of one monitor
type MonitorEntry struct {
	Name        string  `toml:"name"`
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	RefreshRate float64 `toml:"refresh_rate"`
	X           int     `toml:"x"`
	Y           int     `toml:"y"`
	Scale       float64 `toml:"scale"`
	Disabled    bool    `toml:"disabled"`
}

// FromMonitors captures monitors as a profile
func FromMonitors(name string, monitors []arrangement.Monitor, created time.Time) Profile {
	p := Profile{Name: name, Created: created.UTC().Truncate(time.Second)}
	for _, m := range monitors {
		p.Monitors = append(p.Monitors, MonitorEntry{
			Name:        m.Name,
			Width:       m.Width,
			Height:      m.Height,
			RefreshRate: m.RefreshRate,
			X:           m.X,
			Y:           m.Y,
			Scale:       m.Scale,
			Disabled:    m.Disabled,
		})
	}
	return p
}

// Validate rejects profiles that could not be applied
func (p Profile) Validate() error {
	seen := make(map[string]bool, len(p.Monitors))
	for i, m := range p.Monitors {
		if m.Name == "" {
			return fmt.Errorf("monitor %d has no name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("monitor %s listed twice", m.Name)
		}
		seen[m.Name] = true
		if m.Width <= 0 || m.Height <= 0 {
			return fmt.Errorf("%w: %s is %dx%d", arrangement.ErrInvalidGeometry, m.Name, m.Width, m.Height)
		}
	}
	return nil
}

// Encode renders p as TOML
func Encode(p Profile) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses and validates a TOML profile
func Decode(data []byte) (Profile, error) {
	var p Profile
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("unknown profile keys: %v", undecoded)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

// WriteFile writes p to path, creating the directory
func WriteFile(path string, p Profile) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a profile from path
func ReadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return Decode(data)
}

// Apply overlays the profile onto current. Monitors absent from the
// profile keep their values; profile entries with no live monitor are
// returned as unmatched.
func Apply(p Profile, current []arrangement.Monitor) (updated []arrangement.Monitor, unmatched []string) {
	byName := make(map[string]MonitorEntry, len(p.Monitors))
	for _, e := range p.Monitors {
		byName[e.Name] = e
	}

	updated = make([]arrangement.Monitor, len(current))
	matched := make(map[string]bool, len(current))
	for i, m := range current {
		if len(m.AvailableModes) > 0 {
			m.AvailableModes = append([]string(nil), m.AvailableModes...)
		}
		if e, ok := byName[m.Name]; ok {
			m.Width, m.Height = e.Width, e.Height
			m.X, m.Y = e.X, e.Y
			m.Disabled = e.Disabled
			if e.RefreshRate > 0 {
				m.RefreshRate = e.RefreshRate
			}
			if e.Scale > 0 {
				m.Scale = arrangement.NormalizeScale(e.Scale)
			}
			matched[m.Name] = true
		}
		updated[i] = m
	}

	for _, e := range p.Monitors {
		if !matched[e.Name] {
			unmatched = append(unmatched, e.Name)
		}
	}
	return updated, unmatched
}
