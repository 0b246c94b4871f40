// Package theme holds the color theme preference: the two modes, the
// persisted state, and where each mode's stylesheet lives.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for theme handling.
var (
	ErrInvalidMode = errors.New("invalid theme mode")
	ErrPersist     = errors.New("persisting theme preference failed")
)

// Mode is a color theme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Default is used when no preference was ever persisted.
const Default = Light

// ParseMode converts "light" or "dark" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidMode, s, Light, Dark)
}

// Valid reports whether m is Light or Dark.
func (m Mode) Valid() bool {
	return m == Light || m == Dark
}

// Toggled returns the other mode. Invalid modes toggle to Dark, as if
// they were the default.
func (m Mode) Toggled() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// BodyClass is the class marking the active mode on the page body.
func (m Mode) BodyClass() string {
	return "theme-" + string(m)
}

// LinkID is the id of the stylesheet link element for the mode.
func (m Mode) LinkID() string {
	return "theme-css-" + string(m)
}

// Icon is the toggle control's glyph: a moon in dark mode, a sun otherwise.
func (m Mode) Icon() string {
	if m == Dark {
		return "\U0001F319"
	}
	return "\u2600\uFE0F"
}

// BodyClasses lists every class BodyClass can return.
func BodyClasses() []string {
	return []string{Light.BodyClass(), Dark.BodyClass()}
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// State is the current mode backed by a Store. It is not safe for
// concurrent use; callers serialize access.
type State struct {
	mode  Mode
	store Store
}

// Load reads the persisted mode. A missing, unreadable or invalid
// preference yields Default; the returned error reports why, and the state
// is usable either way.
func Load(store Store) (*State, error) {
	s := &State{mode: Default, store: store}
	if store == nil {
		return s, nil
	}

	mode, ok, err := store.Load()
	if err != nil {
		return s, err
	}
	if !ok {
		return s, nil
	}
	if !mode.Valid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	s.mode = mode
	return s, nil
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	return s.mode
}

// Toggle flips the mode. The new mode is persisted before it becomes
// current; if persisting fails the mode is unchanged.
func (s *State) Toggle() (Mode, error) {
	if err := s.Set(s.mode.Toggled()); err != nil {
		return s.mode, err
	}
	return s.mode, nil
}

// Set persists and applies mode.
func (s *State) Set(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if s.store != nil {
		if err := s.store.Save(mode); err != nil {
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}
	s.mode = mode
	return nil
}
