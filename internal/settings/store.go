package settings

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"dryckeslager/internal/database"
	"dryckeslager/internal/models"
)

var (
	ErrInvalidThreshold = errors.New("threshold must be a positive integer")
	ErrThresholdOrder   = errors.New("medium stock threshold must be greater than low stock threshold")
	ErrInvalidThemeMode = errors.New("unknown theme mode")
)

// Persister saves a wholesale snapshot of store state under a fixed key.
type Persister interface {
	Save(key string, state interface{}) error
}

// ColorSchemeFunc reports the host environment's current color scheme
// preference, used to resolve the "system" theme mode.
type ColorSchemeFunc func() models.ThemeMode

// Store holds the stock thresholds and theme preference. Updates are
// validated here so that the threshold ordering invariant cannot be
// bypassed by calling the setters independently.
type Store struct {
	mu          sync.RWMutex
	settings    models.Settings
	persister   Persister
	colorScheme ColorSchemeFunc
	log         *logrus.Logger
}

// NewStore creates a settings store seeded with initial state. The
// persister and colorScheme may be nil, in which case persistence is
// skipped and "system" resolves to light.
func NewStore(initial models.Settings, persister Persister, colorScheme ColorSchemeFunc, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		settings:    initial,
		persister:   persister,
		colorScheme: colorScheme,
		log:         log,
	}
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Thresholds returns the current low and medium stock thresholds as a
// by-value snapshot. Classification queries call this on every invocation
// so they always see current values.
func (s *Store) Thresholds() (low, medium int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.LowStockThreshold, s.settings.MediumStockThreshold
}

// UpdateLowStockThreshold sets the low stock threshold. The value must be
// positive and stay strictly below the medium threshold.
func (s *Store) UpdateLowStockThreshold(value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value < 1 {
		return ErrInvalidThreshold
	}
	if value >= s.settings.MediumStockThreshold {
		return ErrThresholdOrder
	}

	s.settings.LowStockThreshold = value
	s.persistLocked()
	return nil
}

// UpdateMediumStockThreshold sets the medium stock threshold. The value
// must be positive and stay strictly above the low threshold.
func (s *Store) UpdateMediumStockThreshold(value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value < 1 {
		return ErrInvalidThreshold
	}
	if value <= s.settings.LowStockThreshold {
		return ErrThresholdOrder
	}

	s.settings.MediumStockThreshold = value
	s.persistLocked()
	return nil
}

// UpdateThresholds sets both thresholds in one atomic transition. Use this
// when the new low threshold would cross the old medium one.
func (s *Store) UpdateThresholds(low, medium int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if low < 1 || medium < 1 {
		return ErrInvalidThreshold
	}
	if medium <= low {
		return ErrThresholdOrder
	}

	s.settings.LowStockThreshold = low
	s.settings.MediumStockThreshold = medium
	s.persistLocked()
	return nil
}

// UpdateThemeMode sets the theme preference.
func (s *Store) UpdateThemeMode(mode models.ThemeMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !models.ValidThemeMode(mode) {
		return ErrInvalidThemeMode
	}

	s.settings.ThemeMode = mode
	s.persistLocked()
	return nil
}

// IsDarkMode resolves the effective dark-mode boolean. In "system" mode the
// host color scheme is consulted on every call; the result is never cached.
func (s *Store) IsDarkMode() bool {
	s.mu.RLock()
	mode := s.settings.ThemeMode
	s.mu.RUnlock()

	if mode == models.ThemeSystem {
		if s.colorScheme == nil {
			return false
		}
		return s.colorScheme() == models.ThemeDark
	}
	return mode == models.ThemeDark
}

// persistLocked writes the full settings snapshot through to durable
// storage. In-memory state is the source of truth; a failed write is
// logged and counted but never propagated to the caller.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(database.SettingsKey, s.settings); err != nil {
		s.log.WithError(err).Warn("failed to persist settings snapshot")
	}
}
