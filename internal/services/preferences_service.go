package services

import (
	"sync"

	"pinledger/internal/core"
)

// PreferencesService holds display preferences for the running process.
// Values are not persisted and reset to the defaults on restart.
type PreferencesService struct {
	mu    sync.RWMutex
	prefs core.Preferences
}

func NewPreferencesService(initial core.Preferences) *PreferencesService {
	if initial.Validate() != nil {
		initial = core.DefaultPreferences()
	}
	return &PreferencesService{prefs: initial}
}

func (s *PreferencesService) Get() core.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Update replaces the preferences after validating them.
func (s *PreferencesService) Update(p core.Preferences) (core.Preferences, error) {
	if err := p.Validate(); err != nil {
		return s.Get(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
	return p, nil
}

// Language returns the current notification language.
func (s *PreferencesService) Language() string {
	return s.Get().Language
}

// FormatAmount renders an amount with the current currency symbol.
func (s *PreferencesService) FormatAmount(amount float64) string {
	return core.FormatAmount(amount, s.Get().Currency)
}
