package http

import (
	"net/http"

	"pinledger/internal/core"
)

type preferencesView struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
	DarkMode bool   `json:"dark_mode"`
}

func newPreferencesView(p core.Preferences) preferencesView {
	return preferencesView{Currency: p.Currency, Language: p.Language, DarkMode: p.DarkMode}
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(newPreferencesView(s.deps.Preferences.Get())).Write(w)
}

// handleUpdatePreferences applies the fields present in the body on top of
// the current preferences.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	next := s.deps.Preferences.Get()
	if p.Has("currency") {
		next.Currency = p.Get("currency")
	}
	if p.Has("language") {
		next.Language = p.Get("language")
	}
	dark, err := p.GetBool("dark_mode", next.DarkMode)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	next.DarkMode = dark

	updated, err := s.deps.Preferences.Update(next)
	if err != nil {
		FromError(err).Write(w)
		return
	}
	NewResponse().JSON(newPreferencesView(updated)).Write(w)
}
