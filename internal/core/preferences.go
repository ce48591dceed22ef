package core

import (
	"errors"
	"slices"
)

const (
	CurrencyUSD = "$"
	CurrencyTRY = "₺"

	LanguageEnglish = "en"
	LanguageTurkish = "tr"
)

var (
	ErrInvalidCurrency = errors.New("unsupported currency")
	ErrInvalidLanguage = errors.New("unsupported language")

	Currencies = []string{CurrencyUSD, CurrencyTRY}
	Languages  = []string{LanguageEnglish, LanguageTurkish}
)

// Preferences holds display settings. They live in memory only.
type Preferences struct {
	Currency string
	Language string
	DarkMode bool
}

func DefaultPreferences() Preferences {
	return Preferences{
		Currency: CurrencyUSD,
		Language: LanguageEnglish,
	}
}

func (p Preferences) Validate() error {
	if !slices.Contains(Currencies, p.Currency) {
		return &ValidationError{Field: "currency", Err: ErrInvalidCurrency}
	}
	if !slices.Contains(Languages, p.Language) {
		return &ValidationError{Field: "language", Err: ErrInvalidLanguage}
	}
	return nil
}
