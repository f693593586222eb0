package field

import (
	"errors"

	"github.com/JonMunkholm/sheetload/internal/i18n"
)

// ErrImproperlyConfigured marks schema and field declaration mistakes.
// These abort a load instead of being collected per row.
var ErrImproperlyConfigured = errors.New("improperly configured")

// ConfigError describes a configuration mistake with an optional hint on
// how to fix it.
type ConfigError struct {
	Msg  string
	Hint string
}

func (e *ConfigError) Error() string {
	if e.Hint != "" {
		return e.Msg + " (" + e.Hint + ")"
	}
	return e.Msg
}

// Unwrap lets errors.Is match ErrImproperlyConfigured.
func (e *ConfigError) Unwrap() error { return ErrImproperlyConfigured }

// ValidationError is a data-level failure for a single cell.
//
// It carries the message key and its parameters; the text is rendered in
// the load's language by Localize.
type ValidationError struct {
	Key    string
	Params i18n.Params
	Err    error // Underlying conversion error, if any
}

func newValidationError(key string, params i18n.Params) *ValidationError {
	return &ValidationError{Key: key, Params: params}
}

// Error renders the message in English.
func (e *ValidationError) Error() string {
	return i18n.Translate(e.Key, i18n.EN, e.Params)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Localize renders the message in lang using t, or the built-in catalog when
// t is nil.
func (e *ValidationError) Localize(t i18n.Translator, lang i18n.Language) string {
	if t == nil {
		t = i18n.Default
	}
	return t.Translate(e.Key, lang, e.Params)
}
