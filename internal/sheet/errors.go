package sheet

import (
	"errors"

	"github.com/JonMunkholm/sheetload/internal/field"
)

var (
	// ErrImproperlyConfigured marks schema, field and sheet setup mistakes.
	// It is the same error value the field package uses.
	ErrImproperlyConfigured = field.ErrImproperlyConfigured

	// ErrAlreadyLoaded is returned by a second call to Load.
	ErrAlreadyLoaded = errors.New("sheet already loaded")

	// ErrIndexOutOfRange is returned by Row for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("row index out of range")
)

// ConfigError describes a configuration mistake with an optional hint.
type ConfigError = field.ConfigError

func configError(msg, hint string) error {
	return &ConfigError{Msg: msg, Hint: hint}
}
