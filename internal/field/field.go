// Package field declares how a single spreadsheet column is read into a
// record value.
//
// A Field names its source column and describes the cleaning applied to each
// raw cell: default substitution for empty cells, the required check and the
// type coercion performed by its Kind. Fields are immutable values and can be
// shared between sheets and goroutines.
package field

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/sheetload/internal/i18n"
)

// Field describes one column of a sheet.
//
// The zero value of the boolean flags gives the common case: the field is
// required and type checked.
type Field struct {
	Source        string  // Column label in the sheet's label row
	Kind          Kind    // Target type; required unless SkipTypeCheck is set
	Optional      bool    // Empty cells become nil instead of a validation error
	Default       Default // Substituted for empty cells before the required check
	Unique        bool    // Non-nil values must not repeat across accepted rows
	SkipTypeCheck bool    // Pass the raw cell through without coercion
}

// Call carries per-load information into kinds that need it.
type Call struct {
	Source   string
	Language i18n.Language
	Extra    map[string]any
}

// Required reports whether an empty cell is a validation error.
func (f Field) Required() bool { return !f.Optional }

// TypeCheckEnabled reports whether values are coerced to Kind.
func (f Field) TypeCheckEnabled() bool { return !f.SkipTypeCheck }

// Check reports configuration problems that make the field unusable.
func (f Field) Check() error {
	if strings.TrimSpace(f.Source) == "" {
		return &ConfigError{Msg: "field has no source column"}
	}
	if f.TypeCheckEnabled() && f.Kind == nil {
		return &ConfigError{
			Msg:  "field " + f.Source + " has type checking enabled but no kind",
			Hint: "set Kind or SkipTypeCheck",
		}
	}
	return nil
}

// Apply cleans a raw cell value.
//
// Empty cells (nil or whitespace-only text) are replaced by the default if
// one is set. A value that is still empty yields nil for optional fields and
// a field.is_required validation error for required ones. Other values are
// coerced to Kind unless type checking is disabled.
//
// Coercion failures are returned as *ValidationError. Any other error is a
// configuration problem and should stop the load.
func (f Field) Apply(raw any, lang i18n.Language, extra map[string]any) (any, error) {
	value := raw
	if IsAbsent(value) && f.Default != nil {
		value = f.Default.Resolve()
	}

	if IsAbsent(value) {
		if f.Required() {
			return nil, newValidationError("field.is_required", i18n.Params{"field": f.Source})
		}
		return nil, nil
	}

	if !f.TypeCheckEnabled() {
		return value, nil
	}
	if err := f.Check(); err != nil {
		return nil, err
	}

	call := Call{Source: f.Source, Language: lang, Extra: extra}
	out, err := f.Kind.Coerce(value, call)
	if err == nil {
		return out, nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return nil, verr
	}
	if errors.Is(err, ErrImproperlyConfigured) {
		return nil, err
	}
	return nil, &ValidationError{
		Key: "field.wrong_type",
		Params: i18n.Params{
			"field":       f.Source,
			"target_type": f.Kind.Name(),
			"actual_type": TypeName(value),
		},
		Err: err,
	}
}

// IsAbsent reports whether v counts as an empty cell.
func IsAbsent(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// IsEmpty reports whether v is a "falsy" value: nil, empty text, false,
// numeric zero, the zero time or an empty collection.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case time.Time:
		return val.IsZero()
	case CivilDate:
		return val.IsZero()
	case pgtype.Numeric:
		if !val.Valid {
			return true
		}
		if val.NaN || val.InfinityModifier != pgtype.Finite {
			return false
		}
		return val.Int == nil || val.Int.Sign() == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Default supplies the value used for an empty cell.
type Default interface {
	Resolve() any
}

type staticDefault struct{ v any }

func (d staticDefault) Resolve() any { return d.v }

// DefaultFunc is a Default computed on every use.
type DefaultFunc func() any

// Resolve calls fn.
func (fn DefaultFunc) Resolve() any { return fn() }

// Static returns a Default that always yields v.
func Static(v any) Default { return staticDefault{v: v} }

// Func returns a Default that calls fn for every empty cell.
func Func(fn func() any) Default { return DefaultFunc(fn) }
