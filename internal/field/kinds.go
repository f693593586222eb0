package field

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetload/internal/i18n"
)

// Kind coerces a non-empty raw cell into a field's target type.
//
// Coerce must return values of its own target type unchanged. A plain error
// is reported as field.wrong_type; a *ValidationError is passed through.
type Kind interface {
	Name() string
	Coerce(v any, c Call) (any, error)
}

// errWrongType is the generic coercion failure.
var errWrongType = errors.New("wrong type")

// Built-in kinds.
var (
	Text     Kind = textKind{}
	Integer  Kind = integerKind{}
	Float    Kind = floatKind{}
	Numeric  Kind = numericKind{}
	Bool     Kind = boolKind{}
	Date     Kind = dateKind{}
	DateTime Kind = dateTimeKind{}
	Timecode Kind = timecodeKind{}
	UUID     Kind = uuidKind{}
)

type textKind struct{}

func (textKind) Name() string { return "text" }

func (textKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case time.Time, CivilDate, pgtype.Numeric, uuid.UUID:
		return FormatValue(val), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	if i, ok := toInt64(v); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return FormatValue(v), nil
}

type integerKind struct{}

func (integerKind) Name() string { return "integer" }

// Coerce truncates fractional numbers toward zero. Text must hold a whole
// number.
func (integerKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case bool:
		return nil, errWrongType
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, errWrongType
		}
		return int(val), nil
	case float32:
		return integerKind{}.Coerce(float64(val), Call{})
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	if i, ok := toInt64(v); ok {
		return int(i), nil
	}
	return nil, errWrongType
}

type floatKind struct{}

func (floatKind) Name() string { return "float" }

func (floatKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case bool:
		return nil, errWrongType
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), nil
	}
	return nil, errWrongType
}

type numericKind struct{}

func (numericKind) Name() string { return "numeric" }

// Coerce produces an arbitrary-precision pgtype.Numeric. Text may carry
// currency symbols, thousands separators and accounting negatives.
func (numericKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return nil, errWrongType
		}
		return val, nil
	case bool:
		return nil, errWrongType
	case string:
		return parseNumeric(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, errWrongType
		}
		return parseNumeric(strconv.FormatFloat(val, 'f', -1, 64))
	}
	if i, ok := toInt64(v); ok {
		return parseNumeric(strconv.FormatInt(i, 10))
	}
	return nil, errWrongType
}

type boolKind struct{}

func (boolKind) Name() string { return "boolean" }

func (boolKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return parseBool(val)
	case float64:
		switch val {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, errWrongType
	}
	if i, ok := toInt64(v); ok {
		switch i {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return nil, errWrongType
}

type dateKind struct{}

func (dateKind) Name() string { return "date" }

// Coerce narrows timestamps and Excel serial numbers to a calendar day.
func (dateKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case CivilDate:
		return val, nil
	case time.Time:
		return DateOf(val), nil
	case float64:
		t, err := excelize.ExcelDateToTime(val, false)
		if err != nil {
			return nil, err
		}
		return DateOf(t), nil
	case bool:
		return nil, errWrongType
	case string:
		t, err := parseDate(val)
		if err != nil {
			return nil, err
		}
		return DateOf(t), nil
	}
	if i, ok := toInt64(v); ok {
		return dateKind{}.Coerce(float64(i), Call{})
	}
	return nil, errWrongType
}

type dateTimeKind struct{}

func (dateTimeKind) Name() string { return "datetime" }

func (dateTimeKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case CivilDate:
		return val.In(time.UTC), nil
	case float64:
		return excelize.ExcelDateToTime(val, false)
	case bool:
		return nil, errWrongType
	case string:
		return parseDateTime(val)
	}
	if i, ok := toInt64(v); ok {
		return excelize.ExcelDateToTime(float64(i), false)
	}
	return nil, errWrongType
}

// timecodeRegex matches HH:MM:SS with an optional single tenth digit after
// a comma or dash.
var timecodeRegex = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})(?:[,-](\d))?$`)

type timecodeKind struct{}

func (timecodeKind) Name() string { return "timecode" }

// Coerce converts a timecode to seconds. The sub-second digit counts as
// tenths: "00:13:06,9" is 786.9.
func (timecodeKind) Coerce(v any, c Call) (any, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		secs, ok := ParseTimecode(val)
		if !ok {
			return nil, newValidationError("field.timecode_parse_error", i18n.Params{
				"field":    c.Source,
				"timecode": val,
			})
		}
		return secs, nil
	}
	return nil, errWrongType
}

// ParseTimecode converts an HH:MM:SS[,T] string to seconds.
func ParseTimecode(s string) (float64, bool) {
	m := timecodeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	total := float64(h*3600 + mins*60 + sec)
	if m[4] != "" {
		tenth, _ := strconv.Atoi(m[4])
		total += float64(tenth) / 10
	}
	return total, true
}

type uuidKind struct{}

func (uuidKind) Name() string { return "uuid" }

func (uuidKind) Coerce(v any, _ Call) (any, error) {
	switch val := v.(type) {
	case uuid.UUID:
		return val, nil
	case string:
		return uuid.Parse(strings.TrimSpace(val))
	}
	return nil, errWrongType
}

// Enum returns a text kind restricted to values. Matching ignores case and
// surrounding whitespace and yields the declared spelling.
func Enum(values ...string) Kind {
	return enumKind{values: values}
}

type enumKind struct {
	values []string
}

func (enumKind) Name() string { return "choice" }

func (k enumKind) Coerce(v any, c Call) (any, error) {
	s, err := textKind{}.Coerce(v, c)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(s.(string))
	for _, allowed := range k.values {
		if strings.EqualFold(text, allowed) {
			return allowed, nil
		}
	}
	return nil, newValidationError("field.invalid_choice", i18n.Params{
		"field":   c.Source,
		"choices": strings.Join(k.values, ", "),
		"value":   text,
	})
}

// CoerceFunc is a caller-provided coercion.
type CoerceFunc func(v any, c Call) (any, error)

// Custom returns a kind named name that delegates to fn.
func Custom(name string, fn CoerceFunc) Kind {
	return customKind{name: name, fn: fn}
}

type customKind struct {
	name string
	fn   CoerceFunc
}

func (k customKind) Name() string { return k.name }

func (k customKind) Coerce(v any, c Call) (any, error) {
	if k.fn == nil {
		return nil, &ConfigError{Msg: "custom kind " + k.name + " has no coercion function"}
	}
	return k.fn(v, c)
}

// LookupFunc finds the objects identified by a cell value.
type LookupFunc func(v any, c Call) ([]any, error)

// Lookup returns a kind that resolves a cell to exactly one related object.
// No match and several matches are validation errors.
func Lookup(name string, fn LookupFunc) Kind {
	return lookupKind{name: name, fn: fn}
}

type lookupKind struct {
	name string
	fn   LookupFunc
}

func (k lookupKind) Name() string { return k.name }

func (k lookupKind) Coerce(v any, c Call) (any, error) {
	if k.fn == nil {
		return nil, &ConfigError{Msg: "lookup kind " + k.name + " has no lookup function"}
	}
	found, err := k.fn(v, c)
	if err != nil {
		return nil, err
	}

	params := i18n.Params{"field": c.Source, "value": FormatValue(v)}
	switch len(found) {
	case 0:
		return nil, newValidationError("field.related_does_not_exist", params)
	case 1:
		return found[0], nil
	default:
		return nil, newValidationError("field.related_multiple_objects_returned", params)
	}
}
