package sheet

import "sort"

// Extra supplies a value merged into every accepted record.
type Extra interface {
	Resolve(row Record) any
}

type staticExtra struct{ v any }

func (e staticExtra) Resolve(Record) any { return e.v }

// ExtraFunc derives a value from the row's field values.
type ExtraFunc func(row Record) any

// Resolve calls fn.
func (fn ExtraFunc) Resolve(row Record) any { return fn(row) }

// Value returns an Extra that always yields v.
func Value(v any) Extra { return staticExtra{v: v} }

// FromRow returns an Extra computed from each row's field values.
func FromRow(fn func(row Record) any) Extra { return ExtraFunc(fn) }

type extraEntry struct {
	key   string
	extra Extra
}

// merge adds extras to rec for keys the fields did not fill. Row-derived
// extras see only the field values.
func merge(rec Record, extras []extraEntry) Record {
	if len(extras) == 0 {
		return rec
	}

	fields := rec.Without()
	for _, e := range extras {
		if _, ok := rec.Get(e.key); ok {
			continue
		}
		rec.set(e.key, e.extra.Resolve(fields))
	}
	return rec
}

func sortedExtras(values map[string]any) []extraEntry {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]extraEntry, len(keys))
	for i, k := range keys {
		entries[i] = extraEntry{key: k, extra: Value(values[k])}
	}
	return entries
}
