// Package sheet loads one worksheet of a document into records according to
// a Schema.
//
// A Sheet is built once per document with New and loaded once with Load.
// Loading resolves the schema's columns against the label row, applies every
// field to every data row, merges extra data, skips empty rows and finally
// checks unique fields. Data problems never stop a load: they are collected
// as localized messages available through Errors and Infos. Only setup
// mistakes (ErrImproperlyConfigured) and I/O failures are returned as errors.
//
// A Sheet must not be used concurrently while Load runs. Once Load has
// returned, its accessors are safe for concurrent use.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetload/internal/field"
	"github.com/JonMunkholm/sheetload/internal/i18n"
	"github.com/JonMunkholm/sheetload/internal/logging"
	"github.com/JonMunkholm/sheetload/internal/source"
)

// ctxCheckInterval is how many rows are processed between context checks.
const ctxCheckInterval = 256

// Sheet is a schema bound to a document.
type Sheet struct {
	schema     Schema
	source     source.Opener
	language   i18n.Language
	translator i18n.Translator
	extras     []extraEntry
	fieldCtx   map[string]any

	loaded bool
	rows   []Record
	errors []string
	infos  []string
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithLanguage sets the language of collected messages. Default: English.
func WithLanguage(lang i18n.Language) Option {
	return func(s *Sheet) { s.language = lang }
}

// WithTranslator replaces the built-in message catalog.
func WithTranslator(t i18n.Translator) Option {
	return func(s *Sheet) { s.translator = t }
}

// WithExtra merges the value of e under key into every accepted record.
// Extras are applied in the order given.
func WithExtra(key string, e Extra) Option {
	return func(s *Sheet) { s.extras = append(s.extras, extraEntry{key: key, extra: e}) }
}

// WithExtraValues merges static values into every accepted record, in key
// order.
func WithExtraValues(values map[string]any) Option {
	return func(s *Sheet) { s.extras = append(s.extras, sortedExtras(values)...) }
}

// WithFieldContext passes data to every field application, for kinds that
// need per-load information such as lookups.
func WithFieldContext(data map[string]any) Option {
	return func(s *Sheet) { s.fieldCtx = data }
}

// New binds schema to the document opened by src.
// It fails with ErrImproperlyConfigured if the schema is invalid or src is
// nil.
func New(schema Schema, src source.Opener, opts ...Option) (*Sheet, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, configError("no document given", "pass a source.Opener such as source.XLSXFile")
	}

	s := &Sheet{
		schema:     schema,
		source:     src,
		language:   i18n.DefaultLanguage,
		translator: i18n.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads the document. It may be called once; later calls return
// ErrAlreadyLoaded.
//
// A missing worksheet or missing columns are reported through Errors and end
// the load early with a nil error. When ctx ends or a row fails with an error
// the rows and messages collected so far are discarded.
func (s *Sheet) Load(ctx context.Context) error {
	if s.loaded {
		return ErrAlreadyLoaded
	}
	s.loaded = true

	logger := logging.WithFields(ctx, "sheet", s.schema.SheetName)

	if err := s.schema.CheckFields(); err != nil {
		return err
	}

	wb, err := s.source.Open(ctx)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			logger.Warn("failed to close document", "error", cerr)
		}
	}()

	logger.Debug("sheet load started",
		"header_rows", s.schema.HeaderRows,
		"label_row", s.schema.LabelRowIndex(),
		"language", s.language,
	)

	region, err := wb.Region(s.schema.SheetName)
	if errors.Is(err, source.ErrRegionNotFound) {
		s.addError(s.translate("sheet.sheet_missing", i18n.Params{"sheet": s.schema.SheetName}))
		logger.Warn("sheet not present in document", "regions", wb.Regions())
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", s.schema.SheetName, err)
	}

	labels, err := region.Labels(s.schema.LabelRowIndex())
	if err != nil {
		return fmt.Errorf("read labels: %w", err)
	}
	columns := columnIndex(labels)
	if missing := s.missingColumns(columns); len(missing) > 0 {
		for _, col := range missing {
			s.addError(s.translate("sheet.column_missing", i18n.Params{"column": col}))
		}
		logger.Warn("columns not present in sheet", "missing", missing)
		return nil
	}

	rows, err := region.Rows(s.schema.HeaderRows)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}

	for i, cells := range rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				s.reset()
				return err
			}
		}
		if err := s.processRow(i, cells, columns); err != nil {
			s.reset()
			return err
		}
	}

	s.checkUnique()

	logger.Info("sheet loaded",
		"rows", len(s.rows),
		"errors", len(s.errors),
		"infos", len(s.infos),
	)
	return nil
}

// reset drops partial results of an aborted load.
func (s *Sheet) reset() {
	s.rows = nil
	s.errors = nil
	s.infos = nil
}

// columnIndex maps trimmed labels to their position. Empty labels are
// ignored; for repeated labels the last one wins.
func columnIndex(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		idx[label] = i
	}
	return idx
}

func (s *Sheet) missingColumns(columns map[string]int) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, nf := range s.schema.Fields {
		src := nf.Field.Source
		if _, ok := columns[src]; ok || seen[src] {
			continue
		}
		seen[src] = true
		missing = append(missing, src)
	}
	return missing
}

func (s *Sheet) processRow(i int, cells []any, columns map[string]int) error {
	var rec Record
	var rowErrors []string

	for _, nf := range s.schema.Fields {
		pos := columns[nf.Field.Source]
		if pos >= len(cells) {
			continue
		}

		v, err := nf.Field.Apply(cells[pos], s.language, s.fieldCtx)
		if err != nil {
			var verr *field.ValidationError
			if !errors.As(err, &verr) {
				return fmt.Errorf("field %s: %w", nf.Name, err)
			}
			rowErrors = append(rowErrors, verr.Localize(s.translator, s.language))
			rec.set(nf.Name, nil)
			continue
		}
		rec.set(nf.Name, v)
	}

	rec = merge(rec, s.extras)

	if rec.Empty() {
		s.addInfo(s.rowMessage(i, s.translate("sheet.skipped_row", nil)))
		return nil
	}

	s.rows = append(s.rows, rec)
	for _, msg := range rowErrors {
		s.addError(s.rowMessage(i, msg))
	}
	return nil
}

// checkUnique reports every value that occurs more than once in a unique
// field. Nil values are not compared.
func (s *Sheet) checkUnique() {
	for _, nf := range s.schema.Fields {
		if !nf.Field.Unique {
			continue
		}

		counts := make(map[string]int)
		var order []string
		display := make(map[string]string)
		for _, rec := range s.rows {
			v, ok := rec.Get(nf.Name)
			if !ok || v == nil {
				continue
			}
			key := field.TypeName(v) + ":" + field.FormatValue(v)
			if counts[key] == 0 {
				order = append(order, key)
				display[key] = field.FormatValue(v)
			}
			counts[key]++
		}

		for _, key := range order {
			if counts[key] < 2 {
				continue
			}
			s.addError(s.translate("sheet.unique_violation", i18n.Params{
				"column": nf.Field.Source,
				"value":  display[key],
				"count":  counts[key],
			}))
		}
	}
}

// rowNumber converts a data row index to the 1-based spreadsheet row.
func (s *Sheet) rowNumber(i int) int {
	return i + s.schema.HeaderRows + 1
}

func (s *Sheet) rowMessage(i int, msg string) string {
	return s.translate("sheet.row_info", i18n.Params{
		"sheet":   s.schema.SheetName,
		"row":     s.rowNumber(i),
		"message": msg,
	})
}

func (s *Sheet) translate(key string, params i18n.Params) string {
	return s.translator.Translate(key, s.language, params)
}

func (s *Sheet) addError(msg string) { s.errors = append(s.errors, msg) }
func (s *Sheet) addInfo(msg string)  { s.infos = append(s.infos, msg) }

// Schema returns the sheet's schema.
func (s *Sheet) Schema() Schema { return s.schema }

// Language returns the language of collected messages.
func (s *Sheet) Language() i18n.Language { return s.language }

// Loaded reports whether Load has been called.
func (s *Sheet) Loaded() bool { return s.loaded }

// Len returns the number of accepted rows.
func (s *Sheet) Len() int { return len(s.rows) }

// Row returns the i-th accepted row.
func (s *Sheet) Row(i int) (Record, error) {
	if i < 0 || i >= len(s.rows) {
		return Record{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.rows))
	}
	return s.rows[i].Without(), nil
}

// Rows returns copies of the accepted rows without the excluded attributes.
func (s *Sheet) Rows(exclude ...string) []Record {
	out := make([]Record, len(s.rows))
	for i, rec := range s.rows {
		out[i] = rec.Without(exclude...)
	}
	return out
}

// Errors returns the collected error messages in the order they occurred.
func (s *Sheet) Errors() []string { return append([]string(nil), s.errors...) }

// HasErrors reports whether any error was collected.
func (s *Sheet) HasErrors() bool { return len(s.errors) > 0 }

// Infos returns the collected informational messages.
func (s *Sheet) Infos() []string { return append([]string(nil), s.infos...) }

// HasInfos reports whether any info was collected.
func (s *Sheet) HasInfos() bool { return len(s.infos) > 0 }
