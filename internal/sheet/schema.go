package sheet

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetload/internal/field"
)

// NamedField binds a field to the record attribute it fills.
type NamedField struct {
	Name  string
	Field field.Field
}

// Schema declares how one sheet of a workbook becomes records.
//
// Fields are processed, and appear in records, in declaration order.
type Schema struct {
	Key        string       // Registry key: "albums"
	Label      string       // Display name: "Album releases"
	SheetName  string       // Worksheet (region) to read
	HeaderRows int          // Rows above the data; must be at least 1
	LabelRow   *int         // Zero-based row holding the column labels; nil means the last header row
	Fields     []NamedField // Output attributes in record order
}

// LabelAt returns a LabelRow value for row.
func LabelAt(row int) *int { return &row }

// LabelRowIndex returns the zero-based label row.
func (s Schema) LabelRowIndex() int {
	if s.LabelRow != nil {
		return *s.LabelRow
	}
	return s.HeaderRows - 1
}

// Validate reports the first schema-level configuration mistake.
// Field-level checks run when a sheet is loaded.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.SheetName) == "" {
		return configError("sheet name is not set", "set Schema.SheetName")
	}
	if s.HeaderRows < 1 {
		return configError(
			fmt.Sprintf("header row count must be at least 1, got %d", s.HeaderRows),
			"the label row is one of the header rows",
		)
	}
	if label := s.LabelRowIndex(); label < 0 || label >= s.HeaderRows {
		return configError(
			fmt.Sprintf("label row %d is outside the %d header rows", label, s.HeaderRows),
			"label rows are zero-based",
		)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, nf := range s.Fields {
		if nf.Name == "" {
			return configError("field for column "+nf.Field.Source+" has no name", "")
		}
		if seen[nf.Name] {
			return configError("field "+nf.Name+" declared twice", "use With to override a field")
		}
		seen[nf.Name] = true
	}
	return nil
}

// CheckFields reports the first field that cannot be applied.
func (s Schema) CheckFields() error {
	for _, nf := range s.Fields {
		if err := nf.Field.Check(); err != nil {
			return fmt.Errorf("field %s: %w", nf.Name, err)
		}
	}
	return nil
}

// Field returns the field declared under name.
func (s Schema) Field(name string) (field.Field, bool) {
	for _, nf := range s.Fields {
		if nf.Name == name {
			return nf.Field, true
		}
	}
	return field.Field{}, false
}

// Columns returns the source column labels in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, nf := range s.Fields {
		cols[i] = nf.Field.Source
	}
	return cols
}

// With returns a copy of s extended by fields. A field whose name already
// exists replaces the inherited one in place; new names are appended.
func (s Schema) With(fields ...NamedField) Schema {
	out := s
	out.Fields = make([]NamedField, len(s.Fields), len(s.Fields)+len(fields))
	copy(out.Fields, s.Fields)

	for _, nf := range fields {
		replaced := false
		for i := range out.Fields {
			if out.Fields[i].Name == nf.Name {
				out.Fields[i] = nf
				replaced = true
				break
			}
		}
		if !replaced {
			out.Fields = append(out.Fields, nf)
		}
	}
	return out
}
