package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXFile opens the workbook at path.
func XLSXFile(path string) Opener {
	return OpenerFunc(func(ctx context.Context) (Workbook, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		return &xlsxWorkbook{file: f}, nil
	})
}

// XLSXReader opens a workbook from r. The reader is consumed on the first
// Open; later calls fail.
func XLSXReader(r io.Reader) Opener {
	consumed := false
	return OpenerFunc(func(ctx context.Context) (Workbook, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if consumed {
			return nil, errors.New("open workbook: reader already consumed")
		}
		consumed = true
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		return &xlsxWorkbook{file: f}, nil
	})
}

type xlsxWorkbook struct {
	file *excelize.File
}

func (w *xlsxWorkbook) Regions() []string {
	return w.file.GetSheetList()
}

// Region loads the whole sheet. Sheet names match exactly.
func (w *xlsxWorkbook) Region(name string) (Region, error) {
	found := false
	for _, sheet := range w.file.GetSheetList() {
		if sheet == name {
			found = true
			break
		}
	}
	if !found {
		return nil, regionNotFound(name)
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		var notExist excelize.ErrSheetNotExist
		if errors.As(err, &notExist) {
			return nil, regionNotFound(name)
		}
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}

	r := &xlsxRegion{file: w.file, sheet: name, styles: make(map[int]bool)}
	cells, err := r.typedRows(rows)
	if err != nil {
		return nil, err
	}
	return &grid{cells: cells}, nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

// xlsxRegion converts raw sheet text into typed cell values.
type xlsxRegion struct {
	file   *excelize.File
	sheet  string
	styles map[int]bool // style ID -> has a date number format
}

func (r *xlsxRegion) typedRows(rows [][]string) ([][]any, error) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, width)
		for j, raw := range row {
			if raw == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			v, err := r.typed(cell, raw)
			if err != nil {
				return nil, fmt.Errorf("read cell %s!%s: %w", r.sheet, cell, err)
			}
			cells[j] = v
		}
		out[i] = cells
	}
	return out, nil
}

func (r *xlsxRegion) typed(cell, raw string) (any, error) {
	cellType, err := r.file.GetCellType(r.sheet, cell)
	if err != nil {
		return nil, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return raw, nil
	case excelize.CellTypeDate:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return excelize.ExcelDateToTime(f, false)
		}
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, nil
		}
		return raw, nil
	}

	// Numbers, cached formula results and untyped cells.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}
	isDate, err := r.isDateCell(cell)
	if err != nil {
		return nil, err
	}
	if isDate {
		return excelize.ExcelDateToTime(f, false)
	}
	return f, nil
}

func (r *xlsxRegion) isDateCell(cell string) (bool, error) {
	styleID, err := r.file.GetCellStyle(r.sheet, cell)
	if err != nil {
		return false, err
	}
	if styleID == 0 {
		return false, nil
	}
	if isDate, ok := r.styles[styleID]; ok {
		return isDate, nil
	}

	style, err := r.file.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	r.styles[styleID] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in number format shows a date or time.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date or
// time tokens outside literals and bracketed sections.
func isDateFormatCode(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, c := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case strings.ContainsRune("ymdhs", c):
			return true
		}
	}
	return false
}
