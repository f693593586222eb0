package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/sheetload/internal/sheet"
	"github.com/JonMunkholm/sheetload/internal/source"
)

// readLimited reads r fully, failing once more than limit bytes arrive.
// A non-positive limit disables the limit.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

// openerFor picks the document reader from the file extension. CSV files
// hold a single region, which is named after the schema's sheet.
func openerFor(filename string, data []byte, schema sheet.Schema) (source.Opener, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return source.XLSXReader(bytes.NewReader(data)), nil
	case ".csv", ".txt":
		return source.CSV(bytes.NewReader(data), schema.SheetName), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
