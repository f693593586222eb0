package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// CSV opens comma or semicolon separated text from r as a document with a
// single region called region. The reader is consumed on the first Open.
func CSV(r io.Reader, region string) Opener {
	consumed := false
	return OpenerFunc(func(ctx context.Context) (Workbook, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if consumed {
			return nil, errors.New("open csv: reader already consumed")
		}
		consumed = true
		return readCSV(r, region)
	})
}

// CSVFile opens the file at path. The region is named after the file
// without its extension.
func CSVFile(path string) Opener {
	region := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return OpenerFunc(func(ctx context.Context) (Workbook, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open csv %s: %w", path, err)
		}
		defer f.Close()
		return readCSV(f, region)
	})
}

func readCSV(r io.Reader, region string) (Workbook, error) {
	br := bufio.NewReader(r)
	skipBOM(br)

	reader := csv.NewReader(newUTF8Sanitizer(br))
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cells := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			if v != "" {
				row[j] = v
			}
		}
		cells[i] = row
	}
	return &csvWorkbook{name: region, grid: &grid{cells: cells}}, nil
}

type csvWorkbook struct {
	name string
	grid *grid
}

func (w *csvWorkbook) Regions() []string { return []string{w.name} }

func (w *csvWorkbook) Region(name string) (Region, error) {
	if name != w.name {
		return nil, regionNotFound(name)
	}
	return w.grid, nil
}

func (w *csvWorkbook) Close() error { return nil }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark written by Windows tools.
func skipBOM(br *bufio.Reader) {
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas, as in spreadsheets exported with a German locale.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

// utf8Sanitizer replaces invalid UTF-8 bytes with U+FFFD while streaming.
type utf8Sanitizer struct {
	r       *bufio.Reader
	pending []byte
}

func newUTF8Sanitizer(r *bufio.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	var buf [utf8.UTFMax]byte
	for n < len(p) {
		r, _, err := s.r.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		size := utf8.EncodeRune(buf[:], r)
		copied := copy(p[n:], buf[:size])
		n += copied
		if copied < size {
			s.pending = append(s.pending, buf[copied:size]...)
		}
	}
	return n, nil
}
