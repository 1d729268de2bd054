package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/sells-group/housing-transit/internal/fetcher"
)

// openTable returns a row reader for a tabular input. Files ending in .xlsx
// are read from their first worksheet; anything else is parsed as CSV.
func openTable(path string) (csvutil.Reader, func(), error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, nil, err
		}
		return &sliceReader{rows: rows}, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return csvReader(f), func() { _ = f.Close() }, nil
}

func csvReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(utf8Reader(r))
	cr.FieldsPerRecord = -1
	return cr
}

// sliceReader serves pre-read worksheet rows to csvutil.
type sliceReader struct {
	rows [][]string
	next int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}
