// Package loader reads the housing, rail-stop and neighborhood-boundary inputs
// into model records. Any schema violation aborts the load with a SchemaError.
package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SchemaError reports an input that does not match the expected layout.
type SchemaError struct {
	File   string
	Field  string
	Row    int // 1-based data row; 0 when the problem is in the header
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("loader: %s: row %d: field %q: %s", e.File, e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("loader: %s: field %q: %s", e.File, e.Field, e.Reason)
}

// missingColumns returns the required columns absent from header.
func missingColumns(header, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, r := range required {
		if !have[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// decodeErr converts a csvutil decode failure into a SchemaError when the
// library reports which field failed.
func decodeErr(file string, row int, err error) error {
	var de *csvutil.DecodeError
	if errors.As(err, &de) {
		return &SchemaError{File: file, Field: de.Field, Row: row, Reason: de.Err.Error()}
	}
	return &SchemaError{File: file, Row: row, Reason: err.Error()}
}

// utf8Reader strips a leading byte-order mark, which spreadsheet exports
// prepend to the first header name.
func utf8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
