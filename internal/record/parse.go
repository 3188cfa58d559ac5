package record

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is matched by a FormatError raised for input without a header line.
var ErrNoHeader = errors.New("no header row")

// FormatError is the only hard failure of the ingestor.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "format error: " + e.Reason }

func (e *FormatError) Is(target error) bool { return target == ErrNoHeader }

// Parse converts comma-delimited text into records, one per non-blank data line.
//
// The first line is the header. Cells are split positionally on commas with no
// quoting support, trimmed, and typed as Number when they hold a finite decimal
// and Text otherwise. Header positions past the end of a short row are left
// out of that row's record. The date column is never typed as a number.
func Parse(raw string) ([]Record, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &FormatError{Reason: "input has no rows"}
	}
	lines := strings.Split(raw, "\n")
	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	out := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, ",")
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i >= len(cells) {
				break
			}
			cell := strings.TrimSpace(cells[i])
			if h == DateField {
				rec[h] = Text(cell)
				continue
			}
			// later duplicate headers overwrite earlier ones
			rec[h] = Infer(cell)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseReader reads r fully and parses it.
func ParseReader(r io.Reader) ([]Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return Parse(string(b))
}
