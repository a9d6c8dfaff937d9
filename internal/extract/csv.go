package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ExtractCSV renders a CSV file as text: one line per row, cells joined by a
// single space. Empty cells and empty rows are dropped.
func ExtractCSV(ctx context.Context, src Source) (string, error) {
	if len(src.Data) == 0 {
		return "", fmt.Errorf("%w: %w: csv upload is empty", ErrExtractionFailed, ErrMissingInput)
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(src.Data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var lines []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: csv: %v", ErrExtractionFailed, err)
		}

		cells := make([]string, 0, len(record))
		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	}

	return strings.Join(lines, "\n"), nil
}
