package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nconklindev/tidysheet/internal/types"
)

const (
	CSVMediaType = "text/csv; charset=utf-8"
	ExportSuffix = "_normalized.csv"
)

// ExportDelimitedText writes the header line followed by every row as CSV.
// Lines are padded with empty fields to the widest row so each value stays
// in its original column.
func ExportDelimitedText(headers []string, rows []types.Row) ([]byte, error) {
	width := len(headers)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	record := make([]string, width)
	for i := range record {
		if i < len(headers) {
			record[i] = headers[i]
		}
	}
	if err := writer.Write(record); err != nil {
		return nil, err
	}

	for _, row := range rows {
		for i := range record {
			record[i] = row.At(i).String()
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export serializes ds into a CSV blob named <BaseName>_normalized.csv.
// Rows wider than the header row are exported under blank header fields,
// which is logged as a warning.
func (c *Converter) Export(ds *types.Dataset) (*types.Blob, error) {
	if width := ds.Width(); width > len(ds.Headers) {
		c.log.Warn("Rows extend past the header row; extra columns have blank names",
			"file", ds.BaseName,
			"headers", len(ds.Headers),
			"columns", width,
		)
	}

	data, err := ExportDelimitedText(ds.Headers, ds.Rows)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", ds.BaseName, err)
	}

	return &types.Blob{
		Name:      ds.BaseName + ExportSuffix,
		MediaType: CSVMediaType,
		Data:      data,
	}, nil
}

// WriteBlob saves blob into dir, creating dir if needed, and returns the path.
func WriteBlob(dir string, blob *types.Blob) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, blob.Name)
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
