package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadImportFile loads import records from a CSV or JSON file, chosen by
// extension. CSV cells are kept as text; blank header columns are dropped.
func ReadImportFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported import file %s: use .csv or .json", path)
	}
}

func parseCSV(data []byte) ([]map[string]any, error) {
	// Spreadsheet exports often start with a byte order mark
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records := []map[string]any{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		rec := make(map[string]any, len(header))
		for i, col := range header {
			col = strings.TrimSpace(col)
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
}

func parseJSON(data []byte) ([]map[string]any, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON records: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse JSON records: %w", err)
	}
	return wrapped.Records, nil
}
