package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ── CSV File Source ─────────────────────────────────────────
// Reads a product export with a header row.

type csvFileSource struct{}

func init() { Register(&csvFileSource{}) }

func (s *csvFileSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "csv_file",
		Label: "CSV File",
		ConfigFields: []ConfigField{
			{Key: "filePath", Label: "File Path", Required: true, Help: "Path to the CSV file"},
			{Key: "delimiter", Label: "Delimiter", Default: ",", Help: "Column delimiter"},
		},
	}
}

func (s *csvFileSource) Read(ctx context.Context, cfg Config) (<-chan Record, <-chan error) {
	return emit(ctx, func() ([]Record, error) { return readCSVFile(cfg) })
}

func readCSVFile(cfg Config) ([]Record, error) {
	filePath := cfg.String("filePath")
	if filePath == "" {
		return nil, errors.New("filePath is required")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delim := cfg.String("delimiter"); delim != "" {
		reader.Comma = rune(delim[0])
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv file")
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for j, h := range headers {
			if j < len(row) {
				rec[strings.TrimSpace(h)] = inferCSVValue(row[j])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// inferCSVValue keeps numbers as float64 and everything else as a string.
func inferCSVValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
