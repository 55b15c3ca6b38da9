package profile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// ParsePairs parses a voltage/scan list like "5:2;10:4" or "5:2,10:4".
func ParsePairs(s string) ([]VoltageScans, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var pairs []VoltageScans
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Split(part, ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid pair format '%s', expected 'voltage:scans'", part)
		}

		voltStr := strings.TrimSpace(fields[0])
		scansStr := strings.TrimSpace(fields[1])

		volt, err := strconv.ParseFloat(voltStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid voltage '%s': %w", voltStr, err)
		}

		scans, err := strconv.Atoi(scansStr)
		if err != nil {
			return nil, fmt.Errorf("invalid scan count '%s': %w", scansStr, err)
		}

		pairs = append(pairs, VoltageScans{Voltage: volt, Scans: scans})
	}

	return pairs, nil
}

// LoadPairsCSV reads a voltage/scan table with a "voltage,scans" header.
func LoadPairsCSV(r io.Reader) ([]VoltageScans, error) {
	var rows []*VoltageScans
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	pairs := make([]VoltageScans, 0, len(rows))
	for i, row := range rows {
		if row.Scans <= 0 {
			// header is line 1
			return nil, fmt.Errorf("line %d: scan count must be positive, got %d", i+2, row.Scans)
		}
		pairs = append(pairs, *row)
	}

	return pairs, nil
}

// FormatPairs is the inverse of ParsePairs.
func FormatPairs(pairs []VoltageScans) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s:%d", strconv.FormatFloat(p.Voltage, 'f', -1, 64), p.Scans)
	}
	return strings.Join(parts, ";")
}
