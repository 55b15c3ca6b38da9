// Package imms provides streaming readers for raw ion-mobility scan tables exported
// from an instrument extraction step.
//
// A file holds one or more blocks. Each block is a matrix with one row per drift bin
// and one column per scan, values separated by whitespace, commas or tabs. Lines
// starting with '#' are comments, except for the headers
//
//	# name: <series name>
//	# mz_range: <low> <high>
//
// which apply to the block that follows. Blocks are separated by blank lines or by
// a new name header.
package imms

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// maxLineSize bounds a single row; wide acquisitions have thousands of scans.
const maxLineSize = 16 * 1024 * 1024

// Reader provides streaming access to raw scan tables
type Reader struct {
	scanner       *bufio.Scanner
	defaultName   string
	lineNum       int
	blockNum      int
	pendingHeader *header
	currentSeries *core.RawScanSeries
	err           error
}

type header struct {
	name    string
	mzRange [2]float64
	hasMZ   bool
}

// NewReader creates a new reader. Blocks without a name header are named after
// defaultName, suffixed with their position when the file holds more than one.
func NewReader(r io.Reader, defaultName string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Reader{
		scanner:     scanner,
		defaultName: defaultName,
	}
}

// Next advances to the next series. Returns false when no more series or error.
func (r *Reader) Next() bool {
	r.currentSeries = nil

	series, err := r.readSeries()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentSeries = series
	return true
}

// Series returns the current series
func (r *Reader) Series() *core.RawScanSeries {
	return r.currentSeries
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every series in r
func ReadAll(r io.Reader, defaultName string) ([]*core.RawScanSeries, error) {
	reader := NewReader(r, defaultName)

	var out []*core.RawScanSeries
	for reader.Next() {
		out = append(out, reader.Series())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scan data found")
	}
	return out, nil
}

// readSeries reads a single block
func (r *Reader) readSeries() (*core.RawScanSeries, error) {
	h := header{}
	if r.pendingHeader != nil {
		h = *r.pendingHeader
		r.pendingHeader = nil
	}

	var data []float64
	rows, cols := 0, 0

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Blank lines end a block once data has been read
		if line == "" {
			if rows > 0 {
				break
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			key, value, ok := parseHeader(line)
			if !ok {
				continue
			}

			switch key {
			case "name":
				// A new name after data starts the next block
				if rows > 0 {
					r.pendingHeader = &header{name: value}
					return r.build(h, rows, cols, data)
				}
				h.name = value

			case "mz_range", "mzrange":
				lo, hi, err := parseRange(value)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
				}
				h.mzRange = [2]float64{lo, hi}
				h.hasMZ = true
			}
			continue
		}

		// Parse data row
		values, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		if rows == 0 {
			cols = len(values)
		} else if len(values) != cols {
			return nil, fmt.Errorf("line %d: expected %d scans, got %d", r.lineNum, cols, len(values))
		}
		data = append(data, values...)
		rows++
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, io.EOF
	}

	return r.build(h, rows, cols, data)
}

// build turns a parsed block into a validated series
func (r *Reader) build(h header, rows, cols int, data []float64) (*core.RawScanSeries, error) {
	r.blockNum++

	name := h.name
	if name == "" {
		name = r.defaultName
		if r.blockNum > 1 {
			name = fmt.Sprintf("%s_%d", r.defaultName, r.blockNum)
		}
	}

	series, err := core.NewRawScanSeries(name, rows, cols, data)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", r.blockNum, err)
	}
	if h.hasMZ {
		series.MZRange = h.mzRange
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("block %d: %w", r.blockNum, err)
	}

	return series, nil
}

// parseHeader splits "# key: value" lines. Plain comments return ok == false.
func parseHeader(line string) (key, value string, ok bool) {
	body := strings.TrimSpace(strings.TrimLeft(line, "#"))
	parts := strings.SplitN(body, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}

	key = strings.ToLower(strings.TrimSpace(parts[0]))
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(parts[1]), true
}

// parseRange parses "low high" or "low-high"
func parseRange(value string) (float64, float64, error) {
	fields := splitFields(value)
	if len(fields) != 2 {
		fields = strings.SplitN(value, "-", 2)
	}
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid m/z range '%s', expected 'low high'", value)
	}

	lo, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid m/z range low value: %w", err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid m/z range high value: %w", err)
	}

	return lo, hi, nil
}

// parseRow parses one drift bin across all scans
func parseRow(line string) ([]float64, error) {
	fields := splitFields(line)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid intensity in column %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}
