package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeFloat64 decodes a little-endian float64 blob
func decodeFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}

// encodeMatrix encodes m in row-major order
func encodeMatrix(m mat.Matrix) []byte {
	r, c := m.Dims()
	buf := make([]byte, 0, r*c*8)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		buf = append(buf, encodeFloat64(row)...)
	}
	return buf
}

// decodeMatrix decodes a row-major blob into a rows x cols matrix
func decodeMatrix(blob []byte, rows, cols int) (*mat.Dense, error) {
	data, err := decodeFloat64(blob)
	if err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("matrix blob holds %d values, expected %dx%d", len(data), rows, cols)
	}
	return mat.NewDense(rows, cols, data), nil
}

// encodePlan stores each step as (start, end, voltage)
func encodePlan(plan core.ScanRangePlan) []byte {
	values := make([]float64, 0, len(plan)*3)
	for _, r := range plan {
		values = append(values, float64(r.ScanStart), float64(r.ScanEnd), r.Voltage)
	}
	return encodeFloat64(values)
}

// decodePlan reverses encodePlan
func decodePlan(blob []byte) (core.ScanRangePlan, error) {
	values, err := decodeFloat64(blob)
	if err != nil {
		return nil, err
	}
	if len(values)%3 != 0 {
		return nil, fmt.Errorf("plan blob holds %d values, expected triples", len(values))
	}
	plan := make(core.ScanRangePlan, len(values)/3)
	for i := range plan {
		plan[i] = core.ScanRange{
			ScanStart: int(values[i*3]),
			ScanEnd:   int(values[i*3+1]),
			Voltage:   values[i*3+2],
		}
	}
	return plan, nil
}
