package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []VoltageScans
		wantErr bool
	}{
		{"semicolon separated", "5:2;10:4", []VoltageScans{{5, 2}, {10, 4}}, false},
		{"comma separated with spaces", " 5:2 , 10.5:4 ", []VoltageScans{{5, 2}, {10.5, 4}}, false},
		{"trailing separator", "5:2;", []VoltageScans{{5, 2}}, false},
		{"empty", "", nil, false},
		{"missing scans", "5", nil, true},
		{"bad voltage", "x:2", nil, true},
		{"bad scans", "5:two", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePairs(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPairs(t *testing.T) {
	pairs := []VoltageScans{{5, 2}, {10.5, 4}}
	assert.Equal(t, "5:2;10.5:4", FormatPairs(pairs))

	parsed, err := ParsePairs(FormatPairs(pairs))
	require.NoError(t, err)
	assert.Equal(t, pairs, parsed)
}

func TestLoadPairsCSV(t *testing.T) {
	input := "voltage,scans\n5,2\n10,4\n15,6\n"

	pairs, err := LoadPairsCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []VoltageScans{{5, 2}, {10, 4}, {15, 6}}, pairs)
}

func TestLoadPairsCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"zero scans", "voltage,scans\n5,0\n"},
		{"non numeric", "voltage,scans\n5,abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPairsCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
