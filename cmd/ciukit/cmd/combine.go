package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/CIUKit/pkg/combine"
	"github.com/ChrisMcGann/CIUKit/pkg/core"
	"github.com/ChrisMcGann/CIUKit/pkg/reader/imms"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine raw scans into a CIU fingerprint and store it",
	Long: `Read a raw scan table (rows = drift bins, columns = scans), sum the scans of
every voltage step of the acquisition profile, and store the resulting
drift time by voltage matrix in the database.

Examples:
  # Linear ramp, stored under the file name
  ciukit combine --in apo.txt --start-voltage 5 --end-voltage 50 --step-voltage 5 --scans-per-voltage 3

  # Exponential profile from a config file
  ciukit combine --in holo.txt --name holo --config ciu.yaml`,
	RunE: runCombine,
}

func runCombine(cmd *cobra.Command, args []string) error {
	// Validate input file exists
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	p, err := profileFromConfig()
	if err != nil {
		return err
	}

	inFile, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer inFile.Close()

	defaultName := seriesName
	if defaultName == "" {
		defaultName = strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("Combining %s into %s...\n", inputFile, store.Path())
	fmt.Printf("Profile: %s\n", p.Mode())

	reader := imms.NewReader(inFile, defaultName)
	count := 0

	for reader.Next() {
		series := reader.Series()
		logger.Debug("Read raw scan series",
			zap.String("name", series.Name),
			zap.Int("driftBins", series.DriftBins()),
			zap.Int("scans", series.TotalScans()),
		)
		if !series.StandardDriftBins() {
			logger.Debug("Drift bin count differs from instrument default",
				zap.String("name", series.Name),
				zap.Int("driftBins", series.DriftBins()),
				zap.Int("default", core.DefaultDriftBins),
			)
		}

		cim, err := combine.Run(series, p)
		if err != nil {
			return fmt.Errorf("failed to combine %s: %w", series.Name, err)
		}

		if err := store.SaveMobilogram(cmd.Context(), cim); err != nil {
			return fmt.Errorf("failed to store %s: %w", cim.Name, err)
		}

		if used := cim.Plan.End(); used < series.TotalScans() {
			logger.Info("Trailing scans not used by profile",
				zap.String("name", series.Name),
				zap.Int("used", used),
				zap.Int("available", series.TotalScans()),
			)
		}

		shape := cim.Shape()
		fmt.Printf("Stored %s: %d drift bins x %d voltages (%.1f V to %.1f V)\n",
			cim.Name, shape[0], shape[1], cim.VoltageAxis[0], cim.VoltageAxis[len(cim.VoltageAxis)-1])
		count++
	}

	if err := reader.Err(); err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("no scan data found in %s", inputFile)
	}

	fmt.Printf("\nCombination complete!\n")
	fmt.Printf("Processed: %d series\n", count)
	fmt.Printf("Output: %s\n", store.Path())

	return nil
}
