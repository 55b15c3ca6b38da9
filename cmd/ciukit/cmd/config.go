package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChrisMcGann/CIUKit/pkg/align"
	"github.com/ChrisMcGann/CIUKit/pkg/overlay"
	"github.com/ChrisMcGann/CIUKit/pkg/profile"
	"github.com/ChrisMcGann/CIUKit/pkg/writer/sqlite"
)

// profileFromConfig builds the acquisition profile from flags, config file and environment
func profileFromConfig() (profile.Profile, error) {
	cfg := profile.Config{
		Mode:            viper.GetString("profile.mode"),
		FirstScan:       viper.GetInt("profile.first-scan"),
		StartVoltage:    viper.GetFloat64("profile.start-voltage"),
		EndVoltage:      viper.GetFloat64("profile.end-voltage"),
		StepVoltage:     viper.GetFloat64("profile.step-voltage"),
		ScansPerVoltage: viper.GetInt("profile.scans-per-voltage"),
		ExpIncrement:    viper.GetFloat64("profile.exp-increment"),
		ExpPercentage:   viper.GetFloat64("profile.exp-percentage"),
		FitScaleDx:      viper.GetFloat64("profile.fit-scale-dx"),
		FitHighScans:    viper.GetInt("profile.fit-high-scans"),
	}

	pairs, err := pairsFromConfig()
	if err != nil {
		return nil, err
	}
	cfg.Pairs = pairs

	p, err := cfg.Profile()
	if err != nil {
		return nil, fmt.Errorf("invalid acquisition profile: %w", err)
	}
	return p, nil
}

// pairsFromConfig reads user-defined pairs from a CSV file, a "v:s;v:s" string or a
// YAML list of {voltage, scans} entries
func pairsFromConfig() ([]profile.VoltageScans, error) {
	if path := viper.GetString("profile.pairs-csv"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open pairs CSV: %w", err)
		}
		defer f.Close()

		pairs, err := profile.LoadPairsCSV(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load pairs CSV %s: %w", path, err)
		}
		return pairs, nil
	}

	switch v := viper.Get("profile.pairs").(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return profile.ParsePairs(v)
	default:
		var pairs []profile.VoltageScans
		if err := viper.UnmarshalKey("profile.pairs", &pairs); err != nil {
			return nil, fmt.Errorf("invalid profile pairs: %w", err)
		}
		return pairs, nil
	}
}

// overlayFromConfig starts from the mode defaults and applies any configured values
func overlayFromConfig() (overlay.Config, error) {
	mode, err := overlay.ParseMode(viper.GetString("overlay.mode"))
	if err != nil {
		return overlay.Config{}, err
	}

	cfg := overlay.DefaultConfig(mode)
	if mode == overlay.Mask {
		cfg.ThresholdA = viper.GetFloat64("overlay.threshold-a")
		cfg.ThresholdB = viper.GetFloat64("overlay.threshold-b")
	}
	if a := viper.GetFloat64("overlay.alpha-a"); a >= 0 {
		cfg.AlphaA = a
	}
	if b := viper.GetFloat64("overlay.alpha-b"); b >= 0 {
		cfg.AlphaB = b
	}

	return cfg, cfg.Validate()
}

// alignLimits returns explicit alignment limits when any limit flag is set
func alignLimits(cmd *cobra.Command) (*align.Limits, error) {
	names := []string{"xmin", "xmax", "ymin", "ymax"}
	set := 0
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			set++
		}
	}

	switch set {
	case 0:
		return nil, nil
	case len(names):
		return &align.Limits{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}, nil
	default:
		return nil, fmt.Errorf("alignment limits need all of --xmin, --xmax, --ymin and --ymax")
	}
}

// openStore opens the configured database
func openStore(ctx context.Context) (*sqlite.Store, error) {
	path := viper.GetString("db")
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return store, nil
}
