// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile string
	dbPath     string
	logLevel   string

	// Input flags
	inputFile  string
	seriesName string
	totalScans int

	// Profile flags
	profileMode     string
	firstScan       int
	startVoltage    float64
	endVoltage      float64
	stepVoltage     float64
	scansPerVoltage int
	expIncrement    float64
	expPercentage   float64
	fitScaleDx      float64
	fitHighScans    int
	pairsSpec       string
	pairsCSV        string

	// Comparison flags
	method    string
	sigma     float64
	statName  string
	saveRes   bool
	xMin      float64
	xMax      float64
	yMin      float64
	yMax      float64
	showComps bool

	// Overlay flags
	overlayMode string
	thresholdA  float64
	thresholdB  float64
	alphaA      float64
	alphaB      float64
)

// logger is replaced in PersistentPreRunE once --log-level is known
var logger = zap.NewNop()

// flagKeys maps flag names onto configuration keys. Flags not listed are read directly.
var flagKeys = map[string]string{
	"db":                "db",
	"log-level":         "log-level",
	"mode":              "profile.mode",
	"first-scan":        "profile.first-scan",
	"start-voltage":     "profile.start-voltage",
	"end-voltage":       "profile.end-voltage",
	"step-voltage":      "profile.step-voltage",
	"scans-per-voltage": "profile.scans-per-voltage",
	"exp-increment":     "profile.exp-increment",
	"exp-percentage":    "profile.exp-percentage",
	"fit-scale-dx":      "profile.fit-scale-dx",
	"fit-high-scans":    "profile.fit-high-scans",
	"pairs":             "profile.pairs",
	"pairs-csv":         "profile.pairs-csv",
	"sigma":             "rmsf.sigma",
	"overlay-mode":      "overlay.mode",
	"threshold-a":       "overlay.threshold-a",
	"threshold-b":       "overlay.threshold-b",
	"alpha-a":           "overlay.alpha-a",
	"alpha-b":           "overlay.alpha-b",
}

var rootCmd = &cobra.Command{
	Use:   "ciukit",
	Short: "CIUKit - Collision induced unfolding analysis tool",
	Long: `CIUKit turns raw ion-mobility scan tables into combined CIU fingerprints
(drift time by activation voltage) and compares them.

Supports:
- Linear, exponential, fitted (Boltzmann) and user-defined acquisition profiles
- RMSD and smoothed per-drift-bin RMSF comparisons
- Element-wise mean, standard deviation and variance over replicates
- Pairwise RMSD distance matrices
- Masked and transparent overlays

Settings can be given as flags, in a YAML file passed with --config, or as
CIUKIT_* environment variables (e.g. CIUKIT_PROFILE_START_VOLTAGE).`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(listCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "ciukit.db", "SQLite database holding mobilograms and results")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Plan command flags
	addProfileFlags(planCmd.Flags())
	planCmd.Flags().IntVar(&totalScans, "scans", 0, "Total scans available (0 = exactly what the profile needs)")

	// Combine command flags
	addProfileFlags(combineCmd.Flags())
	combineCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Raw scan table (required)")
	combineCmd.Flags().StringVarP(&seriesName, "name", "n", "", "Name to store the mobilogram under (default: file name)")
	combineCmd.MarkFlagRequired("in")

	// Compare command flags
	compareCmd.Flags().StringVarP(&method, "method", "m", "rmsd", "Comparison: rmsd or rmsf")
	compareCmd.Flags().Float64Var(&sigma, "sigma", 1.0, "Gaussian smoothing width for RMSF in drift bins (0 = none)")
	compareCmd.Flags().BoolVar(&saveRes, "save", true, "Store the result in the database")
	addLimitFlags(compareCmd.Flags())

	// Stats command flags
	statsCmd.Flags().StringVar(&statName, "stat", "mean", "Statistic: mean, stddev or variance")
	statsCmd.Flags().BoolVar(&saveRes, "save", true, "Store the result in the database")
	addLimitFlags(statsCmd.Flags())

	// Distance command flags
	distanceCmd.Flags().BoolVar(&saveRes, "save", true, "Store the result in the database")
	addLimitFlags(distanceCmd.Flags())

	// Overlay command flags
	overlayCmd.Flags().StringVar(&overlayMode, "overlay-mode", "transparent", "Overlay mode: transparent or mask")
	overlayCmd.Flags().Float64Var(&thresholdA, "threshold-a", 0.25, "Mask threshold of the first mobilogram, as a fraction of its max")
	overlayCmd.Flags().Float64Var(&thresholdB, "threshold-b", 0.25, "Mask threshold of the second mobilogram, as a fraction of its max")
	overlayCmd.Flags().Float64Var(&alphaA, "alpha-a", -1, "Opacity of the first mobilogram (default depends on mode)")
	overlayCmd.Flags().Float64Var(&alphaB, "alpha-b", -1, "Opacity of the second mobilogram (default depends on mode)")
	addLimitFlags(overlayCmd.Flags())

	// List command flags
	listCmd.Flags().BoolVar(&showComps, "comparisons", false, "Also list stored comparison results")
}

func addProfileFlags(fs *pflag.FlagSet) {
	fs.StringVar(&profileMode, "mode", "linear", "Acquisition profile: linear, exponential, fitted or user")
	fs.IntVar(&firstScan, "first-scan", 0, "Index of the first scan to use")
	fs.Float64Var(&startVoltage, "start-voltage", 0, "First activation voltage")
	fs.Float64Var(&endVoltage, "end-voltage", 0, "Last activation voltage")
	fs.Float64Var(&stepVoltage, "step-voltage", 0, "Voltage increment")
	fs.IntVar(&scansPerVoltage, "scans-per-voltage", 0, "Scans acquired at each voltage")
	fs.Float64Var(&expIncrement, "exp-increment", 0, "Exponential: scans added per step past the threshold")
	fs.Float64Var(&expPercentage, "exp-percentage", 0, "Exponential: threshold as % of the voltage range")
	fs.Float64Var(&fitScaleDx, "fit-scale-dx", 0, "Fitted: sigmoid width in volts")
	fs.IntVar(&fitHighScans, "fit-high-scans", 0, "Fitted: scans per voltage at the high plateau (0 = 2x scans-per-voltage)")
	fs.StringVar(&pairsSpec, "pairs", "", "User-defined voltage:scans pairs, e.g. '5:2;10:4'")
	fs.StringVar(&pairsCSV, "pairs-csv", "", "User-defined voltage,scans CSV file")
}

func addLimitFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&xMin, "xmin", 0, "Lower voltage limit for alignment")
	fs.Float64Var(&xMax, "xmax", 0, "Upper voltage limit for alignment")
	fs.Float64Var(&yMin, "ymin", 0, "Lower drift bin limit for alignment")
	fs.Float64Var(&yMax, "ymax", 0, "Upper drift bin limit for alignment")
}

// setup loads configuration and builds the logger for the command being run
func setup(cmd *cobra.Command, args []string) error {
	viper.SetEnvPrefix("CIUKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	// Bind only the flags of the running command so shared keys resolve to it
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = viper.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	l, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	logger = l

	if configFile != "" {
		logger.Debug("Loaded configuration", zap.String("file", viper.ConfigFileUsed()))
	}

	return nil
}
