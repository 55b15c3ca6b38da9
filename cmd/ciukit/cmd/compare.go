package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChrisMcGann/CIUKit/pkg/align"
	"github.com/ChrisMcGann/CIUKit/pkg/compare"
	"github.com/ChrisMcGann/CIUKit/pkg/core"
	"github.com/ChrisMcGann/CIUKit/pkg/writer/sqlite"
)

var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Compare two stored fingerprints by RMSD or RMSF",
	Long: `Align two stored fingerprints to a shared voltage and drift window and compute
their root mean square deviation (percent), or the per drift bin RMSF profile.

Examples:
  ciukit compare apo holo
  ciukit compare apo holo --method rmsf --sigma 2
  ciukit compare apo holo --xmin 10 --xmax 40 --ymin 20 --ymax 120`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	limits, err := alignLimits(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	aligned, err := loadAligned(cmd.Context(), store, args, limits)
	if err != nil {
		return err
	}
	a, b := aligned.Pair()

	var (
		res    compare.Result
		params string
	)
	switch strings.ToLower(method) {
	case "rmsd":
		r, err := compare.RMSD(a.Matrix, b.Matrix)
		if err != nil {
			return fmt.Errorf("failed to compare: %w", err)
		}
		fmt.Printf("RMSD %s vs %s: %.2f%%\n", a.Name, b.Name, r.RMSD)
		res = r

	case "rmsf":
		s := viper.GetFloat64("rmsf.sigma")
		r, err := compare.RMSF(a.Matrix, b.Matrix, s)
		if err != nil {
			return fmt.Errorf("failed to compare: %w", err)
		}
		fmt.Printf("RMSF %s vs %s (sigma %.2f), overall RMSD %.2f%%\n", a.Name, b.Name, s, r.RMSD)
		fmt.Printf("%-10s %10s\n", "Drift", "RMSF")
		for i, v := range r.Profile {
			fmt.Printf("%-10.2f %10.4f\n", aligned.DriftAxis[i], v)
		}
		res = r
		params = fmt.Sprintf("sigma=%g", s)

	default:
		return fmt.Errorf("invalid method '%s', must be rmsd or rmsf", method)
	}

	return saveResult(cmd.Context(), store, res, names(aligned), params, limits)
}

// loadAligned reads the named mobilograms and crops them to a shared window
func loadAligned(ctx context.Context, store *sqlite.Store, wanted []string, limits *align.Limits) (*align.Result, error) {
	ms := make([]*core.CombinedIonMobilogram, 0, len(wanted))
	for _, name := range wanted {
		m, err := store.LoadMobilogram(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		ms = append(ms, m)
	}

	aligned, err := align.New(logger).AlignAll(ms, limits)
	if err != nil {
		return nil, fmt.Errorf("failed to align: %w", err)
	}
	for _, w := range aligned.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	fmt.Printf("Aligned %d mobilograms: %.1f V to %.1f V, drift %.1f to %.1f\n",
		len(aligned.Mobilograms),
		aligned.VoltageAxis[0], aligned.VoltageAxis[len(aligned.VoltageAxis)-1],
		aligned.DriftAxis[0], aligned.DriftAxis[len(aligned.DriftAxis)-1])

	return aligned, nil
}

func names(res *align.Result) []string {
	out := make([]string, len(res.Mobilograms))
	for i, m := range res.Mobilograms {
		out[i] = m.Name
	}
	return out
}

// saveResult stores res when --save is set
func saveResult(ctx context.Context, store *sqlite.Store, res compare.Result, labels []string, params string, limits *align.Limits) error {
	if !saveRes {
		return nil
	}
	if limits != nil {
		window := fmt.Sprintf("window=%g:%g,%g:%g", limits.XMin, limits.XMax, limits.YMin, limits.YMax)
		if params == "" {
			params = window
		} else {
			params += " " + window
		}
	}

	id, err := store.SaveComparison(ctx, res, labels, params)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	fmt.Printf("Stored %s result #%d\n", res.Kind(), id)
	return nil
}
