package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/compare"
)

var statsCmd = &cobra.Command{
	Use:   "stats <name> <name> [name...]",
	Short: "Element-wise mean, standard deviation or variance of stored fingerprints",
	Long: `Align two or more stored fingerprints (typically replicates) and compute the
element-wise mean, population standard deviation or population variance.

Examples:
  ciukit stats rep1 rep2 rep3
  ciukit stats rep1 rep2 rep3 --stat stddev`,
	Args: cobra.MinimumNArgs(2),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := compare.ParseStat(statName)
	if err != nil {
		return err
	}

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

	res, err := compare.Aggregate(s, aligned.Matrices())
	if err != nil {
		return fmt.Errorf("failed to compute %s: %w", s, err)
	}

	r, c := res.Matrix.Dims()
	fmt.Printf("%s over %d mobilograms: %dx%d\n", s, len(args), r, c)
	fmt.Printf("Min: %.4f\n", mat.Min(res.Matrix))
	fmt.Printf("Max: %.4f\n", mat.Max(res.Matrix))
	fmt.Printf("Sum: %.4f\n", mat.Sum(res.Matrix))

	return saveResult(cmd.Context(), store, res, names(aligned), "stat="+string(s), limits)
}
