package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/CIUKit/pkg/compare"
)

var distanceCmd = &cobra.Command{
	Use:   "distance [name...]",
	Short: "Pairwise RMSD matrix of stored fingerprints",
	Long: `Align stored fingerprints and compute the RMSD between every pair. Only the
upper triangle is filled. With no names, every stored mobilogram is used.

Examples:
  ciukit distance
  ciukit distance apo holo ligandA ligandB`,
	RunE: runDistance,
}

func runDistance(cmd *cobra.Command, args []string) error {
	limits, err := alignLimits(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		stored, err := store.ListMobilograms(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range stored {
			args = append(args, s.Name)
		}
	}

	aligned, err := loadAligned(cmd.Context(), store, args, limits)
	if err != nil {
		return err
	}

	res, err := compare.DistanceMatrix(aligned.Matrices(), names(aligned))
	if err != nil {
		return fmt.Errorf("failed to compute distances: %w", err)
	}

	// Header row
	fmt.Printf("%-12s", "")
	for _, l := range res.Labels {
		fmt.Printf(" %10.10s", l)
	}
	fmt.Println()

	n := len(res.Labels)
	for i := 0; i < n; i++ {
		fmt.Printf("%-12.12s", res.Labels[i])
		for j := 0; j < n; j++ {
			if j <= i {
				fmt.Printf(" %10s", "-")
				continue
			}
			fmt.Printf(" %10.2f", res.Distances.At(i, j))
		}
		fmt.Println()
	}

	return saveResult(cmd.Context(), store, res, res.Labels, "", limits)
}
