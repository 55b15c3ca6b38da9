package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored fingerprints",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	ms, err := store.ListMobilograms(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %6s %8s %-12s %s\n", "Name", "Bins", "Voltages", "Profile", "Created")
	for _, m := range ms {
		fmt.Printf("%-20s %6d %8d %-12s %s\n", m.Name, m.DriftBins, m.VoltageSteps, m.ProfileMode, m.CreationDate)
	}
	fmt.Printf("\n%d mobilograms in %s\n", len(ms), store.Path())

	if !showComps {
		return nil
	}

	comps, err := store.ListComparisons(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("\n%-5s %-10s %-30s %10s %s\n", "ID", "Kind", "Inputs", "Value", "Parameters")
	for _, c := range comps {
		fmt.Printf("%-5d %-10s %-30s %10.2f %s\n", c.ID, c.Kind, strings.Join(c.Labels, ","), c.Value, c.Parameters)
	}

	return nil
}
