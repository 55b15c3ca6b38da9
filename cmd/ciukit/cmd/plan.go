package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/CIUKit/pkg/profile"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the scan ranges an acquisition profile produces",
	Long: `Print the voltage steps and scan ranges an acquisition profile maps onto.

Examples:
  # Linear ramp from 5 V to 50 V in 5 V steps, 3 scans each
  ciukit plan --start-voltage 5 --end-voltage 50 --step-voltage 5 --scans-per-voltage 3

  # Check a user-defined profile against a 40 scan acquisition
  ciukit plan --mode user --pairs '5:2;10:4;15:6' --scans 40`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := profileFromConfig()
	if err != nil {
		return err
	}

	scans := totalScans
	if scans == 0 {
		if scans, err = profile.RequiredScans(p); err != nil {
			return err
		}
	}

	plan, err := profile.Plan(p, scans)
	if err != nil {
		return fmt.Errorf("failed to plan acquisition: %w", err)
	}

	fmt.Printf("Profile: %s\n", p.Mode())
	fmt.Printf("%-6s %10s %8s %8s %6s\n", "Step", "Voltage", "Start", "End", "Scans")
	for i, r := range plan {
		fmt.Printf("%-6d %10.2f %8d %8d %6d\n", i, r.Voltage, r.ScanStart, r.ScanEnd, r.Scans())
	}
	fmt.Printf("\nScans used: %d of %d\n", plan.End(), scans)

	return nil
}
