package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to LuckPerms",
	Long:    `Call the health endpoint of the REST API and display what it reports.`,
	Args:    cobra.NoArgs,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to LuckPerms at %s...\n", client.BaseURL())

	health, err := client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if !health.Healthy {
		fmt.Fprintln(out, "✗ Server reports unhealthy")
	} else {
		fmt.Fprintln(out, "✓ Connection successful!")
	}

	if len(health.Details) > 0 {
		fmt.Fprintf(out, "\nHealth details:\n")
		for _, key := range slices.Sorted(maps.Keys(health.Details)) {
			fmt.Fprintf(out, "- %s: %v\n", key, health.Details[key])
		}
	}

	groups, err := client.ListGroups(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	fmt.Fprintf(out, "\nLuckPerms Statistics:\n")
	fmt.Fprintf(out, "- Total groups: %d\n", len(groups))

	if !health.Healthy {
		return fmt.Errorf("luckperms reported unhealthy")
	}
	return nil
}
