package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/lpctl/luckperms"
)

var deleteGroupYes bool

// groupCmd groups the group subcommands
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all groups",
	Args:    cobra.NoArgs,
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := client.ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGroupList(groups))
		return nil
	},
}

var groupInfoCmd = &cobra.Command{
	Use:     "info <group>",
	Short:   "Show a group's weight, metadata and nodes",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := ops.GetGroup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGroup(group))
		return nil
	},
}

var groupCreateCmd = &cobra.Command{
	Use:     "create <group>",
	Short:   "Create a group",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := ops.CreateGroup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGroup(group))
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:     "delete <group>",
	Short:   "Delete a group",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), deleteGroupYes, fmt.Sprintf("Delete group %s?", args[0])) {
			logger.Info().Msg("Deletion cancelled by user")
			return nil
		}
		if err := ops.DeleteGroup(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
		return nil
	},
}

func init() {
	groupDeleteCmd.Flags().BoolVarP(&deleteGroupYes, "yes", "y", false, "skip confirmation prompt")

	groupCmd.AddCommand(groupListCmd, groupInfoCmd, groupCreateCmd, groupDeleteCmd)
	groupCmd.AddCommand(subjectCommands(luckperms.ActionTargetGroup)...)
	rootCmd.AddCommand(groupCmd)
}
