package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/lpctl/luckperms"
)

var deleteUserYes bool

// userCmd groups the user subcommands
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all users known to LuckPerms",
	Args:    cobra.NoArgs,
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := ops.ListUserIdentifiers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUserList(users))
		return nil
	},
}

var userInfoCmd = &cobra.Command{
	Use:     "info <user>",
	Short:   "Show a user's groups and nodes",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := ops.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(user))
		return nil
	},
}

var userCreateCmd = &cobra.Command{
	Use:     "create <uuid> <username>",
	Short:   "Create or update a user record",
	Args:    cobra.ExactArgs(2),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid unique id %q: %w", args[0], err)
		}
		user, err := ops.CreateUser(cmd.Context(), luckperms.UserIdentifier{UniqueID: id, Username: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(user))
		return nil
	},
}

var userRenameCmd = &cobra.Command{
	Use:     "rename <user> <new-username>",
	Short:   "Change a user's stored username",
	Args:    cobra.ExactArgs(2),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		ident, err := ops.ResolveUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := ops.RenameUser(cmd.Context(), *ident, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", ident.Username, args[1])
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:     "delete <user>",
	Short:   "Delete all data stored for a user",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		ident, err := ops.ResolveUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		question := fmt.Sprintf("Delete all data for %s (%s)?", ident.Username, ident.UniqueID)
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), deleteUserYes, question) {
			logger.Info().Msg("Deletion cancelled by user")
			return nil
		}
		if err := ops.DeleteUser(cmd.Context(), *ident); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", ident.Username)
		return nil
	},
}

func trackMoveCmd(verb string) *cobra.Command {
	return &cobra.Command{
		Use:     verb + " <user> <track>",
		Short:   fmt.Sprintf("%s a user along a track", map[string]string{"promote": "Promote", "demote": "Demote"}[verb]),
		Args:    cobra.ExactArgs(2),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := ops.ResolveUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			move := ops.Promote
			if verb == "demote" {
				move = ops.Demote
			}
			resp, err := move(cmd.Context(), *ident, args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTrackMove(*ident, args[1], resp))
			return nil
		},
	}
}

func init() {
	userDeleteCmd.Flags().BoolVarP(&deleteUserYes, "yes", "y", false, "skip confirmation prompt")

	userCmd.AddCommand(userListCmd, userInfoCmd, userCreateCmd, userRenameCmd, userDeleteCmd)
	userCmd.AddCommand(trackMoveCmd("promote"), trackMoveCmd("demote"))
	userCmd.AddCommand(subjectCommands(luckperms.ActionTargetUser)...)
	rootCmd.AddCommand(userCmd)
}
