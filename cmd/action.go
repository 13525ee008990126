package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/lpctl/luckperms"
)

var (
	actionTargetType string
	actionTargetID   string
	actionTarget     string
	actionSourceID   string
	actionSourceName string
)

// actionCmd groups the action log subcommands
var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Write to the LuckPerms action log",
}

var actionSubmitCmd = &cobra.Command{
	Use:   "submit <description>",
	Short: "Submit an entry to the action log",
	Long: `Submit a free-form entry to the action log. The source defaults to the
configured actor.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runActionSubmit,
}

func init() {
	actionSubmitCmd.Flags().StringVar(&actionTargetType, "target-type", string(luckperms.ActionTargetUser), "target type (user, group, track)")
	actionSubmitCmd.Flags().StringVar(&actionTarget, "target", "", "target name")
	actionSubmitCmd.Flags().StringVar(&actionTargetID, "target-id", "", "target unique id (users only)")
	actionSubmitCmd.Flags().StringVar(&actionSourceID, "source-id", "", "source unique id (default actor.unique_id)")
	actionSubmitCmd.Flags().StringVar(&actionSourceName, "source-name", "", "source name (default actor.name)")
	_ = actionSubmitCmd.MarkFlagRequired("target")

	actionCmd.AddCommand(actionSubmitCmd)
	rootCmd.AddCommand(actionCmd)
}

func runActionSubmit(cmd *cobra.Command, args []string) error {
	action, err := buildAction(args[0])
	if err != nil {
		return err
	}

	if err := ops.SubmitAction(cmd.Context(), action); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Submitted action for %s %s\n", action.Target.Type, action.Target.Name)
	return nil
}

func buildAction(description string) (luckperms.Action, error) {
	targetType := luckperms.ActionTargetType(actionTargetType)
	switch targetType {
	case luckperms.ActionTargetUser, luckperms.ActionTargetGroup, luckperms.ActionTargetTrack:
	default:
		return luckperms.Action{}, fmt.Errorf("invalid target type %q", actionTargetType)
	}

	source := luckperms.ActionSource{UniqueID: cfg.Actor.ID(), Name: cfg.Actor.Name}
	if actionSourceID != "" {
		id, err := uuid.Parse(actionSourceID)
		if err != nil {
			return luckperms.Action{}, fmt.Errorf("invalid source id: %w", err)
		}
		source.UniqueID = id
	}
	if actionSourceName != "" {
		source.Name = actionSourceName
	}

	target := luckperms.ActionTarget{Name: actionTarget, Type: targetType}
	if actionTargetID != "" {
		if targetType != luckperms.ActionTargetUser {
			return luckperms.Action{}, fmt.Errorf("--target-id only applies to user targets")
		}
		id, err := uuid.Parse(actionTargetID)
		if err != nil {
			return luckperms.Action{}, fmt.Errorf("invalid target id: %w", err)
		}
		target.UniqueID = &id
	}

	return luckperms.Action{Source: source, Target: target, Description: description}, nil
}
