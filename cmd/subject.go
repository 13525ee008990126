package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/lpctl/luckperms"
	"github.com/s0up4200/lpctl/operations"
)

// subjectCommands builds the node, meta, check and search subcommands shared by
// the user and group commands
func subjectCommands(kind luckperms.ActionTargetType) []*cobra.Command {
	ref := "<" + string(kind) + ">"

	resolve := func(cmd *cobra.Command, arg string) (operations.Subject, error) {
		return ops.ResolveSubject(cmd.Context(), kind, arg)
	}

	var filterExpr, preset string
	nodesCmd := &cobra.Command{
		Use:     "nodes " + ref,
		Short:   fmt.Sprintf("List the nodes set on a %s", kind),
		Args:    cobra.ExactArgs(1),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFilter(filterExpr, preset)
			if err != nil {
				return err
			}

			subject, err := resolve(cmd, args[0])
			if err != nil {
				return err
			}
			nodes, err := ops.Nodes(cmd.Context(), subject)
			if err != nil {
				return err
			}
			nodes, err = ops.FilterNodes(nodes, f)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodes("Nodes of "+subject.String(), nodes))
			return nil
		},
	}
	nodesCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	nodesCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config (names are case-insensitive)")

	var addFlags nodeFlags
	addCmd := &cobra.Command{
		Use:     "add " + ref + " <key>...",
		Short:   fmt.Sprintf("Add nodes to a %s", kind),
		Args:    cobra.MinimumNArgs(2),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := addFlags.build(args[1:], time.Now())
			if err != nil {
				return err
			}
			subject, err := resolve(cmd, args[0])
			if err != nil {
				return err
			}
			if err := ops.AddNodes(cmd.Context(), subject, nodes); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodes("Added to "+subject.String(), nodes))
			return nil
		},
	}
	addFlags.register(addCmd)

	var removeContexts []string
	removeCmd := &cobra.Command{
		Use:     "remove " + ref + " <key>...",
		Short:   fmt.Sprintf("Remove nodes from a %s by key", kind),
		Long:    "Remove every stored node with one of the given keys. With --context only nodes with exactly those contexts are removed.",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			contexts, err := parseContexts(removeContexts)
			if err != nil {
				return err
			}
			subject, err := resolve(cmd, args[0])
			if err != nil {
				return err
			}
			stored, err := ops.Nodes(cmd.Context(), subject)
			if err != nil {
				return err
			}

			selected := selectNodes(stored, args[1:], contexts)
			if len(selected) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching nodes to remove")
				return nil
			}
			if err := ops.RemoveNodes(cmd.Context(), subject, selected); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodes("Removed from "+subject.String(), selected))
			return nil
		},
	}
	removeCmd.Flags().StringArrayVarP(&removeContexts, "context", "c", nil, "only remove nodes with these contexts (repeatable key=value)")

	var setFlags nodeFlags
	var setYes bool
	setCmd := &cobra.Command{
		Use:     "set " + ref + " [key]...",
		Short:   fmt.Sprintf("Replace all nodes on a %s", kind),
		Long:    "Replace every node on the subject with the given keys. Without keys all nodes are cleared.",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := setFlags.build(args[1:], time.Now())
			if err != nil {
				return err
			}
			subject, err := resolve(cmd, args[0])
			if err != nil {
				return err
			}

			question := fmt.Sprintf("Replace all nodes on %s with %d nodes?", subject, len(nodes))
			if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), setYes, question) {
				logger.Info().Msg("Cancelled by user")
				return nil
			}
			if err := ops.SetNodes(cmd.Context(), subject, nodes); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodes("Nodes of "+subject.String(), nodes))
			return nil
		},
	}
	setFlags.register(setCmd)
	setCmd.Flags().BoolVarP(&setYes, "yes", "y", false, "skip confirmation prompt")

	metaCmd := &cobra.Command{
		Use:     "meta " + ref,
		Short:   fmt.Sprintf("Show the resolved metadata of a %s", kind),
		Args:    cobra.ExactArgs(1),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := resolve(cmd, args[0])
			if err != nil {
				return err
			}
			metas, err := ops.Metadata(cmd.Context(), subject)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMetadata(subject, metas))
			return nil
		},
	}

	var checkContexts []string
	var nonContextual bool
	checkCmd := &cobra.Command{
		Use:     "check " + ref + " <permission>...",
		Short:   fmt.Sprintf("Check permissions of a %s", kind),
		Args:    cobra.MinimumNArgs(2),
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := queryOptions(checkContexts, nonContextual)
			if err != nil {
				return err
			}
			subject, err := resolve(cmd, args[0])
			if err != nil {
				return err
			}

			result := ops.CheckPermissions(cmd.Context(), subject, args[1:], query)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCheckResults(result))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(result.Failed), result.Requested)
			}
			return nil
		},
	}
	checkCmd.Flags().StringArrayVarP(&checkContexts, "context", "c", nil, "query context as key=value (repeatable)")
	checkCmd.Flags().BoolVar(&nonContextual, "non-contextual", false, "ignore contexts when resolving")

	var search searchFlags
	searchCmd := &cobra.Command{
		Use:     "search",
		Short:   fmt.Sprintf("Find %ss holding matching nodes", kind),
		Args:    cobra.NoArgs,
		PreRunE: initializeApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := search.request()
			if err != nil {
				return err
			}
			results, err := ops.Search(cmd.Context(), kind, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSearchResults(results))
			return nil
		},
	}
	search.register(searchCmd)

	return []*cobra.Command{nodesCmd, addCmd, removeCmd, setCmd, metaCmd, checkCmd, searchCmd}
}
