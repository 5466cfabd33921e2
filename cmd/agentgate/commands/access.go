package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/relation"
)

// accessApp is built once per invocation by the access group's
// PersistentPreRunE and shared by its subcommands.
var accessApp *app

var (
	accessListSubject  string
	accessClearSubject string
	accessClearSource  string
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Manage permission relations",
	Long: `Grant, revoke, list and clear permission relations, and sync the
config-derived relation set. Subcommands are gated on the calling
agent's command-group relations; the trusted operator is never gated.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		accessApp = a

		if req, ok := commandScopes[cmd.Name()]; ok {
			if err := a.requireScope(cmd.Context(), req.Group, req.Sub); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if accessApp != nil {
			accessApp.drain()
		}
	},
}

var accessGrantCmd = &cobra.Command{
	Use:   "grant <agent> <relation> <objectType> <objectId>",
	Short: "Grant a relation to an agent",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := relation.Ref{
			SubjectType: relation.TypeAgent,
			SubjectID:   args[0],
			Relation:    args[1],
			ObjectType:  args[2],
			ObjectID:    args[3],
		}
		if err := accessApp.store.Grant(cmd.Context(), ref, relation.SourceManual); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "granted %s %s over %s:%s\n",
			ref.SubjectID, ref.Relation, ref.ObjectType, ref.ObjectID)
		return nil
	},
}

var accessRevokeCmd = &cobra.Command{
	Use:   "revoke <agent> <relation> <objectType> <objectId>",
	Short: "Revoke a relation from an agent",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := relation.Ref{
			SubjectType: relation.TypeAgent,
			SubjectID:   args[0],
			Relation:    args[1],
			ObjectType:  args[2],
			ObjectID:    args[3],
		}
		removed, err := accessApp.store.Revoke(cmd.Context(), ref)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no such relation: %s %s over %s:%s",
				ref.SubjectID, ref.Relation, ref.ObjectType, ref.ObjectID)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "revoked")
		return nil
	},
}

var accessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List relations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tuples, err := accessApp.store.List(cmd.Context(), relation.Filter{
			SubjectID: accessListSubject,
		})
		if err != nil {
			return err
		}
		for _, tuple := range tuples {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s:%s\t(%s)\n",
				tuple.SubjectID, tuple.Relation, tuple.ObjectType, tuple.ObjectID, tuple.Source)
		}
		return nil
	},
}

var accessClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove relations in bulk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if accessClearSubject == "" && accessClearSource == "" {
			return fmt.Errorf("refusing to clear all relations; pass --agent or --source")
		}
		removed, err := accessApp.store.Clear(cmd.Context(), relation.ClearFilter{
			SubjectID: accessClearSubject,
			Source:    accessClearSource,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d relations\n", removed)
		return nil
	},
}

var accessSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate config-derived relations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := accessApp.store.SyncFromConfig(cmd.Context(), accessApp.config)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d, granted %d\n", result.Cleared, result.Granted)
		return nil
	},
}

func init() {
	accessListCmd.Flags().StringVar(&accessListSubject, "agent", "", "Only relations of this agent")
	accessClearCmd.Flags().StringVar(&accessClearSubject, "agent", "", "Only relations of this agent")
	accessClearCmd.Flags().StringVar(&accessClearSource, "source", "", "Only relations from this source (config|manual)")

	accessCmd.AddCommand(accessGrantCmd)
	accessCmd.AddCommand(accessRevokeCmd)
	accessCmd.AddCommand(accessListCmd)
	accessCmd.AddCommand(accessClearCmd)
	accessCmd.AddCommand(accessSyncCmd)
}
