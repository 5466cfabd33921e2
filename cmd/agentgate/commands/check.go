package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/permission"
)

var checkCmd = &cobra.Command{
	Use:   "check <command>...",
	Short: "Check whether a shell command would be allowed",
	Long: `Evaluate a shell command against the calling agent's permissions and
print the decision. Exits non-zero on a denial so scripts can gate on it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.drain()

	command := strings.Join(args, " ")
	scope := permission.ScopeContext{AgentID: a.settings.AgentID}
	decision, err := a.enforcer.CheckBash(cmd.Context(), scope, command)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &permission.DeniedError{
			AgentID: a.settings.AgentID,
			Denied:  "executable:bash",
			Message: decision.Reason,
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "allowed")
	return nil
}
