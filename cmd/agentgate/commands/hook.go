package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agentgate/agentgate/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Answer a pre-tool-use hook on stdin",
	Long: `Read a pre-tool-use hook payload from stdin and write the decision
to stdout. Wire this as the agent's pre-tool-use hook command. The
calling agent is identified by AGENTGATE_AGENT_ID; when unset the
caller is the trusted operator and everything is allowed.`,
	RunE: runHook,
}

func runHook(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.drain()

	h := hook.NewHandler(a.enforcer, a.settings.AgentID)
	return h.Run(cmd.Context(), os.Stdin, os.Stdout)
}
