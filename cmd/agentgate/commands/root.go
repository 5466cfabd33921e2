// Package commands provides the CLI commands for AgentGate.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var logLevel string

var rootCmd = &cobra.Command{
	Use:   "agentgate",
	Short: "AgentGate - authorization gate for agent automation",
	Long: `AgentGate decides which shell commands, tools, sessions and contacts
an agent may touch. It keeps permission relations in a local database,
answers pre-tool-use hooks, and serves a small decision HTTP API.

Run 'agentgate serve' to start the decision server, or wire
'agentgate hook' as a pre-tool-use hook.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("agentgate %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(accessCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
