package commands

// scopeRequirement names the command-group relation a subcommand needs.
type scopeRequirement struct {
	Group string
	Sub   string
}

// commandScopes is the static gating table for administrative commands.
// The dispatcher consults it before running a command body; an agent
// passes with execute over either group:<group> or group:<group>_<sub>.
// Commands absent from the table are ungated.
var commandScopes = map[string]scopeRequirement{
	"grant":  {Group: "access", Sub: "grant"},
	"revoke": {Group: "access", Sub: "revoke"},
	"list":   {Group: "access", Sub: "list"},
	"clear":  {Group: "access", Sub: "clear"},
	"sync":   {Group: "access", Sub: "sync"},
}
