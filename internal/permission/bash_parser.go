package permission

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// interpreterInlineFlags maps general-purpose interpreters to the flags
// that accept inline code. Finding one aborts the entire parse: inline
// code can do anything, so the whole command fails closed.
var interpreterInlineFlags = map[string][]string{
	"python":  {"-c"},
	"python2": {"-c"},
	"python3": {"-c"},
	"node":    {"-e", "--eval", "-p", "--print"},
	"nodejs":  {"-e", "--eval", "-p", "--print"},
	"perl":    {"-e", "-E"},
	"ruby":    {"-e"},
}

// sudoValueFlags are sudo flags that consume the following argument, so
// the wrapped command is the token after the flag's value.
var sudoValueFlags = map[string]bool{
	"-u": true, "-g": true, "-p": true, "-C": true, "-D": true,
	"-h": true, "-r": true, "-t": true, "-T": true, "-U": true,
}

// ParseBashCommand decomposes a command line into the bare names of every
// executable it would run, de-duplicated in first-seen order. Pipelines,
// &&, ||, ; and multi-line scripts decompose through the bash grammar;
// quoting is respected, so operators inside quotes are never mistaken
// for command structure. Environment-variable assignments and
// redirections are not executables. sudo records both itself and the
// command it wraps.
//
// Any failure — a syntax error, a command name the parser cannot resolve
// to a literal, or an interpreter invoked with an inline-code flag —
// returns an error, and callers must fail closed on it.
func ParseBashCommand(command string) (executables []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			executables = nil
			err = fmt.Errorf("command parsing panicked: %v", r)
		}
	}()

	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)

	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}

	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			executables = append(executables, name)
		}
	}

	var walkErr error
	syntax.Walk(file, func(node syntax.Node) bool {
		if walkErr != nil {
			return false
		}
		call, ok := node.(*syntax.CallExpr)
		if !ok {
			return true
		}
		if len(call.Args) == 0 {
			// Pure variable assignment, nothing executes.
			return true
		}

		name, ok := literalWord(call.Args[0])
		if !ok {
			walkErr = fmt.Errorf("dynamic command name cannot be safely resolved")
			return false
		}
		exe := execName(name)
		add(exe)

		if exe == "sudo" {
			wrapped, rest, err := sudoTarget(call.Args[1:])
			if err != nil {
				walkErr = err
				return false
			}
			if wrapped != "" {
				wrappedExe := execName(wrapped)
				add(wrappedExe)
				if flag := inlineCodeFlag(wrappedExe, rest); flag != "" {
					walkErr = fmt.Errorf("interpreter %s invoked with inline code flag %s", wrappedExe, flag)
					return false
				}
			}
		} else if flag := inlineCodeFlag(exe, literalArgs(call.Args[1:])); flag != "" {
			walkErr = fmt.Errorf("interpreter %s invoked with inline code flag %s", exe, flag)
			return false
		}

		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return executables, nil
}

// literalWord resolves a word to its literal string value. Words carrying
// expansions (variables, substitutions) are not literal.
func literalWord(word *syntax.Word) (string, bool) {
	var sb strings.Builder
	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, qp := range p.Parts {
				lit, ok := qp.(*syntax.Lit)
				if !ok {
					return "", false
				}
				sb.WriteString(lit.Value)
			}
		default:
			return "", false
		}
	}
	return sb.String(), true
}

// literalArgs resolves the literal arguments of a call, skipping words
// that carry expansions. Flags are always literal, which is all the
// inline-code scan needs.
func literalArgs(words []*syntax.Word) []string {
	args := make([]string, 0, len(words))
	for _, w := range words {
		if s, ok := literalWord(w); ok {
			args = append(args, s)
		}
	}
	return args
}

// execName strips any directory path from a command token.
func execName(token string) string {
	if i := strings.LastIndexByte(token, '/'); i >= 0 {
		return token[i+1:]
	}
	return token
}

// sudoTarget finds the command sudo wraps, skipping sudo's own flags,
// and returns it with the remaining literal arguments. sudo is never
// transparently skipped, so a wrapped command the parser cannot resolve
// to a literal fails the parse instead of vanishing.
func sudoTarget(words []*syntax.Word) (string, []string, error) {
	for i := 0; i < len(words); i++ {
		lit, ok := literalWord(words[i])
		if !ok {
			return "", nil, fmt.Errorf("dynamic command name cannot be safely resolved")
		}
		if strings.HasPrefix(lit, "-") {
			if sudoValueFlags[lit] {
				i++ // the flag consumes the next token
			}
			continue
		}
		return lit, literalArgs(words[i+1:]), nil
	}
	return "", nil, nil
}

// inlineCodeFlag reports the inline-code flag found in an interpreter's
// arguments, or "" when the command is not an interpreter or carries no
// such flag.
func inlineCodeFlag(exe string, args []string) string {
	flags, ok := interpreterInlineFlags[exe]
	if !ok {
		return ""
	}
	for _, arg := range args {
		for _, flag := range flags {
			if arg == flag {
				return flag
			}
			// Short flags may glue their value: python -c'code'.
			if len(flag) == 2 && strings.HasPrefix(arg, flag) {
				return flag
			}
		}
	}
	return ""
}
