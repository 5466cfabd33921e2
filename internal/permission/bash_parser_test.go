package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBashCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{
			name:    "simple command",
			command: "git status",
			want:    []string{"git"},
		},
		{
			name:    "and chain",
			command: "git status && npm install",
			want:    []string{"git", "npm"},
		},
		{
			name:    "pipeline",
			command: "cat file | grep foo",
			want:    []string{"cat", "grep"},
		},
		{
			name:    "or chain and semicolon",
			command: "make build || make clean; ls",
			want:    []string{"make", "ls"},
		},
		{
			name:    "multi-line script",
			command: "git add .\ngit commit -m msg\nnpm test",
			want:    []string{"git", "npm"},
		},
		{
			name:    "operators inside quotes are data",
			command: `echo "a && b | c"`,
			want:    []string{"echo"},
		},
		{
			name:    "env assignment prefix is not an executable",
			command: "FOO=bar BAZ=qux git push",
			want:    []string{"git"},
		},
		{
			name:    "pure assignment runs nothing",
			command: "FOO=bar",
			want:    nil,
		},
		{
			name:    "redirections are not executables",
			command: "sort < in.txt > out.txt 2> err.txt",
			want:    []string{"sort"},
		},
		{
			name:    "path is stripped to the bare name",
			command: "/usr/bin/git status && ./scripts/run",
			want:    []string{"git", "run"},
		},
		{
			name:    "sudo records both itself and the wrapped command",
			command: "sudo rm -rf /",
			want:    []string{"sudo", "rm"},
		},
		{
			name:    "sudo with value flag",
			command: "sudo -u root systemctl restart nginx",
			want:    []string{"sudo", "systemctl"},
		},
		{
			name:    "duplicates are collapsed in first-seen order",
			command: "git status; npm test; git push",
			want:    []string{"git", "npm"},
		},
		{
			name:    "interpreter with a script file is allowed",
			command: "python3 manage.py migrate",
			want:    []string{"python3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBashCommand(tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBashCommandFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		command string
		errPart string
	}{
		{
			name:    "syntax error",
			command: "git status &&",
			errPart: "failed to parse",
		},
		{
			name:    "dynamic command name",
			command: "$CMD --verbose",
			errPart: "dynamic command name",
		},
		{
			name:    "python inline code aborts whole parse",
			command: "ls && python -c 'import os; os.system(\"rm -rf /\")'",
			errPart: "inline code",
		},
		{
			name:    "node eval",
			command: "node --eval 'process.exit()'",
			errPart: "inline code",
		},
		{
			name:    "perl uppercase E",
			command: "perl -E 'say 1'",
			errPart: "inline code",
		},
		{
			name:    "glued short flag value",
			command: "python -cprint",
			errPart: "inline code",
		},
		{
			name:    "sudo wrapping an interpreter with inline code",
			command: "sudo python3 -c 'x'",
			errPart: "inline code",
		},
		{
			name:    "sudo wrapping a dynamic command name",
			command: "sudo $CMD -rf /",
			errPart: "dynamic command name",
		},
		{
			name:    "sudo with flags wrapping a dynamic command name",
			command: "sudo -u root $CMD",
			errPart: "dynamic command name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			execs, err := ParseBashCommand(tt.command)
			require.Error(t, err)
			assert.Nil(t, execs)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
