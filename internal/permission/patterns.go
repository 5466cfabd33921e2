package permission

import "regexp"

// PatternResult is the outcome of the dangerous-pattern check.
type PatternResult struct {
	Safe    bool   `json:"safe"`
	Reason  string `json:"reason,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// dangerousPattern pairs a compiled regex with the reason it is dangerous.
type dangerousPattern struct {
	re     *regexp.Regexp
	reason string
}

// interpreterNames matches general-purpose interpreters that execute
// arbitrary code from stdin or an inline flag.
const interpreterNames = `(?:python[0-9.]*|node|nodejs|perl|ruby|irb)`

// pipePrefix matches the start of a pipeline's right-hand side,
// tolerating sudo, an env wrapper, and a directory path on the
// interpreter so none of them hide the target from the check.
const pipePrefix = `\|\s*(?:sudo\s+)?(?:env\s+)?(?:\S*/)?`

// dangerousPatterns are checked against the raw command text, before any
// parsing, so quoting cannot hide them. False positives are acceptable;
// false negatives are not.
var dangerousPatterns = []dangerousPattern{
	{regexp.MustCompile(`\$\(`), "command substitution"},
	{regexp.MustCompile("`"), "backtick command substitution"},
	{regexp.MustCompile(`<\(`), "process substitution"},
	{regexp.MustCompile(`>\(`), "process substitution"},
	// << also covers <<- and <<<.
	{regexp.MustCompile(`<<`), "here-document"},
	{regexp.MustCompile(pipePrefix + `(?:bash|sh|zsh|dash|ksh|fish|csh|tcsh)\b`), "piping into a shell interpreter"},
	{regexp.MustCompile(pipePrefix + interpreterNames + `\b[^|;&]*(?:\s--eval\b|\s-[A-Za-z]*[ceEp]\b|\s-[ceEp]\S)`), "piping inline code into an interpreter"},
	{regexp.MustCompile(pipePrefix + interpreterNames + `\s*(?:[;&|]|$)`), "piping into an interpreter reading stdin"},
}

// CheckDangerousPatterns classifies raw command text. It runs before the
// command parser and a hit here is final: no executable-level check can
// override it.
func CheckDangerousPatterns(command string) PatternResult {
	for _, p := range dangerousPatterns {
		if p.re.MatchString(command) {
			return PatternResult{
				Safe:    false,
				Reason:  "dangerous pattern: " + p.reason,
				Pattern: p.re.String(),
			}
		}
	}
	return PatternResult{Safe: true}
}
