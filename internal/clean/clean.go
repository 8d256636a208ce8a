// Package clean implements the Cleaner stage: an ordered, idempotent set of
// regex-based textual transforms applied before redaction.
package clean

import (
	"regexp"

	"toak/pkg/contract"
)

// Pattern is a caller-supplied cleaning rule, applied after the built-ins
// in the order given.
type Pattern struct {
	Pattern     string
	Replacement string
}

type rule struct {
	re   *regexp.Regexp
	repl string
}

// builtins implements, in order: strip "//" comments, strip "/* */"
// comments, strip console.log/error/warn/info statements, strip import
// lines, strip trailing whitespace, and collapse blank-line runs to a
// single newline.
var builtins = []rule{
	{re: regexp.MustCompile(`//[^\n]*`), repl: ""},
	{re: regexp.MustCompile(`(?s)/\*.*?\*/`), repl: ""},
	{re: regexp.MustCompile(`(?m)^[ \t]*console\.(?:log|error|warn|info)\([^\n]*\)[ \t]*;?[ \t]*$`), repl: ""},
	{re: regexp.MustCompile(`(?m)^[ \t]*import\s[^\n]*$`), repl: ""},
	{re: regexp.MustCompile(`(?m)[ \t]+$`), repl: ""},
	{re: regexp.MustCompile(`\n{2,}`), repl: "\n"},
}

// Cleaner runs the built-in rules, then any custom patterns, in order.
type Cleaner struct {
	rules []rule
}

var _ contract.Cleaner = (*Cleaner)(nil)

// New builds a Cleaner. Custom pattern compile failures are returned
// wrapped in contract.ErrPatternInvalid.
func New(custom []Pattern) (*Cleaner, error) {
	c := &Cleaner{rules: append([]rule{}, builtins...)}
	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, &patternError{pattern: p.Pattern, err: err}
		}
		c.rules = append(c.rules, rule{re: re, repl: p.Replacement})
	}
	return c, nil
}

type patternError struct {
	pattern string
	err     error
}

func (e *patternError) Error() string {
	return "clean: invalid custom pattern " + e.pattern + ": " + e.err.Error()
}

func (e *patternError) Unwrap() error { return contract.ErrPatternInvalid }

// Clean applies every rule in sequence. It is idempotent: Clean(Clean(x))
// == Clean(x), since every rule removes or normalizes text it would no
// longer match on a second pass.
func (c *Cleaner) Clean(text string) string {
	for _, r := range c.rules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}
