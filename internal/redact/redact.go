// Package redact implements the Redactor stage: an ordered set of
// secret-matching patterns that emit sentinel tokens in place of matched
// credential-shaped substrings, plus the post-pass line filter that drops
// lines redaction has hollowed out.
package redact

import (
	"regexp"
	"strings"

	"toak/pkg/contract"
)

// Sentinels exported for callers that need to recognize redacted output.
const (
	SentinelGeneric = "[REDACTED]"
	SentinelJWT     = "[REDACTED_JWT]"
	SentinelHash    = "[REDACTED_HASH]"
	SentinelBase64  = "[REDACTED_BASE64]"
)

// Pattern is a caller-supplied secret rule, applied after the built-ins in
// the order given.
type Pattern struct {
	Pattern     string
	Replacement string
}

type rule struct {
	re   *regexp.Regexp
	repl string
}

// sensitiveKey is the alternation of key names the JSON/assignment/YAML
// forms treat as credential-bearing. Order within the alternation does not
// affect correctness: a shorter prefix that fails the rest of a rule backs
// off to a longer alternative automatically.
const sensitiveKey = `api[_-]?key|api[_-]?secret|access[_-]?token|auth[_-]?token|client[_-]?secret|secret[_-]?key|private[_-]?key|jwt[_-]?secret|stripe[_-]?key|password|secret`

// envKey is the uppercase family recognized by the shell/.env form.
const envKey = `API[_-]?KEY|API[_-]?SECRET|ACCESS[_-]?TOKEN|AUTH[_-]?TOKEN|CLIENT[_-]?SECRET|DB[_-]?PASSWORD|DATABASE[_-]?PASSWORD|AWS_ACCESS_KEY_ID|AWS_SECRET_ACCESS_KEY|GOOGLE_API_KEY|AZURE_CLIENT_SECRET|DATABASE_URL|MONGO_URI|MYSQL_URL|JWT[_-]?SECRET|SECRET[_-]?KEY|PRIVATE[_-]?KEY`

// builtins runs in the fixed order the pattern ordering is semantically
// significant over: each later rule observes the already-redacted text of
// the rules before it.
var builtins = []rule{
	// 1. JSON/object form: "key": "value" (len >= 3).
	{
		re:   regexp.MustCompile(`(?i)"(` + sensitiveKey + `)"\s*:\s*"([^"]{3,})"`),
		repl: `"$1": "` + SentinelGeneric + `"`,
	},
	// 2. JWT anywhere.
	{
		re:   regexp.MustCompile(`eyJ[A-Za-z0-9_=-]+\.[A-Za-z0-9_=-]+\.[A-Za-z0-9_./+=-]*`),
		repl: SentinelJWT,
	},
	// 3. Assignment form: key = "value" (len >= 3), quotes dropped.
	{
		re:   regexp.MustCompile(`(?i)(` + sensitiveKey + `)\s*=\s*(?:"[^"]{3,}"|'[^']{3,}')`),
		repl: `$1=` + SentinelGeneric,
	},
	// 4. Shell/env form: (export )?KEY=value, quotes dropped.
	{
		re:   regexp.MustCompile(`(?im)^(\s*(?:export\s+)?)(` + envKey + `)\s*=\s*(?:"[^"]{3,}"|'[^']{3,}'|[^\s#\n]{3,})`),
		repl: `${1}${2}=` + SentinelGeneric,
	},
	// 5. Bearer tokens.
	{
		re:   regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/-]+=*`),
		repl: `${1}` + SentinelGeneric,
	},
	// 6. Hex hashes, 64 then 40 characters, word-bounded.
	{re: regexp.MustCompile(`\b[a-fA-F0-9]{64}\b`), repl: SentinelHash},
	{re: regexp.MustCompile(`\b[a-fA-F0-9]{40}\b`), repl: SentinelHash},
	// 7. Base64-like quoted literals, quotes dropped.
	{
		re:   regexp.MustCompile(`["'][A-Za-z0-9+/]{40,}={0,2}["']`),
		repl: SentinelBase64,
	},
	// 8. YAML/TOML form: key: value.
	{
		re:   regexp.MustCompile(`(?im)^(\s*)(` + sensitiveKey + `)\s*:\s*[^\n]+$`),
		repl: `${1}${2}: ` + SentinelGeneric,
	},
}

// Redactor runs the built-in rules, then any custom patterns, in order.
type Redactor struct {
	rules []rule
}

var _ contract.Redactor = (*Redactor)(nil)

// New builds a Redactor. Custom pattern compile failures are returned
// wrapped in contract.ErrPatternInvalid.
func New(custom []Pattern) (*Redactor, error) {
	r := &Redactor{rules: append([]rule{}, builtins...)}
	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, &patternError{pattern: p.Pattern, err: err}
		}
		r.rules = append(r.rules, rule{re: re, repl: p.Replacement})
	}
	return r, nil
}

type patternError struct {
	pattern string
	err     error
}

func (e *patternError) Error() string {
	return "redact: invalid custom pattern " + e.pattern + ": " + e.err.Error()
}

func (e *patternError) Unwrap() error { return contract.ErrPatternInvalid }

// Redact applies every rule in sequence. It is idempotent: the rules that
// keep the key name in their output (the JSON, shell/env and YAML forms)
// match that output again on a second pass but rewrite it to identical
// text, and the remaining rules do not match a bare sentinel.
func (r *Redactor) Redact(text string) string {
	for _, rl := range r.rules {
		text = rl.re.ReplaceAllString(text, rl.repl)
	}
	return text
}

// FilterSentinelLines drops any line containing a sentinel substring,
// letting a secret-only assignment disappear instead of leaving behind a
// stub like `const k = [REDACTED];`. This runs as its own pipeline stage,
// distinct from Redact, so Redact's own idempotence invariant is never
// entangled with line removal.
func FilterSentinelLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "[REDACTED") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
