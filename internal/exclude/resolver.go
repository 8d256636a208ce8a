package exclude

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"toak/pkg/contract"
)

// Options configures the four-layer resolver beyond the built-in defaults.
type Options struct {
	// FileTypeExclusions are extensions appended to the default set
	// (layer 1), without a leading ".".
	FileTypeExclusions []string
	// FileExclusions are glob patterns appended to the default set
	// (layer 2), evaluated against the full root-relative path.
	FileExclusions []string
	// IgnoreFileName overrides the per-directory ignore file name; ""
	// defaults to ".toakignore".
	IgnoreFileName string
}

// Build composes the four exclusion layers into a single Admit predicate:
// (1) extension exclusions, (2) default + custom glob patterns against the
// full path, (3) the hierarchical per-directory ignore-file tree, and
// (4) the always-present root override file, which layer 3 already reads
// like any other ignore file once EnsureRootIgnore has created it.
func Build(root string, opts Options) (contract.Admit, error) {
	name := opts.IgnoreFileName
	if name == "" {
		name = DefaultIgnoreFileName
	}

	exts := make(map[string]struct{}, len(defaultExtensions)+len(opts.FileTypeExclusions))
	for _, e := range defaultExtensions {
		exts[e] = struct{}{}
	}
	for _, e := range opts.FileTypeExclusions {
		exts[normalizeExt(e)] = struct{}{}
	}

	patterns := make([]*Glob, 0, len(defaultPatterns)+len(opts.FileExclusions))
	for _, p := range defaultPatterns {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, g)
	}
	for _, p := range opts.FileExclusions {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, fmt.Errorf("exclude: custom fileExclusions: %w", err)
		}
		patterns = append(patterns, g)
	}

	if err := EnsureRootIgnore(root, name); err != nil {
		return nil, err
	}
	tree := NewTree(root, name)

	return func(p contract.Path) bool {
		rel := string(p)
		if extExcluded(rel, exts) {
			return false
		}
		for _, g := range patterns {
			if g.Match(rel) {
				return false
			}
		}
		return tree.Admit(rel)
	}, nil
}

func extExcluded(p string, exts map[string]struct{}) bool {
	ext := strings.ToLower(path.Ext(p))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return false
	}
	_, excluded := exts[ext]
	return excluded
}

func normalizeExt(e string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
}

// rootIgnoreSeed is written once, the first time a repository is processed,
// so that the todo/appendix file this tool itself writes is never fed back
// into its own output on the next run.
const rootIgnoreSeed = "todo\nprompt.md\n"

// EnsureRootIgnore creates the root ignore file with its minimum default
// contents if it does not already exist. name "" defaults to ".toakignore".
// It is the resolver's only mutation and is idempotent.
func EnsureRootIgnore(root, name string) error {
	if name == "" {
		name = DefaultIgnoreFileName
	}
	p := filepath.Join(root, name)
	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(p, []byte(rootIgnoreSeed), 0o644)
}

// EnsureGitignoreEntries appends entries to root's .gitignore if they are
// not already present, so the ignore file this tool writes (and the
// default output file) don't end up tracked by the user's own VCS. Missing
// entries are appended verbatim; an absent .gitignore is created.
func EnsureGitignoreEntries(root string, entries ...string) error {
	p := filepath.Join(root, ".gitignore")
	existing := map[string]bool{}
	raw, err := os.ReadFile(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range strings.Split(string(raw), "\n") {
		existing[strings.TrimSpace(line)] = true
	}
	var add strings.Builder
	for _, e := range entries {
		if existing[e] {
			continue
		}
		add.WriteString(e)
		add.WriteString("\n")
	}
	if add.Len() == 0 {
		return nil
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(add.String())
	return err
}
