// Package vcs wraps the version-control collaborator used to enumerate a
// repository's tracked files.
package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strings"

	"toak/pkg/contract"
)

// Git enumerates files via "git ls-files -z". A missing binary, a
// non-repository directory, or any non-zero exit is treated as "no files"
// rather than an error. No filesystem walk takes its place: the caller
// receives an empty path list.
type Git struct {
	// Bin is the git executable name or path; defaults to "git".
	Bin string
}

var _ contract.Enumerator = Git{}

func (g Git) Enumerate(ctx context.Context, root string) ([]contract.Path, error) {
	bin := g.Bin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, "ls-files", "-z")
	cmd.Dir = root
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, nil
	}
	fields := strings.Split(strings.TrimRight(out.String(), "\x00"), "\x00")
	paths := make([]contract.Path, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		paths = append(paths, contract.NormalizePath(f))
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths, nil
}
