package exclude

import (
	"fmt"
	"strings"
)

// Explain renders, for a single candidate path, which ignore-file layer (if
// any) produced the final verdict and why — one line per ancestor
// directory that had an opinion. It is a debugging aid only; it never
// affects Admit's result.
func (t *Tree) Explain(p string) string {
	var b strings.Builder
	segs := strings.Split(p, "/")
	dir := ""
	verdict := true
	for i := range segs {
		rel := strings.Join(segs[i:], "/")
		if v := t.layerFor(dir).verdict(rel); v != nil {
			verdict = *v
			label := dir
			if label == "" {
				label = "."
			}
			fmt.Fprintf(&b, "%s/%s: %s -> admit=%v\n", label, t.fileName, rel, verdict)
		}
		if i < len(segs)-1 {
			if dir == "" {
				dir = segs[i]
			} else {
				dir = dir + "/" + segs[i]
			}
		}
	}
	if b.Len() == 0 {
		fmt.Fprintf(&b, "%s: no hierarchical ignore-file opinion, admit=%v\n", p, verdict)
	}
	return b.String()
}
