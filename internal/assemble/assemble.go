// Package assemble implements the Assembler stage: it turns the ordered
// Sections produced by the Reader/Cleaner/Redactor pipeline into a single
// Markdown document, fenced with `~~~` so it never collides with fences
// already present inside source bodies.
package assemble

import (
	"strings"

	"toak/pkg/contract"
)

const heading = "# Project Files\n\n"

// Assembler implements contract.Assembler: it drops any section whose body
// is empty after trimming and preserves the path order it was given.
type Assembler struct{}

var _ contract.Assembler = Assembler{}

// New returns an Assembler. It carries no state: every rule the Assembler
// applies is a pure function of its inputs.
func New() Assembler { return Assembler{} }

// Assemble builds a Document from sections in the order given, dropping
// any section whose body is blank once trimmed.
func (Assembler) Assemble(sections []contract.Section, appendix string) contract.Document {
	out := make([]contract.Section, 0, len(sections))
	for _, s := range sections {
		body := strings.TrimSpace(s.Body)
		if body == "" {
			continue
		}
		out = append(out, contract.Section{Path: s.Path, Body: body})
	}
	return contract.Document{Sections: out, Appendix: appendix}
}

// Render flattens a Document into the final Markdown text. The fence is
// `~~~` (three tildes) precisely so a fenced ``` block inside a source
// file cannot terminate it early. A supplied appendix is separated from
// the code sections by a horizontal rule.
func Render(doc contract.Document) string {
	var b strings.Builder
	b.WriteString(heading)
	for _, s := range doc.Sections {
		b.WriteString("## ")
		b.WriteString(string(s.Path))
		b.WriteString("\n~~~\n")
		b.WriteString(s.Body)
		b.WriteString("\n~~~\n\n")
	}
	if strings.TrimSpace(doc.Appendix) != "" {
		b.WriteString("---\n\n")
		b.WriteString(doc.Appendix)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSection renders a single section's Markdown fragment in the exact
// framing the Chunker uses: `\n## <path>\n~~~\n<body>\n~~~\n`. It is
// exported so the Chunker's per-file framing stays textually identical to
// what the Assembler itself would have produced for that section.
func RenderSection(s contract.Section) string {
	var b strings.Builder
	b.WriteString("\n## ")
	b.WriteString(string(s.Path))
	b.WriteString("\n~~~\n")
	b.WriteString(s.Body)
	b.WriteString("\n~~~\n")
	return b.String()
}

// Header returns the constant header framing for a path, used by the
// Chunker to compute H = tokens(header).
func Header(path contract.Path) string {
	return "\n## " + string(path) + "\n~~~\n"
}

// Footer returns the constant footer framing shared by every file.
func Footer() string {
	return "\n~~~\n"
}
