// Package richtext implements the post document model and its conversions:
// the persisted JSON form, the unstyled plain text used for search, and the
// styled plain-text payload accepted by the social network.
//
// Every function in this package is pure; documents are plain values and can
// be shared between goroutines as long as nobody mutates them.
package richtext

import "strings"

// Kind discriminates block nodes.
type Kind string

// KindParagraph is the only block kind the editor produces. Unknown kinds
// are preserved on round-trip and rendered as paragraphs.
const KindParagraph Kind = "paragraph"

// Run is a span of text sharing one style combination.
// Text never contains a newline; line breaks are paragraph boundaries.
type Run struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Styled reports whether any style flag is set.
func (r Run) Styled() bool {
	return r.Bold || r.Italic || r.Underline
}

// Node is a block of the document.
type Node struct {
	Type     Kind  `json:"type"`
	Children []Run `json:"children"`
}

// Document is an ordered list of blocks in reading order.
type Document []Node

// NewParagraph builds a paragraph from runs. With no runs it returns the
// canonical blank line: one run with empty text.
func NewParagraph(runs ...Run) Node {
	if len(runs) == 0 {
		runs = []Run{{Text: ""}}
	}
	return Node{Type: KindParagraph, Children: runs}
}

// Empty returns the document an editor starts with: one blank paragraph.
func Empty() Document {
	return Document{NewParagraph()}
}

// FromLines builds an unstyled document with one paragraph per line.
func FromLines(text string) Document {
	lines := strings.Split(text, "\n")
	doc := make(Document, 0, len(lines))
	for _, line := range lines {
		doc = append(doc, NewParagraph(Run{Text: strings.TrimSuffix(line, "\r")}))
	}
	return doc
}

// Text concatenates the raw text of the node's runs, ignoring styles.
func (n Node) Text() string {
	var b strings.Builder
	for _, r := range n.Children {
		b.WriteString(r.Text)
	}
	return b.String()
}

// IsEmpty reports whether the document holds no text at all.
func (d Document) IsEmpty() bool {
	for _, n := range d {
		if n.Text() != "" {
			return false
		}
	}
	return true
}

// PlainText returns the document text without styling or escaping,
// one line per paragraph.
func (d Document) PlainText() string {
	parts := make([]string, len(d))
	for i, n := range d {
		parts[i] = n.Text()
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// FirstLine returns the first non-blank line of plain text, or "".
func (d Document) FirstLine() string {
	for _, n := range d {
		for _, line := range strings.Split(n.Text(), "\n") {
			if t := strings.TrimSpace(line); t != "" {
				return t
			}
		}
	}
	return ""
}

// Stats summarises a document.
type Stats struct {
	Paragraphs int `json:"paragraphs"`
	Runs       int `json:"runs"`
	StyledRuns int `json:"styled_runs"`
}

// Stats counts blocks and runs.
func (d Document) Stats() Stats {
	s := Stats{Paragraphs: len(d)}
	for _, n := range d {
		s.Runs += len(n.Children)
		for _, r := range n.Children {
			if r.Styled() {
				s.StyledRuns++
			}
		}
	}
	return s
}
