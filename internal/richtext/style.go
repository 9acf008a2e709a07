package richtext

import (
	"strings"
	"unicode/utf16"
)

// combiningLowLine is drawn beneath the preceding character.
const combiningLowLine = '\u0332'

// MaxPostChars is the platform limit for a post body, in UTF-16 code units.
const MaxPostChars = 3000

// RenderRun maps the run's letters to Unicode styled glyphs.
//
// Only one table applies, chosen in the order bold+italic, bold, italic,
// underline, so a bold+underline run renders exactly like a bold run.
// Runes missing from the table are copied unchanged; under underline they
// also get no combining mark.
func RenderRun(r Run) string {
	var glyphs map[rune]string
	switch {
	case r.Bold && r.Italic:
		glyphs = boldItalicGlyphs
	case r.Bold:
		glyphs = boldGlyphs
	case r.Italic:
		glyphs = italicGlyphs
	case r.Underline:
		glyphs = underlineGlyphs
	default:
		return r.Text
	}
	underline := !r.Bold && !r.Italic

	var b strings.Builder
	b.Grow(len(r.Text) * 4)
	for _, c := range r.Text {
		g, ok := glyphs[c]
		if !ok {
			b.WriteRune(c)
			continue
		}
		b.WriteString(g)
		if underline {
			b.WriteRune(combiningLowLine)
		}
	}
	return b.String()
}

// RenderNode concatenates the rendered runs of a block. Every kind,
// known or not, renders as a paragraph.
func RenderNode(n Node) string {
	var b strings.Builder
	for _, r := range n.Children {
		b.WriteString(RenderRun(r))
	}
	return b.String()
}

// CharCount returns the length of s as the platform counts it:
// UTF-16 code units, so every Mathematical Alphanumeric glyph costs two.
func CharCount(s string) int {
	n := 0
	for _, c := range s {
		n += utf16.RuneLen(c)
	}
	return n
}
