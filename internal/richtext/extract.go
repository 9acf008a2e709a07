package richtext

import "strings"

var parenEscaper = strings.NewReplacer(
	"(", "\uFF08",
	")", "\uFF09",
)

// Extract flattens the document into the styled plain text sent to the
// platform. Paragraphs are joined with "\n", so an empty paragraph shows up
// as a blank line; blank lines at either end are trimmed away with the rest
// of the surrounding whitespace.
func Extract(doc Document) string {
	return strings.TrimSpace(joinParagraphs(doc))
}

func joinParagraphs(doc Document) string {
	var b strings.Builder
	for i, n := range doc {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(RenderNode(n))
	}
	return b.String()
}

// Escape replaces ASCII parentheses, which the platform reserves for its
// own markup, with their fullwidth forms. Only the outbound text is
// escaped; stored documents keep ASCII parentheses.
func Escape(text string) string {
	return parenEscaper.Replace(text)
}

// Payload runs the publish pipeline on persisted content:
// deserialize, extract with styling, escape.
func Payload(content string) string {
	return Escape(Extract(Deserialize(content)))
}
