package richtext

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Deserialize turns persisted content into a Document. It never fails:
//   - empty content or JSON null yields Empty();
//   - a JSON array of objects is decoded as-is, without validating node shape;
//     fields holding a value of the wrong type are left zero;
//   - anything else is legacy plain text and becomes a single unstyled run.
func Deserialize(content string) Document {
	if content == "" {
		return Empty()
	}
	if doc, ok := decodeNodes(content); ok {
		return doc
	}
	return Document{NewParagraph(Run{Text: content})}
}

// decodeNodes attempts the structured path. Only syntactically valid JSON
// holding an array of objects is accepted; scalars and objects fall through
// to the legacy path.
func decodeNodes(content string) (Document, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "null" {
		return Empty(), true
	}
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raws); err != nil {
		return nil, false
	}
	doc := make(Document, 0, len(raws))
	for _, raw := range raws {
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			return nil, false
		}
		var n Node
		if err := json.Unmarshal(raw, &n); err != nil {
			// A type mismatch still decodes every other field.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return nil, false
			}
		}
		doc = append(doc, n)
	}
	return doc, true
}

// Serialize encodes the document to its persisted JSON array form.
// Deserialize(Serialize(d)) reproduces d for valid UTF-8 text; invalid
// bytes are replaced with U+FFFD by the encoder.
func Serialize(doc Document) string {
	if doc == nil {
		doc = Document{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Document only holds strings, bools and slices; encoding cannot fail.
	_ = enc.Encode(doc)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Normalize re-encodes content through the document model so that stored
// values always use the JSON array form, whatever the caller sent.
func Normalize(content string) string {
	return Serialize(Deserialize(content))
}
