package richtext

import "strings"

// Normalize canonicalizes raw field input into a serialized document.
// Blank input yields the empty document, input that already has the document
// shape is returned trimmed and otherwise untouched, and anything else is
// wrapped verbatim as the text of a single paragraph. Normalize never fails.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmptyDocumentJSON
	}
	if IsDocument(trimmed) {
		return trimmed
	}
	encoded, err := NewDocument(Paragraph(Text(raw, 0))).Encode()
	if err != nil {
		return EmptyDocumentJSON
	}
	return encoded
}
