package sections

import "github.com/goliatone/go-sections/internal/richtext"

var (
	ErrPayloadTooLarge   = richtext.ErrPayloadTooLarge
	ErrTooManyCharacters = richtext.ErrTooManyCharacters
)

const (
	DefaultMaxBytes      = richtext.DefaultMaxBytes
	DefaultMaxCharacters = richtext.DefaultMaxCharacters

	// EmptyRichTextDocument is the canonical empty document.
	EmptyRichTextDocument = richtext.EmptyDocumentJSON
)

type (
	RichTextLimits   = richtext.Limits
	RichTextPipeline = richtext.Pipeline
	PreparedRichText = richtext.Prepared
	RichTextDocument = richtext.Document
	RichTextNode     = richtext.Node
)

// NormalizeRichText turns raw input into a serialized document.
func NormalizeRichText(raw string) string {
	return richtext.Normalize(raw)
}

// ExtractPlainText returns the visible text of a stored rich text value.
func ExtractPlainText(raw string) string {
	return richtext.Extract(raw)
}

// MarkdownToRichText converts Markdown into a serialized document.
func MarkdownToRichText(source []byte) string {
	return richtext.FromMarkdown(source)
}

// PrepareRichText normalizes raw and applies the size guards in one step.
func PrepareRichText(raw, field string, limits RichTextLimits) (PreparedRichText, error) {
	return richtext.PrepareForPersistence(raw, field, limits)
}
