package richtext

import (
	"unicode/utf8"

	"github.com/goliatone/go-sections/pkg/interfaces"
)

// Guard names reported to metrics.
const (
	GuardBytes      = "bytes"
	GuardCharacters = "characters"
)

// Prepared is a rich text value ready to persist.
type Prepared struct {
	Normalized string
	PlainText  string
	Bytes      int
	Characters int
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithMetrics records document sizes and guard rejections.
func WithMetrics(metrics interfaces.Metrics) PipelineOption {
	return func(p *Pipeline) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

// WithMarkdownConverter replaces the Markdown importer used by PrepareMarkdown.
func WithMarkdownConverter(converter *MarkdownConverter) PipelineOption {
	return func(p *Pipeline) {
		if converter != nil {
			p.markdown = converter
		}
	}
}

// Pipeline normalizes, measures and guards rich text values. It holds no
// mutable state and is safe for concurrent use.
type Pipeline struct {
	limits   Limits
	metrics  interfaces.Metrics
	markdown *MarkdownConverter
}

// NewPipeline builds a pipeline enforcing limits.
func NewPipeline(limits Limits, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{limits: limits}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.markdown == nil {
		p.markdown = NewMarkdownConverter()
	}
	return p
}

// Limits reports the limits the pipeline enforces.
func (p *Pipeline) Limits() Limits {
	return p.limits
}

// Prepare runs normalize, the byte guard, extraction and the character guard
// in that order. The byte guard fails before any text is extracted.
func (p *Pipeline) Prepare(field, raw string) (Prepared, error) {
	normalized := Normalize(raw)
	size := len(normalized)
	if p.metrics != nil {
		p.metrics.ObserveDocumentBytes(size)
	}
	if err := p.limits.CheckBytes(field, size); err != nil {
		p.reject(GuardBytes)
		return Prepared{}, err
	}

	plain := Extract(normalized)
	count := utf8.RuneCountInString(plain)
	if err := p.limits.CheckCharacters(field, count); err != nil {
		p.reject(GuardCharacters)
		return Prepared{}, err
	}

	return Prepared{
		Normalized: normalized,
		PlainText:  plain,
		Bytes:      size,
		Characters: count,
	}, nil
}

// PrepareMarkdown converts Markdown source into a document before preparing it.
func (p *Pipeline) PrepareMarkdown(field string, source []byte) (Prepared, error) {
	return p.Prepare(field, p.markdown.Convert(source))
}

func (p *Pipeline) reject(guard string) {
	if p.metrics != nil {
		p.metrics.IncrementGuardRejection(guard)
	}
}

// PrepareForPersistence prepares raw with a throwaway pipeline.
func PrepareForPersistence(raw, field string, limits Limits) (Prepared, error) {
	return NewPipeline(limits).Prepare(field, raw)
}
