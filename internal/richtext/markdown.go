package richtext

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownConverter turns Markdown into documents using the goldmark parser.
// Only the parser is used; nothing is rendered to HTML.
type MarkdownConverter struct {
	engine goldmark.Markdown
}

// NewMarkdownConverter builds a converter with GFM enabled.
func NewMarkdownConverter(exts ...goldmark.Extender) *MarkdownConverter {
	if len(exts) == 0 {
		exts = []goldmark.Extender{extension.GFM}
	}
	return &MarkdownConverter{engine: goldmark.New(goldmark.WithExtensions(exts...))}
}

var defaultMarkdown = NewMarkdownConverter()

// FromMarkdown converts Markdown source into a serialized document.
func FromMarkdown(source []byte) string {
	return defaultMarkdown.Convert(source)
}

// Convert parses source and serializes the resulting document. Blank input
// yields the empty document.
func (c *MarkdownConverter) Convert(source []byte) string {
	doc := c.Document(source)
	if len(doc.Blocks()) == 0 {
		return EmptyDocumentJSON
	}
	encoded, err := doc.Encode()
	if err != nil {
		return EmptyDocumentJSON
	}
	return encoded
}

// Document parses source into a document tree.
func (c *MarkdownConverter) Document(source []byte) *Document {
	tree := c.engine.Parser().Parse(text.NewReader(source))
	walker := markdownWalker{source: source}
	return NewDocument(walker.blocks(tree)...)
}

type markdownWalker struct {
	source []byte
}

func (w markdownWalker) blocks(parent ast.Node) []*Node {
	var out []*Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if node := w.block(child); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (w markdownWalker) block(node ast.Node) *Node {
	switch typed := node.(type) {
	case *ast.Heading:
		return Element(TypeHeading, map[string]any{"tag": fmt.Sprintf("h%d", typed.Level)}, w.inlines(typed, 0)...)
	case *ast.Paragraph, *ast.TextBlock:
		return Paragraph(w.inlines(node, 0)...)
	case *ast.Blockquote:
		var children []*Node
		for _, block := range w.blocks(typed) {
			children = append(children, block.Children...)
		}
		return Element(TypeQuote, nil, children...)
	case *ast.List:
		listType, tag := "bullet", "ul"
		if typed.IsOrdered() {
			listType, tag = "number", "ol"
		}
		start := typed.Start
		if start == 0 {
			start = 1
		}
		var items []*Node
		value := start
		for item := typed.FirstChild(); item != nil; item = item.NextSibling() {
			var children []*Node
			for _, block := range w.blocks(item) {
				if block.Type == TypeParagraph {
					children = append(children, block.Children...)
					continue
				}
				children = append(children, block)
			}
			items = append(items, Element(TypeListItem, map[string]any{"value": value}, children...))
			value++
		}
		return Element(TypeList, map[string]any{"listType": listType, "start": start, "tag": tag}, items...)
	case *ast.FencedCodeBlock:
		return Element(TypeCode, map[string]any{"language": string(typed.Language(w.source))}, Text(w.lines(typed), 0))
	case *ast.CodeBlock:
		return Element(TypeCode, map[string]any{"language": ""}, Text(w.lines(typed), 0))
	case *ast.ThematicBreak:
		return &Node{Type: TypeHorizontal, Attrs: map[string]any{"version": 1}}
	case *ast.HTMLBlock:
		return Paragraph(Text(strings.TrimRight(w.lines(typed), "\n"), 0))
	default:
		if node.Type() == ast.TypeBlock && node.HasChildren() {
			return Paragraph(w.inlines(node, 0)...)
		}
		return nil
	}
}

func (w markdownWalker) lines(node ast.Node) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(w.source))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (w markdownWalker) inlines(parent ast.Node, format int) []*Node {
	var out []*Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, w.inline(child, format)...)
	}
	return out
}

func (w markdownWalker) inline(node ast.Node, format int) []*Node {
	switch typed := node.(type) {
	case *ast.Text:
		value := string(typed.Segment.Value(w.source))
		out := []*Node{Text(value, format)}
		switch {
		case typed.HardLineBreak():
			out = append(out, &Node{Type: TypeLineBreak, Attrs: map[string]any{"version": 1}})
		case typed.SoftLineBreak():
			out[0].Text += " "
		}
		return out
	case *ast.String:
		return []*Node{Text(string(typed.Value), format)}
	case *ast.CodeSpan:
		var b strings.Builder
		for child := typed.FirstChild(); child != nil; child = child.NextSibling() {
			if leaf, ok := child.(*ast.Text); ok {
				b.Write(leaf.Segment.Value(w.source))
			}
		}
		return []*Node{Text(b.String(), format|FormatCode)}
	case *ast.Emphasis:
		bit := FormatItalic
		if typed.Level >= 2 {
			bit = FormatBold
		}
		return w.inlines(typed, format|bit)
	case *east.Strikethrough:
		return w.inlines(typed, format|FormatStrikethrough)
	case *ast.Link:
		return []*Node{Element(TypeLink, map[string]any{"url": string(typed.Destination)}, w.inlines(typed, format)...)}
	case *ast.AutoLink:
		label := string(typed.Label(w.source))
		return []*Node{Element(TypeLink, map[string]any{"url": string(typed.URL(w.source))}, Text(label, format))}
	case *ast.Image:
		return w.inlines(typed, format)
	case *ast.RawHTML:
		var b strings.Builder
		segments := typed.Segments
		for i := 0; i < segments.Len(); i++ {
			segment := segments.At(i)
			b.Write(segment.Value(w.source))
		}
		return []*Node{Text(b.String(), format)}
	default:
		if node.HasChildren() {
			return w.inlines(node, format)
		}
		return nil
	}
}
