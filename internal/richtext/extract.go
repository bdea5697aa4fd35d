package richtext

import "strings"

// Extract recovers the plain text of raw. Values that are not documents are
// treated as legacy plain text and returned verbatim.
func Extract(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, ok := Parse(raw)
	if !ok {
		return raw
	}
	return doc.PlainText()
}

// PlainText folds the tree into text. Root level blocks are separated by a
// newline; inline content is concatenated as is.
func (d *Document) PlainText() string {
	blocks := d.Blocks()
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		var b strings.Builder
		collect(&b, block)
		parts = append(parts, b.String())
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func collect(b *strings.Builder, node *Node) {
	if node == nil {
		return
	}
	if node.IsText() {
		b.WriteString(node.Text)
		return
	}
	for _, child := range node.Children {
		collect(b, child)
	}
}
