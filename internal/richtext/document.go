package richtext

import (
	"bytes"
	"encoding/json"
	"maps"
	"strings"
)

// Node types produced by this package. Parsed documents may carry any other
// type, which is kept as a generic container.
const (
	TypeRoot       = "root"
	TypeParagraph  = "paragraph"
	TypeText       = "text"
	TypeHeading    = "heading"
	TypeQuote      = "quote"
	TypeList       = "list"
	TypeListItem   = "listitem"
	TypeCode       = "code"
	TypeLink       = "link"
	TypeLineBreak  = "linebreak"
	TypeHorizontal = "horizontalrule"
)

// Text format bits.
const (
	FormatBold          = 1
	FormatItalic        = 2
	FormatStrikethrough = 4
	FormatUnderline     = 8
	FormatCode          = 16
)

// EmptyDocumentJSON is the canonical empty document: one empty paragraph
// under the root.
const EmptyDocumentJSON = `{"root":{"children":[{"children":[],"direction":null,"format":"","indent":0,"type":"paragraph","version":1}],"direction":null,"format":"","indent":0,"type":"root","version":1}}`

// Node is one element of a document tree. Text nodes carry Text and Format;
// every other node is a container whose text is the text of its Children.
// Keys that are not modelled explicitly are kept in Attrs so re-encoding a
// parsed document does not drop editor metadata.
type Node struct {
	Type     string
	Text     string
	Format   int
	Children []*Node
	Attrs    map[string]any
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool {
	return n != nil && n.Type == TypeText
}

// Document is a parsed rich text document.
type Document struct {
	Root *Node
}

// NewDocument wraps blocks in a root node.
func NewDocument(blocks ...*Node) *Document {
	root := element(TypeRoot)
	root.Children = append(root.Children, blocks...)
	return &Document{Root: root}
}

// Paragraph builds a paragraph element.
func Paragraph(children ...*Node) *Node {
	node := element(TypeParagraph)
	node.Children = append(node.Children, children...)
	return node
}

// Text builds a text leaf.
func Text(text string, format int) *Node {
	return &Node{
		Type:   TypeText,
		Text:   text,
		Format: format,
		Attrs: map[string]any{
			"detail":  0,
			"mode":    "normal",
			"style":   "",
			"version": 1,
		},
	}
}

// Element builds a container of the given type with extra attributes.
func Element(nodeType string, attrs map[string]any, children ...*Node) *Node {
	node := element(nodeType)
	maps.Copy(node.Attrs, attrs)
	node.Children = append(node.Children, children...)
	return node
}

func element(nodeType string) *Node {
	return &Node{
		Type:     nodeType,
		Children: []*Node{},
		Attrs: map[string]any{
			"direction": nil,
			"format":    "",
			"indent":    0,
			"version":   1,
		},
	}
}

// Parse decodes raw into a document. It reports false unless raw is a JSON
// object whose "root" entry is an object of type "root". Malformed children
// anywhere below the root are dropped rather than failing the parse.
func Parse(raw string) (*Document, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed[0] != '{' {
		return nil, false
	}
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	var envelope map[string]any
	if err := decoder.Decode(&envelope); err != nil {
		return nil, false
	}
	if decoder.InputOffset() != int64(len(trimmed)) {
		return nil, false
	}
	rootValue, ok := envelope["root"].(map[string]any)
	if !ok {
		return nil, false
	}
	if nodeType, _ := rootValue["type"].(string); nodeType != TypeRoot {
		return nil, false
	}
	return &Document{Root: nodeFromMap(rootValue)}, true
}

// IsDocument reports whether raw already has the document shape.
func IsDocument(raw string) bool {
	_, ok := Parse(raw)
	return ok
}

func nodeFromMap(values map[string]any) *Node {
	node := &Node{Attrs: map[string]any{}}
	node.Type, _ = values["type"].(string)

	for key, value := range values {
		switch key {
		case "type":
		case "children":
			list, ok := value.([]any)
			if !ok {
				continue
			}
			node.Children = make([]*Node, 0, len(list))
			for _, item := range list {
				if child, ok := item.(map[string]any); ok {
					node.Children = append(node.Children, nodeFromMap(child))
				}
			}
		case "text":
			if text, ok := value.(string); ok && node.Type == TypeText {
				node.Text = text
				continue
			}
			node.Attrs[key] = value
		case "format":
			if number, ok := value.(json.Number); ok && node.Type == TypeText {
				if parsed, err := number.Int64(); err == nil {
					node.Format = int(parsed)
					continue
				}
			}
			node.Attrs[key] = value
		default:
			node.Attrs[key] = value
		}
	}
	return node
}

func (n *Node) toMap() map[string]any {
	out := make(map[string]any, len(n.Attrs)+3)
	maps.Copy(out, n.Attrs)
	out["type"] = n.Type
	if n.Type == TypeText {
		out["text"] = n.Text
		out["format"] = n.Format
		return out
	}
	if n.Children != nil {
		children := make([]any, 0, len(n.Children))
		for _, child := range n.Children {
			if child != nil {
				children = append(children, child.toMap())
			}
		}
		out["children"] = children
	}
	return out
}

// Encode serializes the document without escaping HTML characters or
// non-ASCII text.
func (d *Document) Encode() (string, error) {
	root := d.Root
	if root == nil {
		root = element(TypeRoot)
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(map[string]any{"root": root.toMap()}); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Blocks returns the root's children.
func (d *Document) Blocks() []*Node {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.Children
}
