package richtext_test

import (
	"testing"

	"github.com/goliatone/go-sections/internal/richtext"
)

func TestFromMarkdownBuildsDocument(t *testing.T) {
	source := []byte("# Welcome\n\nSome **bold** and *soft* ~~gone~~ `code`.\n\n- one\n- two\n\n> quoted\n")
	raw := richtext.FromMarkdown(source)

	doc, ok := richtext.Parse(raw)
	if !ok {
		t.Fatalf("expected a document got %s", raw)
	}
	blocks := doc.Blocks()
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks got %d", len(blocks))
	}
	if blocks[0].Type != richtext.TypeHeading || blocks[0].Attrs["tag"] != "h1" {
		t.Fatalf("expected h1 heading got %+v", blocks[0])
	}
	if blocks[2].Type != richtext.TypeList || blocks[2].Attrs["listType"] != "bullet" {
		t.Fatalf("expected bullet list got %+v", blocks[2])
	}

	formats := map[string]int{}
	for _, node := range blocks[1].Children {
		formats[node.Text] = node.Format
	}
	if formats["bold"] != richtext.FormatBold {
		t.Fatalf("expected bold format got %d", formats["bold"])
	}
	if formats["soft"] != richtext.FormatItalic {
		t.Fatalf("expected italic format got %d", formats["soft"])
	}
	if formats["gone"] != richtext.FormatStrikethrough {
		t.Fatalf("expected strikethrough format got %d", formats["gone"])
	}
	if formats["code"] != richtext.FormatCode {
		t.Fatalf("expected code format got %d", formats["code"])
	}

	want := "Welcome\nSome bold and soft gone code.\nonetwo\nquoted"
	if got := richtext.Extract(raw); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestFromMarkdownEmpty(t *testing.T) {
	if got := richtext.FromMarkdown([]byte("  \n")); got != richtext.EmptyDocumentJSON {
		t.Fatalf("expected empty document got %s", got)
	}
}

func TestPipelinePrepareMarkdown(t *testing.T) {
	pipeline := richtext.NewPipeline(richtext.DefaultLimits())
	prepared, err := pipeline.PrepareMarkdown("body", []byte("Hello *there*"))
	if err != nil {
		t.Fatalf("prepare markdown: %v", err)
	}
	if prepared.PlainText != "Hello there" {
		t.Fatalf("unexpected plain text %q", prepared.PlainText)
	}
}
