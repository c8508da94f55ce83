package render

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	r := NewRegistry()

	out, err := r.Render("md", "# Title\n\nsome *emphasis*")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "<h1>Title</h1>") {
		t.Errorf("missing heading in output: %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("missing emphasis in output: %q", out)
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	r := NewRegistry()

	// Tables are a GFM extension, not core Markdown.
	out, err := r.Render("md", "| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected a table element, got %q", out)
	}
}

func TestRenderPlainTextEscapes(t *testing.T) {
	r := NewRegistry()

	out, err := r.Render("txt", `<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("markup leaked through plain text renderer: %q", out)
	}
	if !strings.HasPrefix(out, "<pre>") || !strings.HasSuffix(out, "</pre>") {
		t.Errorf("plain text output not wrapped in pre: %q", out)
	}
}

func TestRenderUnsupportedType(t *testing.T) {
	r := NewRegistry()

	if r.Supports("docx") {
		t.Fatal("docx should not be supported")
	}
	if _, err := r.Render("docx", "anything"); err == nil {
		t.Error("expected an error for an unsupported type")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r.Register("md", "Markdown Again", "", func(s string) (string, error) { return s, nil })
}

func TestSupportedSortedByExt(t *testing.T) {
	r := NewRegistry()

	supported := r.Supported()
	if len(supported) != 2 {
		t.Fatalf("expected 2 built-in engines, got %d", len(supported))
	}
	for i := 1; i < len(supported); i++ {
		if supported[i-1].Ext >= supported[i].Ext {
			t.Errorf("supported list not sorted: %s before %s", supported[i-1].Ext, supported[i].Ext)
		}
	}
}

func BenchmarkRenderMarkdown(b *testing.B) {
	r := NewRegistry()
	source := strings.Repeat("## Section\n\nA paragraph with `code` and a [link](https://example.com).\n\n", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Render("md", source); err != nil {
			b.Fatal(err)
		}
	}
}
