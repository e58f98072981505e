package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func render(t *testing.T, md string) string {
	t.Helper()
	var buf bytes.Buffer
	Render(&buf, md)
	return buf.String()
}

func TestHeadings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"# Title", "<h1>Title</h1>"},
		{"## Section", "<h2>Section</h2>"},
		{"### Sub", "<h3>Sub</h3>"},
	}
	for _, tt := range tests {
		if got := render(t, tt.input); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParagraphJoinsLines(t *testing.T) {
	got := render(t, "first line\nsecond line")
	want := "<p>first line second line</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInlineMarkup(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"**bold** text", "<p><strong>bold</strong> text</p>"},
		{"*italic* text", "<p><em>italic</em> text</p>"},
		{"run `sats` now", "<p>run <code>sats</code> now</p>"},
		{"[site](https://x.com)", `<p><a href="https://x.com">site</a></p>`},
	}
	for _, tt := range tests {
		if got := render(t, tt.input); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLists(t *testing.T) {
	got := render(t, "- one\n- two")
	want := "<ul><li>one</li><li>two</li></ul>"
	if got != want {
		t.Errorf("unordered: got %q, want %q", got, want)
	}

	got = render(t, "1. one\n2. two")
	want = "<ol><li>one</li><li>two</li></ol>"
	if got != want {
		t.Errorf("ordered: got %q, want %q", got, want)
	}
}

func TestBlockquote(t *testing.T) {
	got := render(t, "> quoted")
	want := "<blockquote><p>quoted</p></blockquote>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestImage(t *testing.T) {
	got := render(t, "![banner](https://cdn.test/b.jpg)")
	if !strings.Contains(got, `<img src="https://cdn.test/b.jpg" alt="banner"`) {
		t.Errorf("image not rendered: %q", got)
	}
}

func TestHTMLEscaped(t *testing.T) {
	got := render(t, "<script>alert(1)</script>")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML must be escaped, got %q", got)
	}
}

func TestUnsafeLinkSchemeDropped(t *testing.T) {
	got := render(t, "[x](javascript:alert(1))")
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript: URL must be dropped, got %q", got)
	}
}
