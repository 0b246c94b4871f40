package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestExtensionLabel
// ---------------------------------------------------------------------------

func TestExtensionLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		href string
		text string
		want string
	}{
		{name: "pdf file", href: "notes.pdf", text: "Notes", want: "[pdf]"},
		{name: "uppercase extension lowered", href: "Report.PDF", text: "Report", want: "[pdf]"},
		{name: "last segment of double extension", href: "archive.tar.gz", text: "a", want: "[gz]"},
		{name: "query and fragment ignored", href: "https://example.com/a.zip?x=1#f", text: "a", want: "[zip]"},
		{name: "nested relative path", href: "../docs/spec.v2/guide.md", text: "g", want: "[md]"},
		{name: "html page not labeled", href: "page.html", text: "p", want: ""},
		{name: "htm page not labeled", href: "index.HTM", text: "p", want: ""},
		{name: "php page not labeled", href: "script.php", text: "p", want: ""},
		{name: "aspx page not labeled", href: "/app/default.aspx", text: "p", want: ""},
		{name: "directory not labeled", href: "docs/", text: "d", want: ""},
		{name: "dot only in directory", href: "v1.2/readme", text: "r", want: ""},
		{name: "no extension", href: "README", text: "r", want: ""},
		{name: "trailing dot", href: "file.", text: "f", want: ""},
		{name: "site root", href: "http://example.com", text: "e", want: ""},
		{name: "anchor only", href: "#section", text: "s", want: ""},
		{name: "malformed href", href: "%zz.pdf", text: "m", want: ""},
		{name: "label already in text", href: "notes.pdf", text: "notes [pdf]", want: ""},
		{name: "other label in text", href: "notes.pdf", text: "notes [zip]", want: "[pdf]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtensionLabel(tt.href, "", tt.text); got != tt.want {
				t.Errorf("ExtensionLabel(%q, %q) = %q, want %q", tt.href, tt.text, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDecorateLink
// ---------------------------------------------------------------------------

func TestDecorateLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		href  string
		title string
		text  string
		want  string
	}{
		{
			name: "file link labeled",
			href: "notes.pdf",
			text: "Notes",
			want: `<a href="notes.pdf">Notes <span class="file-ext">[pdf]</span></a>`,
		},
		{
			name:  "title kept",
			href:  "data.csv",
			title: "Raw data",
			text:  "Data",
			want:  `<a href="data.csv" title="Raw data">Data <span class="file-ext">[csv]</span></a>`,
		},
		{
			name: "web page plain",
			href: "page.html",
			text: "Page",
			want: `<a href="page.html">Page</a>`,
		},
		{
			name: "href escaped",
			href: `a"b.pdf`,
			text: "x",
			want: `<a href="a&#34;b.pdf">x <span class="file-ext">[pdf]</span></a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DecorateLink(tt.href, tt.title, tt.text); got != tt.want {
				t.Errorf("DecorateLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecorateLink_Idempotent(t *testing.T) {
	t.Parallel()

	once := DecorateLink("notes.pdf", "", "Notes")
	inner := strings.TrimSuffix(strings.TrimPrefix(once, `<a href="notes.pdf">`), "</a>")
	twice := DecorateLink("notes.pdf", "", inner)

	if once != twice {
		t.Errorf("decorating twice changed output:\nonce:  %q\ntwice: %q", once, twice)
	}
	if n := strings.Count(twice, "[pdf]"); n != 1 {
		t.Errorf("label count = %d, want 1", n)
	}
}

func TestNoDecoration(t *testing.T) {
	t.Parallel()

	if got := NoDecoration("notes.pdf", "", "Notes"); got != "" {
		t.Errorf("NoDecoration() = %q, want empty", got)
	}
	if got := decorateWith(NoDecoration, "notes.pdf", "", "Notes"); got != `<a href="notes.pdf">Notes</a>` {
		t.Errorf("decorateWith(NoDecoration) = %q", got)
	}
}
