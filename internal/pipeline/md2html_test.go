package pipeline

// Notes:
// - Converter output goes through x/net/html rendering, so assertions use
//   substrings that survive serialization (e.g. "<br/>" rather than "<br />")
// - Syntax highlighting details belong to chroma; only the presence of the
//   chroma wrapper is asserted

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_Convert
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		opts         ConvertOptions
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "headings have no generated id",
			input:        "# Title",
			wantContains: []string{"<h1>Title</h1>"},
		},
		{
			name:         "file link labeled",
			input:        "[x](notes.pdf)",
			wantContains: []string{`<a href="notes.pdf">x <span class="file-ext">[pdf]</span></a>`},
		},
		{
			name:         "web page link not labeled",
			input:        "[x](page.html)",
			wantContains: []string{`<a href="page.html">x</a>`},
			wantExcludes: []string{"file-ext"},
		},
		{
			name:         "link title rendered",
			input:        `[x](a.zip "Archive")`,
			wantContains: []string{`title="Archive"`, "[zip]"},
		},
		{
			name:         "existing label not doubled",
			input:        "[notes [pdf]](notes.pdf)",
			wantContains: []string{`<a href="notes.pdf">notes [pdf]</a>`},
			wantExcludes: []string{"file-ext"},
		},
		{
			name:         "custom decorator",
			input:        "[x](notes.pdf)",
			opts:         ConvertOptions{Decorate: NoDecoration},
			wantContains: []string{`<a href="notes.pdf">x</a>`},
		},
		{
			name:         "dangerous URL dropped",
			input:        "[x](javascript:alert(1))",
			wantContains: []string{`<a href="">x</a>`},
		},
		{
			name:  "diagram fence kept verbatim",
			input: "```mermaid\ngraph TD;\nA-->B;\n```",
			wantContains: []string{
				`<pre><code class="language-mermaid">graph TD;`,
				"A--&gt;B;",
			},
			wantExcludes: []string{"chroma"},
		},
		{
			name:         "custom diagram language",
			input:        "```dot\ndigraph{}\n```",
			opts:         ConvertOptions{DiagramLanguage: "dot"},
			wantContains: []string{`<code class="language-dot">digraph{}`},
		},
		{
			name:         "other fences highlighted",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{"chroma"},
		},
		{
			name:         "relative image resolved",
			input:        "![logo](img/logo.png)",
			opts:         ConvertOptions{BaseURL: "file:///docs/readme.md"},
			wantContains: []string{`src="file:///docs/img/logo.png"`},
		},
		{
			name:         "math marker expanded",
			input:        Preprocess("Euler $e^{i\\pi}$").Text(),
			wantContains: []string{`<span class="math-placeholder" data-math-index="0"></span>`},
		},
		{
			name:         "dollars in fence nested in list stay code",
			input:        Preprocess("1. run\n\n    ````sh\n    ```\n    echo $a$\n    ```\n    ````\n").Text(),
			wantContains: []string{"<li>", "<pre"},
			wantExcludes: []string{"math-placeholder"},
		},
		{
			name:         "raw html not rendered",
			input:        "<script>alert(1)</script>",
			wantExcludes: []string{"<script>"},
		},
		{
			name:         "gfm table",
			input:        "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>1</td>"},
		},
	}

	converter := NewGoldmarkConverter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := converter.Convert(context.Background(), tt.input, tt.opts)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Convert() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Convert() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestGoldmarkConverter_Convert_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().Convert(ctx, "# Title", ConvertOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

func TestGoldmarkConverter_Convert_DecoratorPanic(t *testing.T) {
	t.Parallel()

	boom := func(href, title, text string) string { panic("boom") }

	_, err := NewGoldmarkConverter().Convert(context.Background(), "[x](a.pdf)", ConvertOptions{Decorate: boom})
	if !errors.Is(err, ErrHTMLConversion) {
		t.Errorf("Convert() error = %v, want ErrHTMLConversion", err)
	}
}

func TestGoldmarkConverter_Convert_Deterministic(t *testing.T) {
	t.Parallel()

	input := "# A\n\n[f](f.txt) $x$\n\n```mermaid\nA-->B\n```\n"
	converter := NewGoldmarkConverter()

	first, err := converter.Convert(context.Background(), input, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	second, err := converter.Convert(context.Background(), input, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if first != second {
		t.Errorf("Convert() not deterministic:\n%q\n%q", first, second)
	}
}
