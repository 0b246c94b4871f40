package pipeline

// Notes:
// - Tests rewriteRelativePaths directly; Convert covers the combined pass
// - Coverage gaps on error branches in parseHTML/renderHTML are acceptable:
//   the html package rarely fails on valid input
// - Path traversal tests verify the observable behavior (reference not
//   rewritten) rather than isUnderBase itself

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRewriteRelativePaths - Main Function Tests
// ---------------------------------------------------------------------------

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	const fileBase = "file:///docs/readme.md"

	tests := []struct {
		name         string
		html         string
		baseURL      string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "relative image with dot slash",
			html:         `<img src="./images/logo.png">`,
			baseURL:      fileBase,
			wantContains: []string{`src="file:///docs/images/logo.png"`},
		},
		{
			name:         "relative image without dot slash",
			html:         `<img src="images/logo.png">`,
			baseURL:      fileBase,
			wantContains: []string{`src="file:///docs/images/logo.png"`},
		},
		{
			name:         "encoded spaces survive resolution",
			html:         `<img src="images/a%20b.png">`,
			baseURL:      fileBase,
			wantContains: []string{`src="file:///docs/images/a%20b.png"`},
		},
		{
			name:         "server path base",
			html:         `<img src="img/x.png">`,
			baseURL:      "/files/readme.md",
			wantContains: []string{`src="/files/img/x.png"`},
		},
		{
			name:         "http base",
			html:         `<a href="guide.pdf">Guide</a>`,
			baseURL:      "https://example.com/docs/readme.md",
			wantContains: []string{`href="https://example.com/docs/guide.pdf"`},
		},
		{
			name:         "absolute path unchanged",
			html:         `<img src="/abs/logo.png">`,
			baseURL:      fileBase,
			wantContains: []string{`src="/abs/logo.png"`},
		},
		{
			name:         "http URL unchanged",
			html:         `<img src="https://example.com/logo.png">`,
			baseURL:      fileBase,
			wantContains: []string{`src="https://example.com/logo.png"`},
		},
		{
			name:         "data URI unchanged",
			html:         `<img src="data:image/png;base64,ABC123">`,
			baseURL:      fileBase,
			wantContains: []string{`src="data:image/png;base64,ABC123"`},
		},
		{
			name:         "mailto unchanged",
			html:         `<a href="mailto:me@example.com">Mail</a>`,
			baseURL:      fileBase,
			wantContains: []string{`href="mailto:me@example.com"`},
		},
		{
			name:         "empty base returns unchanged",
			html:         `<img src="./logo.png">`,
			baseURL:      "",
			wantContains: []string{`src="./logo.png"`},
		},
		{
			name:         "anchor link unchanged",
			html:         `<a href="#section">Link</a>`,
			baseURL:      fileBase,
			wantContains: []string{`href="#section"`},
		},
		{
			name:         "relative link rewritten",
			html:         `<a href="./other.md">Link</a>`,
			baseURL:      fileBase,
			wantContains: []string{`href="file:///docs/other.md"`},
		},
		{
			name:         "protocol-relative URL unchanged",
			html:         `<img src="//cdn.example.com/logo.png">`,
			baseURL:      fileBase,
			wantContains: []string{`src="//cdn.example.com/logo.png"`},
		},
		{
			name:         "video source not rewritten",
			html:         `<video src="./video.mp4"></video>`,
			baseURL:      fileBase,
			wantContains: []string{`src="./video.mp4"`},
		},
		{
			name:         "script src not rewritten",
			html:         `<script src="./script.js"></script>`,
			baseURL:      fileBase,
			wantContains: []string{`src="./script.js"`},
		},
		{
			name:         "nested elements rewritten",
			html:         `<div><p><img src="./nested.png"></p></div>`,
			baseURL:      fileBase,
			wantContains: []string{`src="file:///docs/nested.png"`},
		},
		{
			name:         "empty src attribute unchanged",
			html:         `<img src="">`,
			baseURL:      fileBase,
			wantContains: []string{`src=""`},
		},
		{
			name:         "fragment is not wrapped",
			html:         `<p>text</p>`,
			baseURL:      fileBase,
			wantContains: []string{`<p>text</p>`},
			wantExcludes: []string{`<body>`, `<html>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := rewriteRelativePaths(tt.html, tt.baseURL)
			if err != nil {
				t.Fatalf("rewriteRelativePaths() error = %v", err)
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("rewriteRelativePaths() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("rewriteRelativePaths() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteRelativePaths_PathTraversal - Security Tests
// ---------------------------------------------------------------------------

func TestRewriteRelativePaths_PathTraversal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantContains string
	}{
		{
			name:         "parent directory traversal blocked",
			html:         `<img src="../../../etc/passwd">`,
			wantContains: `src="../../../etc/passwd"`,
		},
		{
			name:         "double dot in middle blocked",
			html:         `<img src="images/../../../etc/passwd">`,
			wantContains: `src="images/../../../etc/passwd"`,
		},
		{
			name:         "dot segments inside the directory allowed",
			html:         `<img src="sub/../a.png">`,
			wantContains: `src="file:///docs/a.png"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := rewriteRelativePaths(tt.html, "file:///docs/readme.md")
			if err != nil {
				t.Fatalf("rewriteRelativePaths() error = %v", err)
			}
			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("rewriteRelativePaths() = %q, want to contain %q", got, tt.wantContains)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPostprocessFragment - Math Marker Expansion
// ---------------------------------------------------------------------------

func TestPostprocessFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "single marker",
			html:         "<p>a " + Marker(0) + " b</p>",
			wantContains: []string{`<p>a <span class="math-placeholder" data-math-index="0"></span> b</p>`},
		},
		{
			name: "adjacent markers",
			html: "<p>" + Marker(0) + Marker(1) + "</p>",
			wantContains: []string{
				`<p><span class="math-placeholder" data-math-index="0"></span><span class="math-placeholder" data-math-index="1"></span></p>`,
			},
		},
		{
			name:         "nested inline element",
			html:         "<p><em>x " + Marker(3) + "</em></p>",
			wantContains: []string{`<em>x <span class="math-placeholder" data-math-index="3"></span></em>`},
		},
		{
			name:         "marker in attribute left alone",
			html:         `<img alt="` + Marker(2) + `" src="a.png">`,
			wantContains: []string{MathStartMarker + "2" + MathEndMarker},
			wantExcludes: []string{`data-math-index`},
		},
		{
			name:         "text without markers unchanged",
			html:         "<p>plain $ text</p>",
			wantContains: []string{"<p>plain $ text</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := postprocessFragment(tt.html, "")
			if err != nil {
				t.Fatalf("postprocessFragment() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("postprocessFragment() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("postprocessFragment() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}
