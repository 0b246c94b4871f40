package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/view"
)

// StylePrefix is the URL prefix of stylesheets served from the asset loader.
const StylePrefix = "/assets/styles/"

// ErrStandalone indicates the standalone page could not be built.
var ErrStandalone = errors.New("building standalone page failed")

// interactive lists the elements that only work against a live server.
var interactive = []string{
	"script",
	"." + view.ToggleClass,
	"." + view.CopyButtonClass,
}

// Standalone renders s as a self-contained page: asset stylesheets are
// inlined from loader, extraCSS is appended, and interactive elements are
// removed. s is not modified.
func Standalone(ctx context.Context, s *view.State, loader assets.AssetLoader, extraCSS string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := s.Clone()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStandalone, err)
	}
	doc := page.Document()

	for _, sel := range interactive {
		doc.Find(sel).Remove()
	}

	var inlineErr error
	doc.Find(`link[rel="stylesheet"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		name, ok := assetStyleName(href)
		if !ok {
			return true
		}
		css, err := loader.LoadStyle(name)
		if err != nil {
			inlineErr = fmt.Errorf("%w: %v", ErrStandalone, err)
			return false
		}
		id, _ := link.Attr("id")
		style := "<style"
		if id != "" {
			style += ` data-source="` + id + `"`
		}
		link.ReplaceWithHtml(style + ">" + sanitizeCSS(css) + "</style>")
		return true
	})
	if inlineErr != nil {
		return "", inlineErr
	}

	out, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStandalone, err)
	}

	injector := &CSSInjection{}
	return injector.InjectCSS(ctx, out, extraCSS), nil
}

// assetStyleName extracts "viewer" from "/assets/styles/viewer.css".
func assetStyleName(href string) (string, bool) {
	if !strings.HasPrefix(href, StylePrefix) || !strings.HasSuffix(href, ".css") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(href, StylePrefix), ".css")
	if assets.ValidateAssetName(name) != nil {
		return "", false
	}
	return name, true
}
