// Package typeset renders LaTeX math to MathML.
package typeset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wyatt915/treeblood"
)

// ErrTypeset indicates a formula could not be rendered.
var ErrTypeset = errors.New("typesetting failed")

// Engine renders one formula. display selects block layout.
type Engine interface {
	Render(src string, display bool) (string, error)
}

// TreebloodEngine converts TeX to MathML with treeblood (pure Go).
type TreebloodEngine struct {
	// Macros are user-defined TeX macros, name to expansion.
	Macros map[string]string
}

// NewTreebloodEngine returns an engine without custom macros.
func NewTreebloodEngine() *TreebloodEngine {
	return &TreebloodEngine{}
}

// Render converts src to a <math> element. Malformed input and internal
// panics of the converter are reported as ErrTypeset.
func (e *TreebloodEngine) Render(src string, display bool) (mml string, err error) {
	if strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("%w: empty formula", ErrTypeset)
	}

	defer func() {
		if r := recover(); r != nil {
			mml, err = "", fmt.Errorf("%w: internal error: %v", ErrTypeset, r)
		}
	}()

	out, err := treeblood.TexToMML(src, e.Macros, display, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTypeset, err)
	}
	if !strings.Contains(out, "<math") {
		return "", fmt.Errorf("%w: no math element produced", ErrTypeset)
	}
	return out, nil
}

var _ Engine = (*TreebloodEngine)(nil)
