package layout

import (
	"errors"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

// ErrNotReady is returned when pagination is requested before a measurement
// backend is attached. Callers skip the pass and retry on the next trigger
// instead of publishing a wrong page list.
var ErrNotReady = errors.New("layout: typesetter not attached")

// FontResource describes the body font. Path may point at a font file on
// disk; when empty the renderer falls back to a system font by family name.
type FontResource struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Family string `json:"family,omitempty"`
}

// FontMetrics are the vertical metrics of a font face at a given size, in px.
type FontMetrics struct {
	Ascent     float64
	LineHeight float64
}

// Typesetter is the text measurement oracle. Line-wrap points depend on real
// glyph widths, so measurement must run through the same font machinery that
// later paints the pages; the canvas renderer implements this interface.
type Typesetter interface {
	// TokenWidth returns the rendered width in px of one word token at the
	// given font size (px).
	TokenWidth(token string, font FontResource, size float64) (float64, error)
	// Metrics returns the face's vertical metrics at the given size (px).
	Metrics(font FontResource, size float64) (FontMetrics, error)
}

// Margin is the page margin in px. The left margin is wider than the right
// to leave room for the punch holes and the red rule.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Context is the immutable per-pass layout configuration. All lengths are in
// device pixels. Dark affects only the highlight color, never geometry.
type Context struct {
	PageWidth  float64      `json:"pageWidth"`
	PageHeight float64      `json:"pageHeight"`
	Margin     Margin       `json:"margin"`
	Font       FontResource `json:"font"`
	FontSize   float64      `json:"fontSize"`   // base body size, px
	LineHeight float64      `json:"lineHeight"` // body line pitch, px
	Dark       bool         `json:"dark,omitempty"`
}

// ContentWidth is the fixed width every block is measured and painted at.
func (c Context) ContentWidth() float64 {
	return c.PageWidth - c.Margin.Left - c.Margin.Right
}

// MaxContentHeight is the vertical budget of one page.
func (c Context) MaxContentHeight() float64 {
	return c.PageHeight - c.Margin.Top - c.Margin.Bottom
}

// DefaultContext is an A4 sheet at 96dpi with notebook margins.
func DefaultContext() Context {
	return Context{
		PageWidth:  794,
		PageHeight: 1123,
		Margin:     Margin{Top: 96, Right: 64, Bottom: 88, Left: 110},
		Font:       FontResource{Name: "Body"},
		FontSize:   16,
		LineHeight: 26,
	}
}

// Page is the ordered content assigned to one physical page. Pages are
// 1-indexed; page 1 carries the document title banner.
type Page struct {
	Number        int               `json:"number"`
	Blocks        []*document.Block `json:"blocks"`
	ContentHeight float64           `json:"contentHeight"`
}

// Result is one complete pagination pass: immutable once produced, replaced
// wholesale on the next pass.
type Result struct {
	Title       string  `json:"title,omitempty"`
	TitleHeight float64 `json:"titleHeight,omitempty"` // banner height on page 1, px
	Pages       []Page  `json:"pages"`
	Context     Context `json:"context"`
}
