package layout

import (
	"fmt"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

// Measurer computes rendered block heights against the context's fixed
// content width. It memoizes token widths for the duration of one
// repagination pass; the cache is the pass-scoped scratch arena, discarded
// with the Measurer itself.
type Measurer struct {
	ts     Typesetter
	ctx    Context
	widths map[widthKey]float64
}

type widthKey struct {
	text string
	size float64
}

// NewMeasurer returns a measurer bound to a typesetter, or ErrNotReady when
// no measurement backend is attached yet.
func NewMeasurer(ts Typesetter, ctx Context) (*Measurer, error) {
	if ts == nil {
		return nil, ErrNotReady
	}
	return &Measurer{ts: ts, ctx: ctx, widths: map[widthKey]float64{}}, nil
}

// Context returns the layout context the measurer was built with.
func (m *Measurer) Context() Context { return m.ctx }

func (m *Measurer) tokenWidth(text string, size float64) (float64, error) {
	key := widthKey{text: text, size: size}
	if w, ok := m.widths[key]; ok {
		return w, nil
	}
	w, err := m.ts.TokenWidth(text, m.ctx.Font, size)
	if err != nil {
		return 0, fmt.Errorf("measure %q: %w", text, err)
	}
	m.widths[key] = w
	return w, nil
}

func (m *Measurer) spaceWidth(size float64) (float64, error) {
	return m.tokenWidth(" ", size)
}

// MarginTop returns the block's top margin, zero for a fragment continued
// from the previous page.
func (m *Measurer) MarginTop(b *document.Block) float64 {
	if b.ContinuesBefore {
		return 0
	}
	return m.ctx.StyleFor(b).MarginTop
}

// MarginBottom returns the block's bottom margin, zero for a fragment that
// continues on the next page.
func (m *Measurer) MarginBottom(b *document.Block) float64 {
	if b.ContinuesAfter {
		return 0
	}
	return m.ctx.StyleFor(b).MarginBottom
}

// BlockHeight returns the block's occupied height at the context's content
// width, including top/bottom margins.
func (m *Measurer) BlockHeight(b *document.Block) (float64, error) {
	h, err := m.ContentHeight(b, m.ctx.ContentWidth())
	if err != nil {
		return 0, err
	}
	return m.MarginTop(b) + h + m.MarginBottom(b), nil
}

// ContentHeight returns the block's own height at the given width, margins
// excluded. Container heights include their children's inner margins.
func (m *Measurer) ContentHeight(b *document.Block, width float64) (float64, error) {
	st := m.ctx.StyleFor(b)
	total := 0.0

	if len(b.Spans) > 0 {
		n, err := lineCount(b.Tokens(), width, st.Size, m)
		if err != nil {
			return 0, err
		}
		total += float64(n) * st.LineHeight
	}

	childWidth := width - st.Indent
	for _, c := range b.Children {
		ch, err := m.ContentHeight(c, childWidth)
		if err != nil {
			return 0, err
		}
		total += m.MarginTop(c) + ch + m.MarginBottom(c)
	}
	return total, nil
}

// Lines wraps the block's own inline content at the given width using the
// block's resolved style. The renderer paints exactly these lines, so the
// heights it produces always agree with what BlockHeight measured.
func (m *Measurer) Lines(b *document.Block, width float64) ([]Line, error) {
	st := m.ctx.StyleFor(b)
	return flow(b.Tokens(), width, st.Size, m)
}

// TitleLines wraps the document title at the banner type scale.
func (m *Measurer) TitleLines(title string) ([]Line, error) {
	st := m.ctx.TitleStyle()
	b := &document.Block{Spans: []document.Span{{Text: title}}}
	return flow(b.Tokens(), m.ctx.ContentWidth(), st.Size, m)
}

// TitleBannerHeight is the vertical space the page-1 title banner occupies.
func (m *Measurer) TitleBannerHeight(title string) (float64, error) {
	if title == "" {
		return 0, nil
	}
	st := m.ctx.TitleStyle()
	lines, err := m.TitleLines(title)
	if err != nil {
		return 0, err
	}
	return float64(len(lines))*st.LineHeight + st.MarginBottom, nil
}
