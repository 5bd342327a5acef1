package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

// stubTypesetter is a minimal measurement oracle for tests: every rune is
// 10px wide regardless of font. It keeps expected line counts easy to compute
// by hand and avoids depending on real fonts.
type stubTypesetter struct{}

func (stubTypesetter) TokenWidth(token string, _ FontResource, _ float64) (float64, error) {
	return float64(len([]rune(token))) * 10, nil
}

func (stubTypesetter) Metrics(_ FontResource, size float64) (FontMetrics, error) {
	return FontMetrics{Ascent: size * 0.8, LineHeight: size * 1.2}, nil
}

// testContext: content area 400x300px. With the stub widths a line of
// repeated "word" tokens (40px + 10px space) holds exactly 8 of them.
func testContext() Context {
	return Context{
		PageWidth:  500,
		PageHeight: 400,
		Margin:     Margin{Top: 50, Right: 50, Bottom: 50, Left: 50},
		Font:       FontResource{Name: "Body"},
		FontSize:   16,
		LineHeight: 25,
	}
}

func newTestMeasurer(t *testing.T) *Measurer {
	t.Helper()
	m, err := NewMeasurer(stubTypesetter{}, testContext())
	if err != nil {
		t.Fatalf("NewMeasurer: %v", err)
	}
	return m
}

// wordsPara builds a paragraph of n copies of "word".
func wordsPara(n int) *document.Block {
	return &document.Block{
		Kind:  document.KindParagraph,
		Spans: []document.Span{{Text: strings.TrimSpace(strings.Repeat("word ", n))}},
	}
}

// flatTokens flattens the token stream of a block sequence, in order.
func flatTokens(blocks []*document.Block) []document.Token {
	var out []document.Token
	var walk func(b *document.Block)
	walk = func(b *document.Block) {
		out = append(out, b.Tokens()...)
		for _, c := range b.Children {
			walk(c)
		}
	}
	for _, b := range blocks {
		walk(b)
	}
	return out
}

func TestNewMeasurerWithoutTypesetter(t *testing.T) {
	if _, err := NewMeasurer(nil, testContext()); err != ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestParagraphHeightCountsWrappedLines(t *testing.T) {
	m := newTestMeasurer(t)
	// 20 words at 8 per line = 3 lines.
	h, err := m.BlockHeight(wordsPara(20))
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	st := testContext().StyleFor(wordsPara(20))
	want := 3*st.LineHeight + st.MarginBottom
	if h != want {
		t.Fatalf("paragraph height = %g, want %g", h, want)
	}
}

func TestFragmentFlagsSuppressInwardMargins(t *testing.T) {
	m := newTestMeasurer(t)
	b := wordsPara(8)
	whole, err := m.BlockHeight(b)
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	frag := b.Clone()
	frag.ContinuesAfter = true
	cut, err := m.BlockHeight(frag)
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	st := testContext().StyleFor(b)
	if whole-cut != st.MarginBottom {
		t.Fatalf("continuing fragment should drop its bottom margin: whole=%g cut=%g", whole, cut)
	}
}

func TestListHeightIncludesItemMargins(t *testing.T) {
	m := newTestMeasurer(t)
	list := &document.Block{Kind: document.KindBulletList}
	for i := 0; i < 3; i++ {
		list.Children = append(list.Children, &document.Block{
			Kind:  document.KindListItem,
			Spans: []document.Span{{Text: fmt.Sprintf("item %d", i)}},
		})
	}
	h, err := m.BlockHeight(list)
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	ctx := testContext()
	itemSt := ctx.StyleFor(list.Children[0])
	listSt := ctx.StyleFor(list)
	want := 3*(itemSt.LineHeight+itemSt.MarginBottom) + listSt.MarginBottom
	if h != want {
		t.Fatalf("list height = %g, want %g", h, want)
	}
}

func TestHeadingScalesAboveBody(t *testing.T) {
	m := newTestMeasurer(t)
	h1 := &document.Block{Kind: document.KindHeading, Level: 1, Spans: []document.Span{{Text: "T"}}}
	para := &document.Block{Kind: document.KindParagraph, Spans: []document.Span{{Text: "T"}}}
	hh, err := m.BlockHeight(h1)
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	ph, err := m.BlockHeight(para)
	if err != nil {
		t.Fatalf("BlockHeight: %v", err)
	}
	if hh <= ph {
		t.Fatalf("h1 (%g) should be taller than a one-line paragraph (%g)", hh, ph)
	}
}

func TestTitleBannerHeight(t *testing.T) {
	m := newTestMeasurer(t)
	h, err := m.TitleBannerHeight("Biology Notes")
	if err != nil {
		t.Fatalf("TitleBannerHeight: %v", err)
	}
	st := testContext().TitleStyle()
	if h != st.LineHeight+st.MarginBottom {
		t.Fatalf("banner height = %g, want %g", h, st.LineHeight+st.MarginBottom)
	}
	empty, err := m.TitleBannerHeight("")
	if err != nil || empty != 0 {
		t.Fatalf("empty title banner = %g, %v; want 0, nil", empty, err)
	}
}
