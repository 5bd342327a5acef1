package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/TomasNiDo/study-baddie-ai/document"
	"github.com/TomasNiDo/study-baddie-ai/layout"
	"github.com/TomasNiDo/study-baddie-ai/renderer"
)

// systemFallbacks are tried in order when no explicit font file is given.
var systemFallbacks = []string{"Helvetica", "Arial", "DejaVu Sans", "Liberation Sans", "Noto Sans"}

// Renderer draws paginated notebook pages via github.com/tdewolff/canvas and
// doubles as the layout engine's measurement oracle: the same font faces that
// measure the text later paint it, so wrap points always match.
type Renderer struct {
	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// NewRenderer creates an empty renderer; fonts are loaded lazily per
// FontResource and cached for the renderer's lifetime.
func NewRenderer() *Renderer {
	return &Renderer{families: map[string]*canvas.FontFamily{}}
}

// palette holds the notebook colors. Dark mode switches only the highlight
// color; paper geometry and decor stay identical.
type palette struct {
	paper     color.Color
	rule      color.Color
	redRule   color.Color
	ink       color.Color
	faint     color.Color
	highlight color.Color
}

func paletteFor(dark bool) palette {
	p := palette{
		paper:     canvas.Hex("#fdfbf3"),
		rule:      canvas.Hex("#c9d8e8"),
		redRule:   canvas.Hex("#e8a9a9"),
		ink:       canvas.Hex("#2a2a33"),
		faint:     canvas.Hex("#8a8a92"),
		highlight: canvas.Hex("#ffe08a"),
	}
	if dark {
		p.highlight = canvas.Hex("#d9a521")
	}
	return p
}

// mm converts layout px to canvas mm.
func mm(px float64) float64 { return px * layout.PxToMm }

// TokenWidth implements layout.Typesetter. Face sizes are pt, canvas widths
// are mm; the px conversions happen here at the boundary.
func (r *Renderer) TokenWidth(token string, font layout.FontResource, size float64) (float64, error) {
	face, err := r.face(font, size, canvas.Black)
	if err != nil {
		return 0, err
	}
	return face.TextWidth(token) * layout.MmToPx, nil
}

// Metrics implements layout.Typesetter.
func (r *Renderer) Metrics(font layout.FontResource, size float64) (layout.FontMetrics, error) {
	face, err := r.face(font, size, canvas.Black)
	if err != nil {
		return layout.FontMetrics{}, err
	}
	m := face.Metrics()
	return layout.FontMetrics{
		Ascent:     m.Ascent * layout.MmToPx,
		LineHeight: m.LineHeight * layout.MmToPx,
	}, nil
}

// Render renders every page of the result into a single PDF.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("result has no pages")
	}
	m, err := layout.NewMeasurer(r, result.Context)
	if err != nil {
		return nil, err
	}

	pageW := mm(result.Context.PageWidth)
	pageH := mm(result.Context.PageHeight)

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH, nil)
	writer.SetInfo(result.Title, "study notes", "", "", "study-baddie")
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(pageW, pageH)
		}
		c := canvas.New(pageW, pageH)
		cc := canvas.NewContext(c)
		cc.SetCoordSystem(canvas.CartesianIV) // top-left origin, same as layout
		if err := r.drawPage(cc, m, result, page); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPage paints the notebook frame and then the page's block content.
func (r *Renderer) drawPage(cc *canvas.Context, m *layout.Measurer, result *layout.Result, page layout.Page) error {
	ctx := result.Context
	pal := paletteFor(ctx.Dark)

	r.drawFrame(cc, ctx, pal, page.Number)

	cursor := ctx.Margin.Top
	if page.Number == 1 && result.TitleHeight > 0 {
		if err := r.drawTitle(cc, m, result, pal); err != nil {
			return err
		}
		cursor += result.TitleHeight
	}

	for _, b := range page.Blocks {
		next, err := r.drawBlock(cc, m, b, ctx.Margin.Left, ctx.ContentWidth(), cursor, pal)
		if err != nil {
			return err
		}
		cursor = next
	}
	return nil
}

// drawFrame paints the ruled sheet: paper fill, line pitch rules, red margin
// rule, punch holes and the page-number footer.
func (r *Renderer) drawFrame(cc *canvas.Context, ctx layout.Context, pal palette, number int) {
	// paper
	cc.SetFillColor(pal.paper)
	cc.SetStrokeColor(canvas.Transparent)
	cc.DrawPath(0, 0, canvas.Rectangle(mm(ctx.PageWidth), mm(ctx.PageHeight)))

	// horizontal rules at the body line pitch
	cc.SetStrokeColor(pal.rule)
	cc.SetStrokeWidth(0.15)
	for y := ctx.Margin.Top + ctx.LineHeight; y <= ctx.PageHeight-ctx.Margin.Bottom; y += ctx.LineHeight {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(mm(ctx.PageWidth-ctx.Margin.Left-ctx.Margin.Right+28), 0)
		cc.DrawPath(mm(ctx.Margin.Left-14), mm(y), p)
	}

	// red margin rule, full page height
	cc.SetStrokeColor(pal.redRule)
	cc.SetStrokeWidth(0.3)
	red := &canvas.Path{}
	red.MoveTo(0, 0)
	red.LineTo(0, mm(ctx.PageHeight))
	cc.DrawPath(mm(ctx.Margin.Left-14), 0, red)

	// punch holes along the binding edge
	cc.SetFillColor(canvas.White)
	cc.SetStrokeColor(pal.faint)
	cc.SetStrokeWidth(0.2)
	holeX := ctx.Margin.Left * 0.35
	for _, f := range []float64{0.18, 0.5, 0.82} {
		cy := ctx.PageHeight * f
		cc.DrawPath(mm(holeX-10), mm(cy-10), canvas.Circle(mm(10)))
	}

	// page number footer
	face, err := r.face(ctx.Font, ctx.FontSize*0.85, pal.faint)
	if err != nil {
		return
	}
	label := canvas.NewTextLine(face, fmt.Sprintf("%d", number), canvas.Center)
	cc.DrawText(mm(ctx.PageWidth/2), mm(ctx.PageHeight-ctx.Margin.Bottom/2), label)
}

// drawTitle paints the page-1 banner: the document title with a double rule
// underneath.
func (r *Renderer) drawTitle(cc *canvas.Context, m *layout.Measurer, result *layout.Result, pal palette) error {
	ctx := result.Context
	st := ctx.TitleStyle()
	lines, err := m.TitleLines(result.Title)
	if err != nil {
		return err
	}
	if _, err := r.drawFlowLines(cc, lines, ctx.Margin.Left, ctx.Margin.Top, st, ctx.Font, pal); err != nil {
		return err
	}

	cc.SetStrokeColor(pal.ink)
	ruleY := ctx.Margin.Top + result.TitleHeight - 12
	for i, w := range []float64{0.4, 0.2} {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(mm(ctx.ContentWidth()), 0)
		cc.SetStrokeWidth(w)
		cc.DrawPath(mm(ctx.Margin.Left), mm(ruleY+float64(i)*3), p)
	}
	return nil
}

// drawBlock paints one block (or fragment) at the given left edge and width,
// returning the cursor position below it. The geometry mirrors the Measurer
// exactly; any drift between the two would overflow the page frame.
func (r *Renderer) drawBlock(cc *canvas.Context, m *layout.Measurer, b *document.Block, x, width, y float64, pal palette) (float64, error) {
	ctx := m.Context()
	st := ctx.StyleFor(b)
	y += m.MarginTop(b)

	if b.Kind == document.KindBlockquote {
		h, err := m.ContentHeight(b, width)
		if err != nil {
			return 0, err
		}
		cc.SetFillColor(pal.rule)
		cc.SetStrokeColor(canvas.Transparent)
		cc.DrawPath(mm(x+2), mm(y), canvas.Rectangle(mm(4), mm(h)))
	}

	if len(b.Spans) > 0 {
		lines, err := m.Lines(b, width)
		if err != nil {
			return 0, err
		}
		next, err := r.drawFlowLines(cc, lines, x, y, st, ctx.Font, pal)
		if err != nil {
			return 0, err
		}
		if b.Kind == document.KindHeading && b.Level == 1 && !b.ContinuesAfter {
			p := &canvas.Path{}
			p.MoveTo(0, 0)
			p.LineTo(mm(width*0.45), 0)
			cc.SetStrokeColor(pal.faint)
			cc.SetStrokeWidth(0.25)
			cc.DrawPath(mm(x), mm(next-4), p)
		}
		y = next
	}

	switch b.Kind {
	case document.KindBulletList, document.KindOrderedList:
		for i, item := range b.Children {
			markerY := y + m.MarginTop(item)
			if err := r.drawListMarker(cc, m, b, i, x, markerY, pal); err != nil {
				return 0, err
			}
			next, err := r.drawBlock(cc, m, item, x+st.Indent, width-st.Indent, y, pal)
			if err != nil {
				return 0, err
			}
			y = next
		}
	default:
		for _, c := range b.Children {
			next, err := r.drawBlock(cc, m, c, x+st.Indent, width-st.Indent, y, pal)
			if err != nil {
				return 0, err
			}
			y = next
		}
	}

	return y + m.MarginBottom(b), nil
}

func (r *Renderer) drawListMarker(cc *canvas.Context, m *layout.Measurer, list *document.Block, index int, x, y float64, pal palette) error {
	ctx := m.Context()
	st := ctx.StyleFor(list)
	face, err := r.face(ctx.Font, st.Size, pal.ink)
	if err != nil {
		return err
	}
	fm := face.Metrics()
	leading := math.Max(mm(st.LineHeight)-fm.LineHeight, 0) / 2
	baseline := mm(y) + leading + fm.Ascent

	marker := "•"
	if list.Kind == document.KindOrderedList {
		start := list.Ordinal
		if start <= 0 {
			start = 1
		}
		marker = fmt.Sprintf("%d.", start+index)
	}
	cc.DrawText(mm(x+4), baseline, canvas.NewTextLine(face, marker, canvas.Left))
	return nil
}

// drawFlowLines paints wrapped lines: highlight backgrounds first, then the
// text runs, advancing one style line pitch per line.
func (r *Renderer) drawFlowLines(cc *canvas.Context, lines []layout.Line, x, y float64, st layout.Style, font layout.FontResource, pal palette) (float64, error) {
	face, err := r.face(font, st.Size, pal.ink)
	if err != nil {
		return 0, err
	}
	fm := face.Metrics()
	spaceW, err := r.TokenWidth(" ", font, st.Size)
	if err != nil {
		return 0, err
	}
	leading := math.Max(mm(st.LineHeight)-fm.LineHeight, 0) / 2

	for _, ln := range lines {
		baseline := mm(y) + leading + fm.Ascent
		rx := x
		for _, run := range ln.Runs {
			if run.Highlight {
				cc.SetFillColor(pal.highlight)
				cc.SetStrokeColor(canvas.Transparent)
				pad := 2.0
				cc.DrawPath(mm(rx-pad), mm(y+st.LineHeight*0.08),
					canvas.Rectangle(mm(run.Width+2*pad), mm(st.LineHeight*0.84)))
			}
			cc.DrawText(mm(rx), baseline, canvas.NewTextLine(face, run.Text, canvas.Left))
			rx += run.Width + spaceW
		}
		y += st.LineHeight
	}
	return y, nil
}

// face resolves a cached canvas font face for the resource at a px size.
// Face sizes are pt; canvas-side metrics come back in mm.
func (r *Renderer) face(font layout.FontResource, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePx*layout.PxToPt, col, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := font.Path + "|" + font.Family
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if fam, ok := r.families[key]; ok {
		return fam, nil
	}

	name := font.Family
	if name == "" {
		name = font.Name
	}
	if name == "" {
		name = "Body"
	}
	family := canvas.NewFontFamily(name)

	if font.Path != "" {
		if err := family.LoadFontFile(font.Path, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("load font %s: %w", font.Path, err)
		}
		r.families[key] = family
		return family, nil
	}

	candidates := systemFallbacks
	if font.Family != "" {
		candidates = append([]string{font.Family}, systemFallbacks...)
	}
	var lastErr error
	for _, cand := range candidates {
		if err := family.LoadSystemFont(cand, canvas.FontRegular); err != nil {
			lastErr = err
			continue
		}
		r.families[key] = family
		return family, nil
	}
	return nil, fmt.Errorf("no usable font for %q: %w", name, lastErr)
}
