package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/TomasNiDo/study-baddie-ai/layout"
)

// RenderPNG rasterizes each page of the result into its own PNG, at the
// layout's native pixel size (96dpi).
func (r *Renderer) RenderPNG(result *layout.Result) ([][]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("result has no pages")
	}
	m, err := layout.NewMeasurer(r, result.Context)
	if err != nil {
		return nil, err
	}

	pageW := mm(result.Context.PageWidth)
	pageH := mm(result.Context.PageHeight)

	out := make([][]byte, 0, len(result.Pages))
	for _, page := range result.Pages {
		c := canvas.New(pageW, pageH)
		cc := canvas.NewContext(c)
		cc.SetCoordSystem(canvas.CartesianIV)
		if err := r.drawPage(cc, m, result, page); err != nil {
			return nil, err
		}
		img := rasterizer.Draw(c, canvas.DPMM(layout.MmToPx), canvas.DefaultColorSpace)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", page.Number, err)
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}
