package renderer

import "github.com/TomasNiDo/study-baddie-ai/layout"

// Renderer turns a paginated layout result into a final document.
// Render returns the produced binary data, e.g. a PDF byte slice.
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
