package layout

import "github.com/TomasNiDo/study-baddie-ai/document"

// Style is the resolved type scale and spacing for one block kind, in px.
type Style struct {
	Size         float64 // font size
	LineHeight   float64 // vertical advance per wrapped line
	MarginTop    float64
	MarginBottom float64
	Indent       float64 // left inset applied to children / inline content
}

// StyleFor resolves the style of a block against the context's base font
// size and line pitch.
func (c Context) StyleFor(b *document.Block) Style {
	switch b.Kind {
	case document.KindHeading:
		switch b.Level {
		case 1:
			return Style{Size: c.FontSize * 1.6, LineHeight: c.LineHeight * 1.6, MarginTop: 18, MarginBottom: 10}
		case 2:
			return Style{Size: c.FontSize * 1.35, LineHeight: c.LineHeight * 1.35, MarginTop: 16, MarginBottom: 8}
		default:
			return Style{Size: c.FontSize * 1.15, LineHeight: c.LineHeight * 1.15, MarginTop: 14, MarginBottom: 6}
		}
	case document.KindBulletList, document.KindOrderedList:
		return Style{Size: c.FontSize, LineHeight: c.LineHeight, MarginBottom: 12, Indent: 28}
	case document.KindListItem:
		return Style{Size: c.FontSize, LineHeight: c.LineHeight, MarginBottom: 6}
	case document.KindBlockquote:
		return Style{Size: c.FontSize, LineHeight: c.LineHeight, MarginTop: 4, MarginBottom: 12, Indent: 26}
	default:
		return Style{Size: c.FontSize, LineHeight: c.LineHeight, MarginBottom: 12}
	}
}

// TitleStyle is the page-1 banner type scale.
func (c Context) TitleStyle() Style {
	return Style{Size: c.FontSize * 1.8, LineHeight: c.LineHeight * 1.8, MarginBottom: bannerGap}
}

// bannerGap separates the title banner from the first content block.
const bannerGap = 18.0
