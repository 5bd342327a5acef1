package layout

import "github.com/TomasNiDo/study-baddie-ai/document"

// Run is a measured fragment of one wrapped line: consecutive words sharing
// a highlight flag, joined by single spaces. Keeping highlighted words in one
// run lets the renderer paint a continuous background with no visual gap.
type Run struct {
	Text      string
	Width     float64
	Highlight bool
}

// Line is one wrapped line of inline content.
type Line struct {
	Runs  []Run
	Width float64
}

// flow greedily wraps word tokens into lines no wider than width. Words are
// never broken: a token wider than the whole line gets a line of its own and
// may overflow horizontally, so page splits always land on whitespace.
func flow(tokens []document.Token, width float64, size float64, m *Measurer) ([]Line, error) {
	spaceW, err := m.spaceWidth(size)
	if err != nil {
		return nil, err
	}

	var lines []Line
	var cur Line
	emit := func() {
		if len(cur.Runs) == 0 {
			return
		}
		lines = append(lines, cur)
		cur = Line{}
	}

	for _, tok := range tokens {
		w, err := m.tokenWidth(tok.Text, size)
		if err != nil {
			return nil, err
		}
		if len(cur.Runs) > 0 && cur.Width+spaceW+w > width {
			emit()
		}
		if n := len(cur.Runs); n > 0 && cur.Runs[n-1].Highlight == tok.Highlight {
			cur.Runs[n-1].Text += " " + tok.Text
			cur.Runs[n-1].Width += spaceW + w
			cur.Width += spaceW + w
			continue
		}
		gap := 0.0
		if len(cur.Runs) > 0 {
			gap = spaceW
		}
		cur.Runs = append(cur.Runs, Run{Text: tok.Text, Width: w, Highlight: tok.Highlight})
		cur.Width += gap + w
	}
	emit()
	return lines, nil
}

// wrapState is the incremental counterpart of flow: push one token width,
// read the new line count. The splitting scan grows a candidate prefix one
// word at a time and re-measures in O(1) per word instead of re-flowing the
// whole prefix.
type wrapState struct {
	width     float64
	spaceW    float64
	lines     int
	lineWidth float64
}

func newWrapState(width, spaceW float64) *wrapState {
	return &wrapState{width: width, spaceW: spaceW}
}

func (w *wrapState) push(tokenWidth float64) {
	if w.lines == 0 {
		w.lines = 1
		w.lineWidth = tokenWidth
		return
	}
	if w.lineWidth+w.spaceW+tokenWidth > w.width {
		w.lines++
		w.lineWidth = tokenWidth
		return
	}
	w.lineWidth += w.spaceW + tokenWidth
}

// lineCount counts wrapped lines without materializing them.
func lineCount(tokens []document.Token, width, size float64, m *Measurer) (int, error) {
	spaceW, err := m.spaceWidth(size)
	if err != nil {
		return 0, err
	}
	ws := newWrapState(width, spaceW)
	for _, tok := range tokens {
		w, err := m.tokenWidth(tok.Text, size)
		if err != nil {
			return 0, err
		}
		ws.push(w)
	}
	return ws.lines, nil
}
