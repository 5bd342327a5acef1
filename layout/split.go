package layout

import "github.com/TomasNiDo/study-baddie-ai/document"

// minSplitBudget is the usefulness threshold: with less vertical room than
// this, splitting buys nothing and the offending block moves whole to the
// next page.
const minSplitBudget = 20.0

// Splitter partitions an oversized block into a head fragment that fits a
// height budget and a tail fragment carried to the next page.
type Splitter struct {
	m *Measurer
}

func NewSplitter(m *Measurer) *Splitter { return &Splitter{m: m} }

// Split returns (head, tail). Head is nil when nothing fits; tail is nil when
// everything does. The budget covers the head fragment's content height — the
// caller has already accounted for the block's top margin, and the head's
// bottom margin is suppressed by its continuation flag. Content-wise,
// head + tail always reconstructs b exactly.
func (s *Splitter) Split(b *document.Block, budget float64) (*document.Block, *document.Block, error) {
	return s.split(b, budget, s.m.ctx.ContentWidth())
}

func (s *Splitter) split(b *document.Block, budget, width float64) (*document.Block, *document.Block, error) {
	if !b.Kind.Splittable() {
		return nil, b.Clone(), nil
	}
	if len(b.Children) == 0 {
		return s.splitSpans(b, budget, width)
	}
	if len(b.Spans) > 0 {
		return s.splitMixed(b, budget, width)
	}
	return s.splitChildren(b, budget, width)
}

// splitSpans cuts a leaf block at a word boundary: the maximal token prefix
// whose wrapped height fits the budget. The scan re-measures incrementally,
// one word at a time.
func (s *Splitter) splitSpans(b *document.Block, budget, width float64) (*document.Block, *document.Block, error) {
	st := s.m.ctx.StyleFor(b)
	tokens := b.Tokens()

	spaceW, err := s.m.spaceWidth(st.Size)
	if err != nil {
		return nil, nil, err
	}
	ws := newWrapState(width, spaceW)
	fit := 0
	for _, tok := range tokens {
		w, err := s.m.tokenWidth(tok.Text, st.Size)
		if err != nil {
			return nil, nil, err
		}
		ws.push(w)
		if float64(ws.lines)*st.LineHeight > budget {
			break
		}
		fit++
	}

	if fit == 0 {
		return nil, b.Clone(), nil
	}
	if fit == len(tokens) {
		return b.Clone(), nil, nil
	}

	head := s.shell(b)
	head.Spans = document.SpansFromTokens(tokens[:fit])
	head.ContinuesAfter = true

	tail := s.shell(b)
	tail.Spans = document.SpansFromTokens(tokens[fit:])
	tail.ContinuesBefore = true
	return head, tail, nil
}

// splitChildren cuts a container block between or inside its children.
// List items are atomic from their list's perspective: an item that does not
// fit moves wholly to the tail instead of being split in place.
func (s *Splitter) splitChildren(b *document.Block, budget, width float64) (*document.Block, *document.Block, error) {
	st := s.m.ctx.StyleFor(b)
	childWidth := width - st.Indent
	atomicChildren := b.Kind == document.KindBulletList || b.Kind == document.KindOrderedList

	var headKids, tailKids []*document.Block
	used := 0.0
	rest := len(b.Children)
	for i, c := range b.Children {
		ch, err := s.m.ContentHeight(c, childWidth)
		if err != nil {
			return nil, nil, err
		}
		full := s.m.MarginTop(c) + ch + s.m.MarginBottom(c)
		if used+full <= budget {
			headKids = append(headKids, c.Clone())
			used += full
			continue
		}

		remaining := budget - used - s.m.MarginTop(c)
		if !atomicChildren && c.Kind.Splittable() && remaining >= minSplitBudget {
			cHead, cTail, err := s.split(c, remaining, childWidth)
			if err != nil {
				return nil, nil, err
			}
			if cHead != nil {
				headKids = append(headKids, cHead)
			}
			if cTail != nil {
				tailKids = append(tailKids, cTail)
			}
			rest = i + 1
			break
		}
		rest = i
		break
	}
	for _, c := range b.Children[min(rest, len(b.Children)):] {
		tailKids = append(tailKids, c.Clone())
	}

	if len(headKids) == 0 {
		return nil, b.Clone(), nil
	}
	if len(tailKids) == 0 {
		return b.Clone(), nil, nil
	}

	head := s.shell(b)
	head.Children = headKids
	head.ContinuesAfter = true

	tail := s.shell(b)
	tail.Children = tailKids
	tail.ContinuesBefore = true
	if b.Kind == document.KindOrderedList {
		tail.Ordinal = b.Ordinal + len(headKids)
	}
	return head, tail, nil
}

// splitMixed handles list items carrying both their own text and nested
// blocks: the text region is consumed first, then the children.
func (s *Splitter) splitMixed(b *document.Block, budget, width float64) (*document.Block, *document.Block, error) {
	st := s.m.ctx.StyleFor(b)
	n, err := lineCount(b.Tokens(), width, st.Size, s.m)
	if err != nil {
		return nil, nil, err
	}
	spanHeight := float64(n) * st.LineHeight

	if spanHeight > budget {
		// Cut inside the text; every child follows in the tail.
		leaf := s.shell(b)
		leaf.Spans = append([]document.Span(nil), b.Spans...)
		head, tail, err := s.splitSpans(leaf, budget, width)
		if err != nil {
			return nil, nil, err
		}
		if head == nil {
			return nil, b.Clone(), nil
		}
		if tail == nil {
			tail = s.shell(b)
			tail.ContinuesBefore = true
		}
		for _, c := range b.Children {
			tail.Children = append(tail.Children, c.Clone())
		}
		tail.ContinuesAfter = b.ContinuesAfter
		return head, tail, nil
	}

	// Text fits; distribute the children against what is left.
	rump := s.shell(b)
	rump.Children = b.Children
	head, tail, err := s.splitChildren(rump, budget-spanHeight, width)
	if err != nil {
		return nil, nil, err
	}
	if head != nil {
		head.Spans = append([]document.Span(nil), b.Spans...)
	}
	if head == nil && tail != nil {
		// No child fits, but the text does: keep the text on this page.
		head = s.shell(b)
		head.Spans = append([]document.Span(nil), b.Spans...)
		head.ContinuesAfter = true
		tail.Spans = nil
		tail.ContinuesBefore = true
	}
	return head, tail, nil
}

// shell clones the block's identity without content, preserving the
// continuation flags so outward margins at the original edges survive.
func (s *Splitter) shell(b *document.Block) *document.Block {
	return &document.Block{
		Kind:            b.Kind,
		Level:           b.Level,
		Ordinal:         b.Ordinal,
		ContinuesAfter:  b.ContinuesAfter,
		ContinuesBefore: b.ContinuesBefore,
	}
}
