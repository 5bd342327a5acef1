package layout

import "github.com/TomasNiDo/study-baddie-ai/document"

// Paginate assigns the flat block sequence to fixed-height notebook pages.
// Content order is strictly preserved and the concatenation of all page
// payloads reproduces the input sequence exactly. The pass is deterministic:
// the same blocks and context always yield the same page boundaries.
//
// Returns ErrNotReady when ts is nil, so callers can skip the pass and retry
// on the next trigger instead of committing a wrong page list.
func Paginate(blocks []*document.Block, title string, ctx Context, ts Typesetter) (*Result, error) {
	m, err := NewMeasurer(ts, ctx)
	if err != nil {
		return nil, err
	}
	s := NewSplitter(m)

	titleHeight, err := m.TitleBannerHeight(title)
	if err != nil {
		return nil, err
	}

	maxHeight := ctx.MaxContentHeight()
	queue := make([]*document.Block, len(blocks))
	for i, b := range blocks {
		queue[i] = b.Clone()
	}

	res := &Result{Title: title, TitleHeight: titleHeight, Context: ctx}
	var current []*document.Block
	running := 0.0

	// pageBudget shrinks page 1 by the title banner.
	pageBudget := func() float64 {
		if len(res.Pages) == 0 {
			return maxHeight - titleHeight
		}
		return maxHeight
	}
	flush := func() {
		res.Pages = append(res.Pages, Page{
			Number:        len(res.Pages) + 1,
			Blocks:        current,
			ContentHeight: running,
		})
		current = nil
		running = 0
	}
	pushFront := func(b *document.Block) {
		queue = append([]*document.Block{b}, queue...)
	}

	// Every iteration either commits content to a page or shrinks the queue,
	// so the loop terminates in O(nodes + splits) steps.
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		budget := pageBudget()

		h, err := m.BlockHeight(b)
		if err != nil {
			return nil, err
		}
		if running+h <= budget {
			current = append(current, b)
			running += h
			continue
		}

		remaining := budget - running - m.MarginTop(b)
		if b.Kind.Splittable() && remaining >= minSplitBudget {
			head, tail, err := s.Split(b, remaining)
			if err != nil {
				return nil, err
			}
			if head == nil && tail == nil {
				// Pathological split failure: never drop content. With an
				// empty page there is nowhere better for it, so force it
				// whole; otherwise retry it against a fresh page.
				if running == 0 {
					current = append(current, b)
					flush()
					continue
				}
				flush()
				pushFront(b)
				continue
			}
			if head == nil && running == 0 {
				// Nothing fit even though the page is empty. When only the
				// title banner shrank the budget a later page can still hold
				// it; otherwise (e.g. a list whose first item alone exceeds a
				// page) force it whole to guarantee forward progress.
				if budget < maxHeight {
					flush()
					pushFront(b)
					continue
				}
				if h, t := peelFirst(b); h != nil {
					current = append(current, h)
					flush()
					pushFront(t)
					continue
				}
				current = append(current, b)
				flush()
				continue
			}
			if head != nil {
				hh, err := m.BlockHeight(head)
				if err != nil {
					return nil, err
				}
				current = append(current, head)
				running += hh
				// The splitter budgets content, not the trailing bottom
				// margin: a whole-clone head can stick out by exactly that
				// margin. A margin at the page edge paints nothing, so it
				// collapses instead of counting against the page.
				if running > budget {
					running = budget
				}
			}
			// Flush even when nothing fit: an empty contribution still closes
			// the page so the tail starts against a fresh budget.
			flush()
			if tail != nil {
				pushFront(tail)
			}
			continue
		}

		// Unsplittable, or too little room to bother.
		if running == 0 {
			if h <= maxHeight && budget < maxHeight {
				// Only the title banner is in the way; a full later page can
				// hold the block, so close page 1 and retry.
				flush()
				pushFront(b)
				continue
			}
			// Degenerate: taller than any page. Place it alone and let it
			// overflow visually rather than loop forever.
			current = append(current, b)
			flush()
			continue
		}
		flush()
		pushFront(b)
	}

	if len(current) > 0 || (len(res.Pages) == 0 && title != "") {
		flush()
	}
	return res, nil
}

// peelFirst detaches a container's first child when even a full page cannot
// hold it, so degenerate content (a list of items each taller than a page)
// still advances one item per page instead of landing on a single page.
func peelFirst(b *document.Block) (*document.Block, *document.Block) {
	if len(b.Children) < 2 {
		return nil, nil
	}
	head := b.Clone()
	head.Children = head.Children[:1]
	head.ContinuesAfter = true

	tail := b.Clone()
	tail.Children = tail.Children[1:]
	tail.Spans = nil // any leading text stays with the head
	tail.ContinuesBefore = true
	if b.Kind == document.KindOrderedList {
		tail.Ordinal = max(b.Ordinal, 1) + 1
	}
	return head, tail
}
