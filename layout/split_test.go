package layout

import (
	"reflect"
	"testing"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

func newTestSplitter(t *testing.T) *Splitter {
	t.Helper()
	return NewSplitter(newTestMeasurer(t))
}

// assertConserved checks that head+tail reproduce the original token stream.
func assertConserved(t *testing.T, orig, head, tail *document.Block) {
	t.Helper()
	var got []document.Token
	if head != nil {
		got = append(got, flatTokens([]*document.Block{head})...)
	}
	if tail != nil {
		got = append(got, flatTokens([]*document.Block{tail})...)
	}
	want := flatTokens([]*document.Block{orig})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("split lost or reordered content:\ngot  %d tokens\nwant %d tokens", len(got), len(want))
	}
}

func TestSplitParagraphAtWordBoundary(t *testing.T) {
	s := newTestSplitter(t)
	b := wordsPara(50)
	// 3 lines of 25px fit an 80px budget; 8 words per line.
	head, tail, err := s.Split(b, 80)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head == nil || tail == nil {
		t.Fatalf("expected both fragments, got head=%v tail=%v", head, tail)
	}
	if got := len(head.Tokens()); got != 24 {
		t.Fatalf("head holds %d words, want 24", got)
	}
	if !head.ContinuesAfter || head.ContinuesBefore {
		t.Fatalf("head flags wrong: %+v", head)
	}
	if !tail.ContinuesBefore || tail.ContinuesAfter {
		t.Fatalf("tail flags wrong: %+v", tail)
	}
	assertConserved(t, b, head, tail)
}

func TestSplitHeadingRefuses(t *testing.T) {
	s := newTestSplitter(t)
	b := &document.Block{Kind: document.KindHeading, Level: 2, Spans: []document.Span{{Text: "a very long heading that wraps"}}}
	head, tail, err := s.Split(b, 25)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head != nil {
		t.Fatalf("headings must move whole, got a head fragment")
	}
	if tail == nil || !reflect.DeepEqual(tail.Tokens(), b.Tokens()) {
		t.Fatalf("tail should carry the whole heading")
	}
}

func TestSplitNothingFits(t *testing.T) {
	s := newTestSplitter(t)
	b := wordsPara(10)
	head, tail, err := s.Split(b, 10) // under one line height
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head != nil || tail == nil {
		t.Fatalf("expected (nil, whole), got head=%v tail=%v", head, tail)
	}
	if tail.ContinuesBefore || tail.ContinuesAfter {
		t.Fatalf("unsplit block must not carry continuation flags")
	}
}

func TestSplitEverythingFits(t *testing.T) {
	s := newTestSplitter(t)
	b := wordsPara(8)
	head, tail, err := s.Split(b, 25)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head == nil || tail != nil {
		t.Fatalf("expected (whole, nil), got head=%v tail=%v", head, tail)
	}
}

func bulletList(items, wordsEach int) *document.Block {
	list := &document.Block{Kind: document.KindBulletList}
	for i := 0; i < items; i++ {
		list.Children = append(list.Children, &document.Block{
			Kind:  document.KindListItem,
			Spans: wordsPara(wordsEach).Spans,
		})
	}
	return list
}

func TestSplitListKeepsItemsAtomic(t *testing.T) {
	s := newTestSplitter(t)
	// Items wrap at 372px (400 minus list indent): 7 words per line, so 10
	// words make 2 lines, 56px with the item margin. Three items fit 200px,
	// a fourth would not.
	list := bulletList(5, 10)
	head, tail, err := s.Split(list, 200)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head == nil || tail == nil {
		t.Fatalf("expected both fragments")
	}
	if len(head.Children) != 3 || len(tail.Children) != 2 {
		t.Fatalf("item distribution = %d/%d, want 3/2", len(head.Children), len(tail.Children))
	}
	for _, item := range append(head.Children, tail.Children...) {
		if item.ContinuesBefore || item.ContinuesAfter {
			t.Fatalf("list items must never be fragmented: %+v", item)
		}
	}
	if !head.ContinuesAfter || !tail.ContinuesBefore {
		t.Fatalf("list fragments missing continuation flags")
	}
	assertConserved(t, list, head, tail)
}

func TestSplitOrderedListRenumbersTail(t *testing.T) {
	s := newTestSplitter(t)
	list := bulletList(5, 10)
	list.Kind = document.KindOrderedList
	list.Ordinal = 4
	head, tail, err := s.Split(list, 200)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head == nil || tail == nil {
		t.Fatalf("expected both fragments")
	}
	if want := 4 + len(head.Children); tail.Ordinal != want {
		t.Fatalf("tail ordinal = %d, want %d", tail.Ordinal, want)
	}
}

func TestSplitPreservesHighlightAcrossCut(t *testing.T) {
	s := newTestSplitter(t)
	b := &document.Block{Kind: document.KindParagraph, Spans: []document.Span{
		{Text: repeatWords(20)},
		{Text: repeatWords(10), Highlight: true},
		{Text: repeatWords(20)},
	}}
	// Budget for 3 lines = 24 words: the cut lands inside the highlight.
	head, tail, err := s.Split(b, 75)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head == nil || tail == nil {
		t.Fatalf("expected both fragments")
	}
	ht, tt := head.Tokens(), tail.Tokens()
	if !ht[len(ht)-1].Highlight {
		t.Fatalf("last head token should stay highlighted")
	}
	if !tt[0].Highlight {
		t.Fatalf("first tail token should stay highlighted")
	}
	count := 0
	for _, tok := range append(ht, tt...) {
		if tok.Highlight {
			count++
		}
	}
	if count != 10 {
		t.Fatalf("highlighted word count = %d, want 10", count)
	}
	assertConserved(t, b, head, tail)
}

func TestSplitBlockquoteRecursesIntoParagraph(t *testing.T) {
	s := newTestSplitter(t)
	quote := &document.Block{Kind: document.KindBlockquote, Children: []*document.Block{
		wordsPara(7),  // one line at the quote's 374px inner width
		wordsPara(30), // five lines
	}}
	// First paragraph (37px) fits a 100px budget; the second is cut inside.
	head, tail, err := s.Split(quote, 100)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if head == nil || tail == nil {
		t.Fatalf("expected both fragments")
	}
	if len(head.Children) != 2 {
		t.Fatalf("head should keep the first paragraph plus a fragment, got %d children", len(head.Children))
	}
	if !head.Children[1].ContinuesAfter {
		t.Fatalf("cut paragraph fragment should continue after")
	}
	if len(tail.Children) == 0 || !tail.Children[0].ContinuesBefore {
		t.Fatalf("tail should open with the continuing fragment")
	}
	assertConserved(t, quote, head, tail)
}

func TestSplitMixedListItemTextThenChildren(t *testing.T) {
	s := newTestSplitter(t)
	item := &document.Block{
		Kind:  document.KindListItem,
		Spans: wordsPara(8).Spans,
		Children: []*document.Block{
			{Kind: document.KindBulletList, Children: []*document.Block{
				{Kind: document.KindListItem, Spans: wordsPara(3).Spans},
				{Kind: document.KindListItem, Spans: wordsPara(3).Spans},
			}},
		},
	}
	// The 8-word text wraps to one line (25px); a 30px budget holds the text
	// but none of the nested list, so the children all move to the tail.
	head, tail, err := s.split(item, 30, 400)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if head == nil || tail == nil {
		t.Fatalf("expected both fragments")
	}
	if len(head.Tokens()) != 8 || len(head.Children) != 0 {
		t.Fatalf("head should carry the item text only: %+v", head)
	}
	if len(tail.Tokens()) != 0 || len(tail.Children) != 1 {
		t.Fatalf("tail should carry the nested list only: %+v", tail)
	}
	assertConserved(t, item, head, tail)
}

func repeatWords(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += "word"
	}
	return out
}
