package layout

import (
	"strings"
	"testing"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

func TestFlowWrapsAtEightWordsPerLine(t *testing.T) {
	m := newTestMeasurer(t)
	lines, err := flow(wordsPara(20).Tokens(), 400, 16, m)
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// 8 words of 40px joined by 7 spaces of 10px.
	if lines[0].Width != 390 {
		t.Fatalf("first line width = %g, want 390", lines[0].Width)
	}
	if lines[0].Width > 400 || lines[1].Width > 400 {
		t.Fatalf("line exceeds wrap width")
	}
}

func TestFlowMergesSameHighlightIntoOneRun(t *testing.T) {
	m := newTestMeasurer(t)
	tokens := []document.Token{
		{Text: "aa"}, {Text: "bb"},
		{Text: "cc", Highlight: true}, {Text: "dd", Highlight: true},
		{Text: "ee"},
	}
	lines, err := flow(tokens, 400, 16, m)
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	runs := lines[0].Runs
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %#v", len(runs), runs)
	}
	if runs[0].Text != "aa bb" || runs[0].Highlight {
		t.Fatalf("bad first run: %#v", runs[0])
	}
	if runs[1].Text != "cc dd" || !runs[1].Highlight {
		t.Fatalf("highlighted words should merge into one run: %#v", runs[1])
	}
}

func TestFlowOversizedWordGetsOwnLine(t *testing.T) {
	m := newTestMeasurer(t)
	tokens := []document.Token{
		{Text: "short"},
		{Text: strings.Repeat("x", 50)}, // 500px, wider than any line
		{Text: "tail"},
	}
	lines, err := flow(tokens, 400, 16, m)
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if len(lines[1].Runs) != 1 || lines[1].Width != 500 {
		t.Fatalf("oversized word should sit alone: %#v", lines[1])
	}
}

func TestWrapStateMatchesFlow(t *testing.T) {
	m := newTestMeasurer(t)
	cases := [][]document.Token{
		nil,
		wordsPara(1).Tokens(),
		wordsPara(8).Tokens(),
		wordsPara(9).Tokens(),
		wordsPara(100).Tokens(),
		{{Text: strings.Repeat("x", 50)}, {Text: "y"}},
	}
	for i, tokens := range cases {
		lines, err := flow(tokens, 400, 16, m)
		if err != nil {
			t.Fatalf("case %d: flow: %v", i, err)
		}
		n, err := lineCount(tokens, 400, 16, m)
		if err != nil {
			t.Fatalf("case %d: lineCount: %v", i, err)
		}
		if n != len(lines) {
			t.Fatalf("case %d: lineCount = %d, flow produced %d lines", i, n, len(lines))
		}
	}
}
