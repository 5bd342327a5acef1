package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

// Parse converts a markdown string into the flat top-level block sequence.
// Anything without a model equivalent degrades to plain text; Parse never
// fails and is a pure function of its input.
func Parse(src string) []*document.Block {
	source := []byte(src)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	var blocks []*document.Block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if b := convertBlock(n, source); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func convertBlock(n ast.Node, src []byte) *document.Block {
	switch node := n.(type) {
	case *ast.Heading:
		level := node.Level
		if level > 3 {
			level = 3
		}
		if level < 1 {
			level = 1
		}
		return &document.Block{Kind: document.KindHeading, Level: level, Spans: inlineSpans(node, src)}
	case *ast.Paragraph, *ast.TextBlock:
		spans := inlineSpans(n, src)
		if len(spans) == 0 {
			return nil
		}
		return &document.Block{Kind: document.KindParagraph, Spans: spans}
	case *ast.List:
		return convertList(node, src)
	case *ast.Blockquote:
		quote := &document.Block{Kind: document.KindBlockquote}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if b := convertBlock(c, src); b != nil {
				quote.Children = append(quote.Children, b)
			}
		}
		if len(quote.Children) == 0 {
			return nil
		}
		return quote
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		// No code block styling in the notebook; degrade to a paragraph.
		txt := blockLines(n, src)
		if txt == "" {
			return nil
		}
		return &document.Block{Kind: document.KindParagraph, Spans: []document.Span{{Text: txt}}}
	case *ast.ThematicBreak:
		return nil
	default:
		txt := blockLines(n, src)
		if txt == "" {
			return nil
		}
		return &document.Block{Kind: document.KindParagraph, Spans: []document.Span{{Text: txt}}}
	}
}

func convertList(list *ast.List, src []byte) *document.Block {
	kind := document.KindBulletList
	ordinal := 0
	if list.IsOrdered() {
		kind = document.KindOrderedList
		ordinal = list.Start
		if ordinal <= 0 {
			ordinal = 1
		}
	}
	out := &document.Block{Kind: kind, Ordinal: ordinal}
	for c := list.FirstChild(); c != nil; c = c.NextSibling() {
		li, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		if item := convertListItem(li, src); item != nil {
			out.Children = append(out.Children, item)
		}
	}
	if len(out.Children) == 0 {
		return nil
	}
	return out
}

func convertListItem(li *ast.ListItem, src []byte) *document.Block {
	item := &document.Block{Kind: document.KindListItem}
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		switch cc := c.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			item.Spans = append(item.Spans, inlineSpans(c, src)...)
		case *ast.List:
			if sub := convertList(cc, src); sub != nil {
				item.Children = append(item.Children, sub)
			}
		default:
			if b := convertBlock(c, src); b != nil {
				item.Children = append(item.Children, b)
			}
		}
	}
	if len(item.Spans) == 0 && len(item.Children) == 0 {
		return nil
	}
	return item
}

// inlineSpans flattens the inline children of a block into spans, at most one
// level deep: plain text runs and highlight runs. Emphasis, strong emphasis
// and code spans all map to highlights.
func inlineSpans(n ast.Node, src []byte) []document.Span {
	var spans []document.Span
	push := func(txt string, highlight bool) {
		if txt == "" {
			return
		}
		if k := len(spans); k > 0 && spans[k-1].Highlight == highlight {
			spans[k-1].Text += txt
			return
		}
		spans = append(spans, document.Span{Text: txt, Highlight: highlight})
	}

	var walk func(node ast.Node, highlight bool)
	walk = func(node ast.Node, highlight bool) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				push(string(t.Value(src)), highlight)
				if t.SoftLineBreak() || t.HardLineBreak() {
					push(" ", highlight)
				}
			case *ast.String:
				push(string(t.Value), highlight)
			case *ast.Emphasis:
				walk(c, true)
			case *ast.CodeSpan:
				walk(c, true)
			case *ast.AutoLink:
				push(string(t.URL(src)), highlight)
			default:
				// Links, images, raw HTML wrappers: keep whatever text is
				// inside, drop the construct itself.
				walk(c, highlight)
			}
		}
	}
	walk(n, false)

	// Drop spans that collapsed to pure whitespace.
	out := spans[:0]
	for _, sp := range spans {
		if strings.TrimSpace(sp.Text) != "" {
			out = append(out, sp)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// blockLines collects the raw source lines of a block node, for constructs
// that degrade to plain text.
func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}
