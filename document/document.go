package document

import "strings"

// Kind enumerates the block node kinds produced by the markdown builder.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindBlockquote
)

// String returns a short lowercase name, used in debug JSON output.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindBulletList:
		return "bullet-list"
	case KindOrderedList:
		return "ordered-list"
	case KindListItem:
		return "list-item"
	case KindBlockquote:
		return "blockquote"
	default:
		return "unknown"
	}
}

// Splittable reports whether a block of this kind may be divided across a
// page boundary. Headings always move whole to the next page.
func (k Kind) Splittable() bool {
	switch k {
	case KindParagraph, KindBulletList, KindOrderedList, KindListItem, KindBlockquote:
		return true
	default:
		return false
	}
}

// Span is one run of inline content. Highlight marks emphasized text that
// must keep its background styling even when a page break lands inside it.
type Span struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Token is a single whitespace-delimited word, the smallest unit of
// measurement and page splitting. Highlighted spans decompose into
// individually highlighted word tokens so a highlight can straddle a line or
// page break without losing styling.
type Token struct {
	Text      string
	Highlight bool
}

// Block is a node of the parsed document tree. Leaf kinds (heading,
// paragraph) carry Spans; list kinds carry ListItem children; list items and
// blockquotes may carry both.
type Block struct {
	Kind    Kind   `json:"kind"`
	Level   int    `json:"level,omitempty"`   // heading level 1-3
	Ordinal int    `json:"ordinal,omitempty"` // number of the first item, ordered lists only
	Spans   []Span `json:"spans,omitempty"`

	Children []*Block `json:"children,omitempty"`

	// Continuation flags mark page-split fragments. A fragment that continues
	// on the next page drops its bottom margin at the cut; one continued from
	// the previous page drops its top margin.
	ContinuesAfter  bool `json:"continuesAfter,omitempty"`
	ContinuesBefore bool `json:"continuesBefore,omitempty"`
}

// Clone returns a deep copy. Splitting and pagination operate on clones so
// the parsed tree stays untouched between passes.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := *b
	if len(b.Spans) > 0 {
		out.Spans = append([]Span(nil), b.Spans...)
	}
	if len(b.Children) > 0 {
		out.Children = make([]*Block, len(b.Children))
		for i, c := range b.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Tokens decomposes the block's own inline content into word tokens.
// Whitespace runs collapse; each word inherits its span's highlight flag.
func (b *Block) Tokens() []Token {
	var tokens []Token
	for _, sp := range b.Spans {
		for _, w := range strings.Fields(sp.Text) {
			tokens = append(tokens, Token{Text: w, Highlight: sp.Highlight})
		}
	}
	return tokens
}

// SpansFromTokens reassembles spans from a token slice, merging adjacent
// words that share a highlight flag. Used to rebuild the inline content of
// head/tail fragments after a split.
func SpansFromTokens(tokens []Token) []Span {
	var spans []Span
	for _, tok := range tokens {
		if n := len(spans); n > 0 && spans[n-1].Highlight == tok.Highlight {
			spans[n-1].Text += " " + tok.Text
			continue
		}
		spans = append(spans, Span{Text: tok.Text, Highlight: tok.Highlight})
	}
	return spans
}

// PlainText returns the normalized text content of the block and its
// children: words joined by single spaces, nested blocks by newlines.
// Content-conservation checks compare this across split fragments.
func (b *Block) PlainText() string {
	var parts []string
	if len(b.Spans) > 0 {
		words := make([]string, 0, len(b.Spans))
		for _, tok := range b.Tokens() {
			words = append(words, tok.Text)
		}
		if len(words) > 0 {
			parts = append(parts, strings.Join(words, " "))
		}
	}
	for _, c := range b.Children {
		if t := c.PlainText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// PlainText concatenates the text of a block sequence.
func PlainText(blocks []*Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := b.PlainText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
