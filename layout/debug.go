package layout

import (
	"encoding/json"
	"os"

	"github.com/TomasNiDo/study-baddie-ai/document"
)

// pageSummary is a per-page digest included in the debug dump: how full the
// page is and how its content is distributed, without reading the block tree.
type pageSummary struct {
	Page      int     `json:"page"`
	Blocks    int     `json:"blocks"`
	Words     int     `json:"words"`
	Fragments int     `json:"fragments"` // blocks continued from or onto another page
	Fill      float64 `json:"fill"`      // ContentHeight / MaxContentHeight
}

type debugReport struct {
	*Result
	Summary []pageSummary `json:"summary"`
}

// WriteDebugJSON dumps a pagination result as JSON, with a per-page summary
// prepended to the raw page data. Used by the CLI's --debug-json flag to
// inspect page boundaries and split decisions.
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	rep := debugReport{Result: res}
	maxHeight := res.Context.MaxContentHeight()
	for _, p := range res.Pages {
		var words, fragments int
		var count func(b *document.Block)
		count = func(b *document.Block) {
			words += len(b.Tokens())
			if b.ContinuesBefore || b.ContinuesAfter {
				fragments++
			}
			for _, c := range b.Children {
				count(c)
			}
		}
		for _, b := range p.Blocks {
			count(b)
		}
		sum := pageSummary{Page: p.Number, Blocks: len(p.Blocks), Words: words, Fragments: fragments}
		if maxHeight > 0 {
			sum.Fill = p.ContentHeight / maxHeight
		}
		rep.Summary = append(rep.Summary, sum)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
