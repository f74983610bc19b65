package render

import (
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapproof/pkg/sentence"
)

// Parsed is the JSON shape of one parsed sentence.
type Parsed struct {
	Input    string `json:"input"`
	Sentence string `json:"sentence"`
	Kind     string `json:"kind"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

// NewParsed parses input and describes the result.
func NewParsed(input string) Parsed {
	s, err := sentence.ParseValid(input)
	p := Parsed{Input: input, Sentence: s.String(), Kind: s.Kind().String(), Valid: err == nil}
	var perr *sentence.ParseError
	if errors.As(err, &perr) {
		p.Error = perr.Message
	}
	return p
}

// Sentences prints parsed sentences in their canonical form.
func (r *Renderer) Sentences(items []Parsed) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		if items == nil {
			items = []Parsed{}
		}
		return r.JSON(items)
	}

	s := r.styles
	t := r.newTable(table.Row{"Input", "Sentence", "Kind", "Valid"})
	for _, p := range items {
		valid := s.Success.Render("yes")
		if !p.Valid {
			valid = s.Error.Render("no: " + p.Error)
		}
		t.AppendRow(table.Row{p.Input, p.Sentence, p.Kind, valid})
	}
	if mode == ModeMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	return nil
}
