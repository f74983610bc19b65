package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/leapstack-labs/leapproof/internal/script"
	"github.com/leapstack-labs/leapproof/pkg/proof"
	"github.com/leapstack-labs/leapproof/pkg/rules"
)

const conditional = `pre p>q
pre q>r
sub p
lin q:Modus Ponens:1 3
lin r:Modus Ponens:2 4
end
lin p>r:Conditional Proof:3
gol p>r
`

const broken = `pre p
lin q:Modus Ponens:1
lin r
gol s
`

func readDoc(t *testing.T, src string) *proof.Document {
	t.Helper()
	res, err := script.NewReader(rules.Builtin()).Read("test.prf", strings.NewReader(src))
	require.NoError(t, err)
	return res.Doc
}

func newTest(mode Mode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "TEXT", want: ModeText},
		{in: "md", want: ModeMarkdown},
		{in: "markdown", want: ModeMarkdown},
		{in: " json ", want: ModeJSON},
		{in: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		tty  bool
		want Mode
	}{
		{name: "auto terminal", mode: ModeAuto, tty: true, want: ModeText},
		{name: "auto pipe", mode: ModeAuto, tty: false, want: ModeMarkdown},
		{name: "empty pipe", mode: "", tty: false, want: ModeMarkdown},
		{name: "explicit text pipe", mode: ModeText, tty: false, want: ModeText},
		{name: "json terminal", mode: ModeJSON, tty: true, want: ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestListing(t *testing.T) {
	want := `1 |(p>q)  Premise
2 |(q>r)  Premise
  |---
3 ||p     Assumption
  ||---
4 ||q     Modus Ponens 1, 3
5 ||r     Modus Ponens 2, 4
6 |(p>r)  Conditional Proof 3
`
	assert.Equal(t, want, Listing(readDoc(t, conditional)))
}

func TestListing_NoJustification(t *testing.T) {
	got := Listing(readDoc(t, broken))
	assert.Contains(t, got, "3 |r  No justification")
	assert.Contains(t, got, "2 |q  Modus Ponens 1")
}

func TestProof(t *testing.T) {
	doc := readDoc(t, conditional)

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeAuto, false)
		require.NoError(t, r.Proof("cp.prf", doc))
		assert.Contains(t, out.String(), "# cp.prf")
		assert.Contains(t, out.String(), "```\n1 |(p>q)  Premise")
		assert.Contains(t, out.String(), "**Goal:** `(p>r)`")
	})

	t.Run("text without terminal", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		require.NoError(t, r.Proof("", doc))
		assert.Equal(t, Listing(doc)+"Goal: (p>r)\n", out.String())
	})

	t.Run("text on terminal is styled", func(t *testing.T) {
		r, out, _ := newTest(ModeText, true)
		require.NoError(t, r.Proof("", doc))
		assert.Contains(t, out.String(), "\x1b[")
	})

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTest(ModeJSON, false)
		require.NoError(t, r.Proof("cp.prf", doc))

		var got struct {
			File  string `json:"file"`
			Goal  string `json:"goal"`
			Lines []Line `json:"lines"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "(p>r)", got.Goal)
		require.Len(t, got.Lines, 6)
		assert.True(t, got.Lines[2].Assumption)
		assert.Equal(t, []int{1, 3}, got.Lines[3].Antecedents)
	})
}

func TestReport(t *testing.T) {
	t.Run("passing markdown", func(t *testing.T) {
		doc := readDoc(t, conditional)
		r, out, _ := newTest(ModeMarkdown, false)
		require.NoError(t, r.Report("cp.prf", doc, doc.Verify()))
		assert.Contains(t, out.String(), "## cp.prf")
		assert.Contains(t, out.String(), "All lines check out")
		assert.Contains(t, out.String(), "Goal (p>r): met")
	})

	t.Run("failing markdown", func(t *testing.T) {
		doc := readDoc(t, broken)
		r, out, _ := newTest(ModeMarkdown, false)
		require.NoError(t, r.Report("", doc, doc.Verify()))
		assert.Contains(t, out.String(), "- Line 2 `q` is not justified: justification failure")
		assert.Contains(t, out.String(), "- Line 3 `r` is not justified: no justification")
		assert.Contains(t, out.String(), "Goal s: missing")
		assert.NotContains(t, out.String(), "All lines check out")
	})

	t.Run("json", func(t *testing.T) {
		doc := readDoc(t, broken)
		r, out, _ := newTest(ModeJSON, true)
		require.NoError(t, r.Report("b.prf", doc, doc.Verify()))

		var got CheckResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.False(t, got.OK)
		assert.Equal(t, 2, got.Failed)
		assert.Equal(t, "s", got.GoalText)
		assert.Equal(t, "", got.Lines[0].Failure)
		assert.Equal(t, "justification failure", got.Lines[1].Failure)
		assert.NotContains(t, out.String(), "\x1b[")
	})
}

func TestRules(t *testing.T) {
	catalog := rules.Builtin()

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTest(ModeJSON, false)
		require.NoError(t, r.Rules(catalog))

		var got RulesOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Len(t, got.Rules, catalog.Len())
		assert.Equal(t, map[string]int{"total": 25, "equivalence": 14, "inference": 8, "aggregate": 3}, got.Count)
	})

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		require.NoError(t, r.Rules(catalog))
		for _, want := range []string{"# Rules", "## Equivalence Rules", "## Inference Rules", "## Aggregate Rules", "Modus Ponens", "Commutation"} {
			assert.Contains(t, out.String(), want)
		}
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		require.NoError(t, r.Rules(catalog))
		assert.Contains(t, out.String(), "Rules (25)")
		assert.Contains(t, out.String(), "Hypothetical Syllogism")
	})

	t.Run("single rule", func(t *testing.T) {
		mp, ok := catalog.Lookup("Modus Ponens")
		require.True(t, ok)

		r, out, _ := newTest(ModeMarkdown, false)
		require.NoError(t, r.Rule(mp))
		assert.Contains(t, out.String(), "# Modus Ponens")
		assert.Contains(t, out.String(), "**Kind:** inference")
		assert.Contains(t, out.String(), "- `(a>b), a |- b`")
	})
}

func TestRuns(t *testing.T) {
	runs := []history.Run{
		{ID: "0123456789abcdef", File: "b.prf", Goal: "missing", Failed: 1,
			Lines: []history.LineFailure{{Line: 2, Failure: "no justification"}}, CheckedAt: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)},
		{ID: "fedcba98", File: "a.prf", OK: true, Goal: "met", CheckedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)},
	}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		require.NoError(t, r.Runs(runs))
		assert.Contains(t, out.String(), "# History")
		assert.Contains(t, out.String(), "01234567")
		assert.NotContains(t, out.String(), "0123456789")
		assert.Contains(t, out.String(), "2 (no justification)")
		assert.Contains(t, out.String(), "2026-05-02 10:00:00")
		assert.Contains(t, out.String(), "(2 runs)")
	})

	t.Run("empty json", func(t *testing.T) {
		r, out, _ := newTest(ModeJSON, false)
		require.NoError(t, r.Runs(nil))
		assert.Equal(t, "[]\n", out.String())
	})

	t.Run("empty text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		require.NoError(t, r.Runs(nil))
		assert.Equal(t, "(no runs recorded)\n", out.String())
	})
}

func TestMessages(t *testing.T) {
	r, out, errOut := newTest(ModeMarkdown, false)
	r.Success("done")
	r.Warn("careful")
	assert.Equal(t, "done\n", out.String())
	assert.Equal(t, "warning: careful\n", errOut.String())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "## Rules", FormatHeader(2, "Rules"))
	assert.Equal(t, "```go\nx\n```", FormatCodeBlock("go", "x\n"))
	assert.Equal(t, "Equivalence Rules", Title("equivalence rules"))
}

func TestSentences(t *testing.T) {
	items := []Parsed{NewParsed("p>q&r"), NewParsed("p>")}
	assert.Equal(t, Parsed{Input: "p>q&r", Sentence: "(p>(q&r))", Kind: "implies", Valid: true}, items[0])
	assert.False(t, items[1].Valid)
	assert.Equal(t, "missing operand", items[1].Error)

	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.Sentences(items))
	var decoded []Parsed
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, items, decoded)

	r, out, _ = newTest(ModeMarkdown, false)
	require.NoError(t, r.Sentences(items))
	assert.Contains(t, out.String(), "(p>(q&r))")
	assert.Contains(t, out.String(), "no: missing operand")
}
