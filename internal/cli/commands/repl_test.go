package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapproof/internal/cli/config"
	"github.com/leapstack-labs/leapproof/internal/cli/testutil"
	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/leapstack-labs/leapproof/pkg/proof"
	"github.com/leapstack-labs/leapproof/pkg/rules"
)

func newTestSession(t *testing.T) (*replSession, *testutil.TestRenderer) {
	t.Helper()
	return newSessionWith(t, testutil.NewTestRendererMarkdown())
}

func newSessionWith(t *testing.T, tr *testutil.TestRenderer) (*replSession, *testutil.TestRenderer) {
	t.Helper()
	cc := &CommandContext{
		Cfg:      &config.Config{BuiltinRules: true},
		Logger:   config.GetLogger(t.Context()),
		Renderer: tr.Renderer,
		Catalog:  rules.Builtin(),
	}
	return newREPLSession(cc, tr.Out, tr.ErrOut), tr
}

func run(s *replSession, lines ...string) {
	for _, l := range lines {
		s.exec(l)
	}
}

func TestREPL_BuildProof(t *testing.T) {
	s, tr := newTestSession(t)
	run(s,
		"pre p>q",
		"pre q>r",
		"sub p",
		"lin q:Modus Ponens:1 3",
		"lin r:Modus Ponens:2 4",
		"end",
		"lin p>r:Conditional Proof:3",
		"gol p>r",
	)
	assert.Empty(t, tr.ErrorOutput())
	require.Equal(t, 6, s.doc.Len())
	assert.True(t, s.doc.Verify().OK())

	last, err := s.doc.Line(5)
	require.NoError(t, err)
	assert.Equal(t, 0, last.Depth)
	assert.Equal(t, []int{3}, last.Antecedents)

	run(s, ".check")
	assert.Contains(t, tr.Output(), "All lines check out")
	assert.Contains(t, tr.Output(), "Goal (p>r): met")
}

func TestREPL_CheckJSON(t *testing.T) {
	s, tr := newSessionWith(t, testutil.NewTestRendererJSON())
	run(s, "pre p", "pre q", "lin p&q:Conjunction:1")
	tr.Reset()

	run(s, ".check")
	var res render.CheckResult
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &res))
	assert.False(t, res.OK)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Lines, 3)
	assert.Equal(t, "justification failure", res.Lines[2].Failure)

	tr.Reset()
	run(s, "cite 2", ".check")
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Equal(t, proof.GoalUnset, res.Goal)
}

func TestREPL_Edit(t *testing.T) {
	s, tr := newTestSession(t)
	run(s,
		"pre p",
		"pre q",
		"lin p&q",
		"just Conjunction",
		"cite 1 2",
	)
	assert.Empty(t, tr.ErrorOutput())
	assert.True(t, s.doc.Verify().OK())

	// citing a line again stops citing it
	run(s, "cite 2")
	f, err := s.doc.Check(2)
	require.NoError(t, err)
	assert.Equal(t, proof.JustificationFailure, f)

	run(s, ".goto 3", "set q&p", "cite 2")
	view, err := s.doc.Line(2)
	require.NoError(t, err)
	assert.Equal(t, "(q&p)", view.Text)

	run(s, ".rm 1")
	assert.Equal(t, 2, s.doc.Len())
}

func TestREPL_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{name: "unknown command", lines: []string{"foo bar"}, want: `unknown command "foo"`},
		{name: "unknown dot command", lines: []string{".frobnicate"}, want: "unknown command .frobnicate"},
		{name: "end outside subproof", lines: []string{"pre p", "end"}, want: "not inside a subproof"},
		{name: "unknown rule", lines: []string{"pre p", "lin q:Wishful Thinking"}, want: "unknown rule"},
		{name: "bad citation", lines: []string{"pre p", "lin q:Addition:x"}, want: `citation "x" is not a line number`},
		{name: "cite forward", lines: []string{"pre p", "lin q:Addition:2"}, want: "line out of range"},
		{name: "justify premise", lines: []string{"pre p", "just Addition"}, want: "premise or assumption"},
		{name: "bad goal", lines: []string{"gol p>"}, want: "goal:"},
		{name: "goto range", lines: []string{".goto 9"}, want: "line out of range"},
		{name: "goto text", lines: []string{".goto x"}, want: "line number expected"},
		{name: "save without file", lines: []string{".save"}, want: "usage: .save <file>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tr := newTestSession(t)
			run(s, tt.lines...)
			assert.Contains(t, tr.ErrorOutput(), "Error: ")
			assert.Contains(t, tr.ErrorOutput(), tt.want)
		})
	}
}

func TestREPL_Quit(t *testing.T) {
	s, _ := newTestSession(t)
	assert.False(t, s.exec("  "))
	assert.False(t, s.exec("# note"))
	assert.False(t, s.exec(".help"))
	assert.True(t, s.exec(".quit"))
	assert.True(t, s.exec(".exit"))
}

func TestREPL_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ds.prf")

	s, tr := newTestSession(t)
	run(s,
		"pre p",
		"pre q",
		"lin p&q:Conjunction:1 2",
		"gol p&q",
		".save "+path,
	)
	assert.Empty(t, tr.ErrorOutput())
	assert.Contains(t, tr.Output(), "Saved "+path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pre p\npre q\nlin (p&q):Conjunction:1 2\ngol (p&q)\n", string(content))

	s2, tr2 := newTestSession(t)
	run(s2, ".load "+path, ".show")
	assert.Empty(t, tr2.ErrorOutput())
	assert.Equal(t, 3, s2.doc.Len())
	assert.Contains(t, tr2.Output(), "Loaded "+path+" (3 lines)")
	assert.Contains(t, tr2.Output(), "**Goal:** `(p&q)`")

	// .save with no argument rewrites the loaded file
	run(s2, "lin q&p:Commutation:3", ".save")
	assert.Empty(t, tr2.ErrorOutput())
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "lin (q&p):Commutation:3\n")

	run(s2, ".new")
	assert.Equal(t, 0, s2.doc.Len())
}

func TestREPL_Rules(t *testing.T) {
	s, tr := newTestSession(t)
	run(s, ".rules")
	assert.Contains(t, tr.Output(), "# Rules")
	assert.Equal(t, render.ModeMarkdown, tr.EffectiveMode())
}
