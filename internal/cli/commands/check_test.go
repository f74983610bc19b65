package commands

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapproof/internal/cli/testutil"
	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/leapstack-labs/leapproof/pkg/proof"
)

func TestCheck(t *testing.T) {
	dir := testutil.SetupTestProofs(t, map[string]string{
		"good.prf":  testutil.ConditionalProof,
		"bad.prf":   testutil.BrokenProof,
		"typo.prf":  "pre p\nlni q\n",
		"rules.prf": "pre p\nlin p|q:Leap Of Faith:1\n",
	})
	good, bad := filepath.Join(dir, "good.prf"), filepath.Join(dir, "bad.prf")

	tests := []struct {
		name       string
		files      []string
		wantFailed bool
		wantOut    []string
		wantErrOut []string
	}{
		{
			name:    "valid proof",
			files:   []string{good},
			wantOut: []string{"## " + good, "All lines check out", "Goal (p>r): met"},
		},
		{
			name:       "failing proof",
			files:      []string{bad},
			wantFailed: true,
			wantOut:    []string{"- Line 3 `(p|r)` is not justified: justification failure", "Goal (p&q): missing"},
		},
		{
			name:       "several proofs",
			files:      []string{good, bad},
			wantFailed: true,
			wantOut:    []string{"All lines check out", "1 of 2 proofs verified"},
		},
		{
			name:       "missing file",
			files:      []string{filepath.Join(dir, "nope.prf")},
			wantFailed: true,
			wantErrOut: []string{"warning: failed to read"},
		},
		{
			name:       "malformed script",
			files:      []string{filepath.Join(dir, "typo.prf")},
			wantFailed: true,
			wantErrOut: []string{"typo.prf:2:"},
		},
		{
			name:       "unknown rule",
			files:      []string{filepath.Join(dir, "rules.prf")},
			wantFailed: true,
			wantOut:    []string{"is not justified: no justification"},
			wantErrOut: []string{"rules.prf:2:", "Leap Of Faith"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := executeCommand(t, NewCheckCommand(), tt.files...)
			if tt.wantFailed {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrProofsFailed), "got %v", err)
			} else {
				require.NoError(t, err)
			}
			testutil.AssertNoANSI(t, out)
			testutil.AssertValidMarkdown(t, out)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, want := range tt.wantErrOut {
				assert.Contains(t, errOut, want)
			}
		})
	}
}

func TestCheck_JSON(t *testing.T) {
	dir := testutil.SetupTestProofs(t, map[string]string{
		"good.prf": testutil.ConditionalProof,
		"bad.prf":  testutil.BrokenProof,
	})
	t.Setenv("LEAPPROOF_OUTPUT", "json")

	files := []string{filepath.Join(dir, "bad.prf"), filepath.Join(dir, "good.prf"), filepath.Join(dir, "nope.prf")}
	out, _, err := executeCommand(t, NewCheckCommand(), files...)
	require.ErrorIs(t, err, ErrProofsFailed)

	var results []render.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	assert.Equal(t, files[0], results[0].File)
	assert.False(t, results[0].OK)
	assert.Equal(t, 1, results[0].Failed)
	assert.Equal(t, proof.GoalMissing, results[0].Goal)

	assert.True(t, results[1].OK)
	assert.Equal(t, proof.GoalMet, results[1].Goal)
	assert.Len(t, results[1].Lines, 6)

	assert.Contains(t, results[2].Error, "failed to read")
}

func TestCheck_RecordAndHistory(t *testing.T) {
	dir := testutil.SetupTestProofs(t, map[string]string{
		"good.prf": testutil.ConditionalProof,
		"bad.prf":  testutil.BrokenProof,
	})
	t.Setenv("LEAPPROOF_STATE_PATH", filepath.Join(dir, ".leapproof", "history.db"))

	_, _, err := executeCommand(t, NewCheckCommand(), "--record", filepath.Join(dir, "good.prf"), filepath.Join(dir, "bad.prf"))
	require.ErrorIs(t, err, ErrProofsFailed)

	t.Setenv("LEAPPROOF_OUTPUT", "json")
	out, _, err := executeCommand(t, NewHistoryCommand(), "--limit", "10")
	require.NoError(t, err)

	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)

	byFile := map[string]history.Run{}
	for _, r := range runs {
		byFile[filepath.Base(r.File)] = r
	}
	assert.True(t, byFile["good.prf"].OK)
	assert.Equal(t, "met", byFile["good.prf"].Goal)
	assert.False(t, byFile["bad.prf"].OK)
	assert.Equal(t, []history.LineFailure{{Line: 3, Failure: "justification failure"}}, byFile["bad.prf"].Lines)
	assert.Len(t, byFile["bad.prf"].SHA256, 64)
}

func TestHistory_Empty(t *testing.T) {
	t.Setenv("LEAPPROOF_STATE_PATH", filepath.Join(t.TempDir(), "history.db"))

	out, _, err := executeCommand(t, NewHistoryCommand())
	require.NoError(t, err)
	assert.Equal(t, "(no runs recorded)\n", out)
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "p.prf")
	targets := map[string]bool{target: true}

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	changed := make(chan string, 4)
	watchErrs := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, targets, 100*time.Millisecond,
			func(name string) { changed <- name },
			func(err error) { watchErrs <- err })
	}()

	// a burst of writes re-checks once
	for range 3 {
		events <- fsnotify.Event{Name: target, Op: fsnotify.Write}
	}
	// other files and chmod events are ignored
	events <- fsnotify.Event{Name: filepath.Join(dir, "other.prf"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: target, Op: fsnotify.Chmod}

	select {
	case name := <-changed:
		assert.Equal(t, target, name)
	case <-time.After(2 * time.Second):
		t.Fatal("no re-check after write")
	}

	errs <- errors.New("overflow")
	assert.EqualError(t, <-watchErrs, "overflow")

	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, changed)
}
