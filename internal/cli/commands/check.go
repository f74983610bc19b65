package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/leapstack-labs/leapproof/internal/script"
	"github.com/leapstack-labs/leapproof/pkg/proof"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrProofsFailed is returned by check when any proof does not verify.
var ErrProofsFailed = errors.New("proofs failed")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch  bool
	Record bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check <file...>",
		Short: "Verify proof scripts",
		Long: `Verify every line of one or more proof scripts.

Each derived line must follow from the lines it cites under the rule it
names, and the goal, if set, must be reached outside every subproof.
Files are checked concurrently against a shared rule catalog.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check a proof
  leapproof check proofs/modus.prf

  # Check several proofs and record the results
  leapproof check --record proofs/*.prf

  # Re-check on every save
  leapproof check --watch proofs/modus.prf

  # Use extra rules from a catalog file
  leapproof check --rules extra.yaml proofs/lemma.prf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-check when a file changes")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record results in the history database")
	cmd.Flags().Duration("debounce", 0, "Quiet period before a re-check in watch mode (default 200ms)")

	return cmd
}

func runCheck(cmd *cobra.Command, files []string, opts *CheckOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	record := opts.Record || cc.Cfg.Record

	var store *history.Store
	if record {
		store, err = cc.OpenHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	if !opts.Watch {
		return checkAndReport(cmd.Context(), cc, store, files)
	}

	watched := append([]string{}, files...)
	if cc.Cfg.RulesFile != "" {
		watched = append(watched, cc.Cfg.RulesFile)
	}
	return watchFiles(cmd.Context(), cc, watched, func() {
		if err := checkAndReport(cmd.Context(), cc, store, files); err != nil && !errors.Is(err, ErrProofsFailed) {
			cc.Renderer.Warn(err.Error())
		}
	})
}

// checkOutcome is the result of checking one file.
type checkOutcome struct {
	File    string
	Content []byte
	Result  *script.Result
	Report  proof.Report
	Err     error
}

// OK reports whether the file was read and its proof verifies.
func (o checkOutcome) OK() bool {
	return o.Err == nil && o.Report.OK()
}

// checkFiles reads and verifies files concurrently. A file that cannot be
// read is reported in its outcome rather than stopping the others.
func checkFiles(ctx context.Context, cc *CommandContext, files []string) ([]checkOutcome, error) {
	outcomes := make([]checkOutcome, len(files))
	reader := script.NewReader(cc.Catalog, script.WithLogger(cc.Logger))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = checkFile(reader, file)
			cc.Logger.Debug("checked proof", "file", file, "ok", outcomes[i].OK())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func checkFile(reader *script.Reader, file string) checkOutcome {
	out := checkOutcome{File: file}
	content, err := os.ReadFile(file) //nolint:gosec // G304: proof path is supplied by the user
	if err != nil {
		out.Err = fmt.Errorf("failed to read %s: %w", file, err)
		return out
	}
	out.Content = content

	res, err := reader.Read(file, bytes.NewReader(content))
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res
	out.Report = res.Doc.Verify()
	return out
}

// checkAndReport checks files, prints the outcome, and records it when
// store is set. It returns ErrProofsFailed when any proof fails.
func checkAndReport(ctx context.Context, cc *CommandContext, store *history.Store, files []string) error {
	outcomes, err := checkFiles(ctx, cc, files)
	if err != nil {
		return err
	}

	if store != nil {
		for _, o := range outcomes {
			if o.Err != nil {
				continue
			}
			id, err := store.RecordRun(ctx, history.NewRun(o.File, o.Content, o.Report))
			if err != nil {
				return fmt.Errorf("failed to record %s: %w", o.File, err)
			}
			cc.Logger.Debug("recorded run", "file", o.File, "id", id)
		}
	}

	if err := renderOutcomes(cc.Renderer, outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrProofsFailed, failed, len(outcomes))
	}
	return nil
}

func renderOutcomes(r *render.Renderer, outcomes []checkOutcome) error {
	if r.EffectiveMode() == render.ModeJSON {
		results := make([]render.CheckResult, 0, len(outcomes))
		for _, o := range outcomes {
			if o.Err != nil {
				results = append(results, render.CheckResult{File: o.File, Error: o.Err.Error()})
				continue
			}
			res := render.NewCheckResult(o.File, o.Result.Doc, o.Report)
			for _, w := range o.Result.Warnings {
				res.Warnings = append(res.Warnings, w.Error())
			}
			results = append(results, res)
		}
		return r.JSON(results)
	}

	passed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			r.Warn(o.Err.Error())
			continue
		}
		for _, w := range o.Result.Warnings {
			r.Warn(w.Error())
		}
		r.ReportLines(o.File, o.Result.Doc, o.Report)
		if o.OK() {
			passed++
		}
	}
	if len(outcomes) > 1 {
		r.Println(fmt.Sprintf("%d of %d proofs verified", passed, len(outcomes)))
	}
	return nil
}
