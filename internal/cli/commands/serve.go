package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/leapstack-labs/leapproof/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve proof checking over HTTP",
		Long: `Start an HTTP server that checks proof scripts.

Endpoints:
  POST /v1/check?name=<label>   body is a proof script; responds with the report
  GET  /v1/rules                the rule catalog
  GET  /v1/rules/{name}         one rule
  GET  /healthz                 liveness

Lemma commands are rejected since they name files on the server. With
record set, every check is added to the history database.`,
		Example: `  leapproof serve --addr 127.0.0.1:8787
  curl --data-binary @proofs/modus.prf 'localhost:8787/v1/check?name=modus.prf'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			var store *history.Store
			if cc.Cfg.Record {
				store, err = cc.OpenHistory()
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			addr := cc.Cfg.GetServeConfig().Addr
			srv := server.New(server.Config{
				Addr:    addr,
				Catalog: cc.Catalog,
				Store:   store,
				Logger:  cc.Logger,
			})
			cc.Renderer.Println(fmt.Sprintf("Serving proof checks on %s (Ctrl+C to stop)", addr))
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8787)")
	cmd.Flags().Bool("record", false, "Record every check in the history database")

	return cmd
}
