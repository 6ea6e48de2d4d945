package commands

import (
	"azdo-flow/internal/httpapi"

	"github.com/spf13/cobra"
)

var (
	serveAddr        string
	serveCORSOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the work item history API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := newCatalog()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		handler := httpapi.NewHandler(catalog, cfg.QueryID, cfg.Workflow, serveCORSOrigins)
		return httpapi.ListenAndServe(cmd.Context(), addr, handler.Router())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR or :8080)")
	serveCmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "allowed CORS origins (default any)")
	rootCmd.AddCommand(serveCmd)
}
