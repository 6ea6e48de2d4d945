package commands

import (
	"context"
	"fmt"
	"strconv"

	"azdo-flow/internal/config"
	"azdo-flow/internal/devops"
	"azdo-flow/internal/logging"
	"azdo-flow/internal/workitem"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "azdo-flow",
	Short: "azdo-flow analyzes how Azure DevOps work items move through their workflow",
	Long: `Reads the state history of Azure DevOps work items and reports transitions per state,
time spent in each state, resolved counts, cycle time and lead time.

Without a subcommand it runs as an MCP server on stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		runID := logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("run", runID).
			Str("organization", cfg.DevOps.Organization).
			Str("project", cfg.DevOps.Project).
			Msg("azdo-flow starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Version = Version
}

// newCatalog connects to Azure DevOps with the loaded configuration.
func newCatalog() (*devops.Source, error) {
	if err := cfg.RequireDevOps(); err != nil {
		return nil, err
	}
	return devops.NewSource(devops.NewClient(cfg.DevOps)), nil
}

// resolveItems returns views for the ids in args, or for the configured query
// when no ids are given.
func resolveItems(ctx context.Context, args []string) ([]*workitem.WorkItem, error) {
	catalog, err := newCatalog()
	if err != nil {
		return nil, err
	}
	opts := []workitem.Option{workitem.WithWorkflow(cfg.Workflow)}

	if len(args) > 0 {
		ids, err := parseIDs(args)
		if err != nil {
			return nil, err
		}
		return catalog.Items(ids, opts...), nil
	}

	if cfg.QueryID == "" {
		return nil, fmt.Errorf("no work item ids given and no query configured: %w: AZDO_QUERY_ID or AZDO_QUERY_URL", config.ErrMissingSetting)
	}
	return catalog.QueryItems(ctx, cfg.QueryID, opts...)
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid work item id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
