package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/appcache/internal/config"
	"github.com/roach88/appcache/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string // overrides APPCACHE_DB
	Driver     string // overrides APPCACHE_DRIVER
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the appcache CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "appcache",
		Short: "appcache - marketplace application metadata cache",
		Long: `A local SQLite cache of marketplace application metadata.

Applications are refreshed only once their cached copy is older than the
freshness window; permissions and categories become columns on first sight.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from APPCACHE_DB)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "sqlite driver: sqlite3 or sqlite (default from APPCACHE_DRIVER)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewUpsertCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewAttributesCommand(opts, "permissions"))
	cmd.AddCommand(NewAttributesCommand(opts, "categories"))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// loadConfig resolves configuration and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.Database != "" {
		cfg.DBPath = o.Database
	}
	if o.Driver != "" {
		cfg.Driver = o.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func (o *RootOptions) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	lvl, _ := cfg.Level()
	if o.Verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured store. The caller must Close it.
func (o *RootOptions) openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cmd.Context(), cfg.DBPath,
		store.WithDriver(cfg.Driver),
		store.WithFreshDays(cfg.FreshDays),
		store.WithLogger(o.logger(cmd, cfg)),
	)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, cfg, nil
}
