package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the output of the init command.
type InitResult struct {
	Database string `json:"database"`
	Apps     int    `json:"apps"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("initialized %s (%d apps cached)", r.Database, r.Apps)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the cache database if it does not exist",
		Long: `Create the cache database and its App table if they do not exist,
then report how many applications are cached.

Examples:
  appcache init --db ./apps.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := rootOpts.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Count(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to count apps", err)
			}
			return rootOpts.formatter(cmd).Success(InitResult{Database: cfg.DBPath, Apps: n})
		},
	}
}
