package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/appcache/internal/ingest"
	"github.com/roach88/appcache/internal/store"
)

// UpsertOptions holds flags for the upsert command.
type UpsertOptions struct {
	*RootOptions
	File      string
	FreshDays int
}

// UpsertSummary is the output of the upsert command.
type UpsertSummary struct {
	RunID     string                  `json:"run_id"`
	Total     int                     `json:"total"`
	Written   int                     `json:"written"`
	Fresh     int                     `json:"fresh"`
	Abandoned []store.AttributeResult `json:"abandoned,omitempty"`
}

func (s UpsertSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d items: %d written, %d still fresh", s.Total, s.Written, s.Fresh)
	for _, a := range s.Abandoned {
		fmt.Fprintf(&b, "\n  abandoned %s %q: %s", a.Namespace, a.Input, a.Reason)
	}
	return b.String()
}

// NewUpsertCommand creates the upsert command.
func NewUpsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Insert or refresh applications from an items file",
		Long: `Insert or refresh applications from a YAML or JSON items file.

Items already cached within the freshness window are left untouched.
Permissions and categories replace the ones previously stored; new names
add columns to the cache.

Examples:
  appcache upsert --db ./apps.db --file items.yaml
  appcache upsert --db ./apps.db --file items.json --fresh-days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpsert(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "items file (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().IntVar(&opts.FreshDays, "fresh-days", 0, "freshness window in days (default from APPCACHE_FRESH_DAYS)")

	return cmd
}

func runUpsert(opts *UpsertOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	items, err := ingest.LoadFile(opts.File)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			_ = out.Error(ErrCodeInvalidItems, verr.Error(), nil)
			return WrapExitError(ExitFailure, "invalid items", err)
		}
		return WrapExitError(ExitCommandError, "failed to load items", err)
	}

	st, _, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var upsertOpts []store.UpsertOption
	if cmd.Flags().Changed("fresh-days") {
		upsertOpts = append(upsertOpts, store.FreshDays(opts.FreshDays))
	}

	summary := UpsertSummary{
		RunID: uuid.Must(uuid.NewV7()).String(),
		Total: len(items),
	}
	for _, item := range items {
		res, err := st.Upsert(cmd.Context(), item, upsertOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to upsert %s", item.ID), err)
		}
		if !res.Written {
			summary.Fresh++
			out.VerboseLog("%s: still fresh", item.ID)
			continue
		}
		summary.Written++
		summary.Abandoned = append(summary.Abandoned, res.Abandoned()...)
		out.VerboseLog("%s: written (%d attributes)", item.ID, len(res.Attributes))
	}

	return out.SuccessWithTrace(summary, summary.RunID)
}
