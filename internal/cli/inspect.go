package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/appcache/internal/schema"
)

// CountResult is the output of the count command.
type CountResult struct {
	Apps int `json:"apps"`
}

func (r CountResult) String() string {
	return fmt.Sprintf("%d", r.Apps)
}

// SchemaResult is the output of the schema command.
type SchemaResult struct {
	Permissions []schema.Entry `json:"permissions"`
	Categories  []schema.Entry `json:"categories"`
}

func (r SchemaResult) String() string {
	var b strings.Builder
	for i, ns := range schema.Namespaces {
		if i > 0 {
			b.WriteString("\n")
		}
		entries := r.Permissions
		if ns == schema.Category {
			entries = r.Categories
		}
		fmt.Fprintf(&b, "%s (%d)", ns, len(entries))
		for _, e := range entries {
			fmt.Fprintf(&b, "\n  %3d  %s", e.Ordinal, e.Name)
		}
	}
	return b.String()
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of cached applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := rootOpts.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Count(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to count apps", err)
			}
			return rootOpts.formatter(cmd).Success(CountResult{Apps: n})
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the permission and category columns",
		Long: `List the dynamic permission and category columns in ordinal order.
The ordinal is the column's position in the App table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := rootOpts.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			return rootOpts.formatter(cmd).Success(SchemaResult{
				Permissions: st.Attributes(schema.Permission),
				Categories:  st.Attributes(schema.Category),
			})
		},
	}
}
