package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/appcache/internal/app"
	"github.com/roach88/appcache/internal/schema"
)

// RecordView is the output of the get command.
type RecordView struct {
	*app.Record
}

func (v RecordView) String() string {
	r := v.Record
	var b strings.Builder
	fmt.Fprintf(&b, "id:           %s\n", r.ID)
	fmt.Fprintf(&b, "name:         %s\n", r.Name)
	fmt.Fprintf(&b, "rating:       %s\n", optional(r.Rating, func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }))
	if r.IsFree() {
		fmt.Fprintf(&b, "install fee:  free\n")
	} else {
		fmt.Fprintf(&b, "install fee:  %d\n", r.InstallFee)
	}
	fmt.Fprintf(&b, "reviews:      %s\n", optional(r.NumReviews, func(n int64) string { return strconv.FormatInt(n, 10) }))
	fmt.Fprintf(&b, "in-app:       %s\n", optional(r.InAppPurchases, strconv.FormatBool))
	fmt.Fprintf(&b, "ads:          %s\n", optional(r.ContainsAds, strconv.FormatBool))
	fmt.Fprintf(&b, "icon:         %s\n", r.AppIcon)
	fmt.Fprintf(&b, "permissions:  %s\n", strings.Join(entryNames(r.Permissions), ", "))
	fmt.Fprintf(&b, "categories:   %s\n", strings.Join(entryNames(r.Categories), ", "))
	fmt.Fprintf(&b, "updated:      %s", r.UpdateDate.Format(app.DateLayout))
	return b.String()
}

// AttributeList is the output of the permissions and categories commands.
type AttributeList struct {
	ID         string           `json:"id"`
	Namespace  schema.Namespace `json:"namespace"`
	Attributes []schema.Entry   `json:"attributes"`
}

func (l AttributeList) String() string {
	if len(l.Attributes) == 0 {
		return fmt.Sprintf("%s: no %ss", l.ID, l.Namespace)
	}
	return strings.Join(entryNames(l.Attributes), "\n")
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a complete cached application",
		Long: `Show a cached application. Applications cached with partial data
are reported as missing: they need to be fetched again.

Examples:
  appcache get com.example.camera
  appcache get com.example.camera --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := rootOpts.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			out := rootOpts.formatter(cmd)
			rec, err := st.GetCompleteAppInfo(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read app", err)
			}
			if rec == nil {
				msg := fmt.Sprintf("app %s is not cached or incomplete", args[0])
				_ = out.Error(ErrCodeNotFound, msg, nil)
				return NewExitError(ExitFailure, msg)
			}
			if rootOpts.Format == "json" {
				return out.Success(rec)
			}
			return out.Success(RecordView{rec})
		},
	}
}

// NewAttributesCommand creates the permissions or categories command.
func NewAttributesCommand(rootOpts *RootOptions, use string) *cobra.Command {
	ns := schema.Permission
	if use == "categories" {
		ns = schema.Category
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("List the %s asserted for an application", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := rootOpts.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			out := rootOpts.formatter(cmd)
			var entries []schema.Entry
			if ns == schema.Category {
				entries, err = st.GetAppCategories(cmd.Context(), args[0])
			} else {
				entries, err = st.GetAppPermissions(cmd.Context(), args[0])
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read "+use, err)
			}
			if entries == nil {
				msg := fmt.Sprintf("app %s is not cached", args[0])
				_ = out.Error(ErrCodeNotFound, msg, nil)
				return NewExitError(ExitFailure, msg)
			}
			return out.Success(AttributeList{ID: args[0], Namespace: ns, Attributes: entries})
		},
	}
}

func entryNames(es []schema.Entry) []string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name
	}
	return names
}

func optional[T any](p *T, format func(T) string) string {
	if p == nil {
		return "-"
	}
	return format(*p)
}
