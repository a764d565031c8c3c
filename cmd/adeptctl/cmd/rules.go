package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/adept-reqfields/internal/app"
	"github.com/yanizio/adept-reqfields/internal/rule"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect required-field rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every rule with its fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			rules, err := a.Deps.Rules.List(cmd.Context())
			if err != nil {
				return err
			}
			return printRules(cmd.Context(), cmd.OutOrStdout(), rules, a.Deps.Catalog)
		})
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rootCmd.AddCommand(rulesCmd)
}

type fieldLookup interface {
	FieldsByIDs(ctx context.Context, ids []int64) ([]schema.Field, error)
}

func printRules(ctx context.Context, out io.Writer, rules []rule.Rule, fields fieldLookup) error {
	var ids []int64
	for _, r := range rules {
		ids = append(ids, r.FieldIDs...)
	}
	fs, err := fields.FieldsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	names := make(map[int64]string, len(fs))
	for _, f := range fs {
		names[f.ID] = f.Name
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODEL\tREQUIRED\tFIELDS")
	for _, r := range rules {
		cols := make([]string, 0, len(r.FieldIDs))
		for _, id := range r.FieldIDs {
			cols = append(cols, names[id])
		}
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", r.ID, r.ModelName, r.IsRequired, strings.Join(cols, ", "))
	}
	return tw.Flush()
}
