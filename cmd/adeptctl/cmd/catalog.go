package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/adept-reqfields/internal/app"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage model and field descriptors",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upsert models and fields from a YAML document",
	Long: `Reads a catalog document and upserts every model and field in one
transaction.  Rows missing from the document are left untouched.

Example:
  adeptctl catalog import conf/catalog.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := schema.LoadFile(args[0])
		if err != nil {
			printError("catalog", err)
			return err
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			st, err := a.Deps.Catalog.Import(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d model(s), %d field(s)\n", st.Models, st.Fields)
			return nil
		})
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}
