package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yanizio/adept-reqfields/internal/app"
)

var (
	root    string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "adeptctl",
	Short: "Adept required-fields administration",
	Long: `adeptctl manages the required-fields service database.

Commands:
  migrate          apply schema migrations
  catalog import   load model and field descriptors from YAML
  rules list       print the configured required-field rules`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "config root containing conf/global.yaml (default: discovered)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to the console as well")
}

// withApp opens the service resources for one command.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.Open(ctx, app.Options{Root: root, Tee: verbose})
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		printError("command failed", err)
		return err
	}
	return nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
