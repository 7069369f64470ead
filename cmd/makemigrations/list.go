package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"makemigrations/internal/cliui"
	"makemigrations/internal/config"
	"makemigrations/internal/generator"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List migrations known to an app",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().String("app", "", "app name to list migrations for (defaults to the module name)")
}

func runList(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fail(err)
	}

	appName, _ := cmd.Flags().GetString("app")
	if appName == "" {
		appName = cfg.DefaultAppName
	}

	migrations, err := generator.List(generator.Options{
		Root:          root,
		MigrationsDir: cfg.MigrationsDir,
		AppName:       appName,
	})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cliui.Error(err.Error()))
		return fail(err)
	}

	if len(migrations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cliui.Dim("No migrations found."))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cliui.Header(fmt.Sprintf("Migrations (%s)", migrations[0].AppName)))
	for _, m := range migrations {
		line := m.Name
		if len(m.Dependencies) > 0 {
			line += cliui.Dim(fmt.Sprintf("  depends on %s", m.Dependencies[0].Name))
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
