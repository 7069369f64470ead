package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"makemigrations/internal/cliui"
	"makemigrations/internal/config"
	"makemigrations/internal/generator"
	"makemigrations/internal/model"
	"makemigrations/internal/telemetry"
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Diff models against migration history and write a migration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("app", "", "app name to stamp onto the migration (defaults to the module name)")
	generateCmd.Flags().String("name", "", "name suffix for the migration, e.g. add_author")
	generateCmd.Flags().Bool("dry-run", false, "compute the migration without writing it")
}

func runGenerate(cmd *cobra.Command, args []string) error {
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
	suffix, _ := cmd.Flags().GetString("name")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	opts := generator.Options{
		Root:          root,
		MigrationsDir: cfg.MigrationsDir,
		AppName:       appName,
		Suffix:        suffix,
		DryRun:        dryRun,
	}

	tel := telemetry.New()
	result, err := generator.Generate(context.Background(), tel, opts)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cliui.Error(err.Error()))
		return fail(err)
	}

	if result.NoChanges() {
		fmt.Fprintln(cmd.OutOrStdout(), cliui.Dim("No model changes detected."))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cliui.Header("Migration"))
	fmt.Fprintln(cmd.OutOrStdout(), cliui.MigrationSummaryBox(result.MigrationName, describeOperations(result.Operations)))

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), cliui.Dim("Dry run: no files written."))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cliui.Success(fmt.Sprintf("Wrote %s", result.MigrationPath)))
	fmt.Fprintln(cmd.OutOrStdout(), cliui.Success(fmt.Sprintf("Updated %s", result.IndexPath)))
	return nil
}

func describeOperations(ops []model.Operation) []string {
	descriptions := make([]string, len(ops))
	for i, op := range ops {
		if op.Kind == model.OpAddField && len(op.Fields) > 0 {
			descriptions[i] = fmt.Sprintf("AddField %s.%s", op.TableName, op.Fields[0].ColumnName)
			continue
		}
		descriptions[i] = fmt.Sprintf("CreateModel %s", op.TableName)
	}
	return descriptions
}
