// Package generator wires the pipeline together: scan source for model
// declarations, load the migration history already on disk, diff the two,
// assemble the result into a dependency-ordered migration, and render and
// write it. Each phase is timed and traced through internal/telemetry, the
// Go-native analog of cot-cli's generate command driving the same stages
// (but here as a library call rather than a binary invocation).
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"makemigrations/internal/assemble"
	"makemigrations/internal/differ"
	"makemigrations/internal/extract"
	"makemigrations/internal/loader"
	"makemigrations/internal/migindex"
	"makemigrations/internal/model"
	"makemigrations/internal/modfile"
	"makemigrations/internal/scanner"
	"makemigrations/internal/telemetry"
	"makemigrations/internal/writer"
)

// Options configures a single generate run.
type Options struct {
	// Root is the project directory containing go.mod.
	Root string
	// MigrationsDir is the migrations directory, relative to Root.
	// Defaults to "migrations".
	MigrationsDir string
	// AppName overrides the module-path-derived app name.
	AppName string
	// Suffix names the migration being generated, e.g. "add_author" ->
	// m_0002_auto_add_author. Defaults to "auto". The first migration of an
	// app is always m_0001_initial, whatever the suffix.
	Suffix string
	// DryRun computes the result without writing any files.
	DryRun bool
}

// Result summarizes the outcome of a generate run.
type Result struct {
	AppName       string
	MigrationName string
	Operations    []model.Operation
	Written       bool
	MigrationPath string
	IndexPath     string
}

// NoChanges reports whether the run found nothing to do.
func (r *Result) NoChanges() bool { return len(r.Operations) == 0 }

func migrationsDirName(opts Options) string {
	if opts.MigrationsDir == "" {
		return "migrations"
	}
	return opts.MigrationsDir
}

func suffixOrDefault(opts Options) string {
	if opts.Suffix == "" {
		return "auto"
	}
	return opts.Suffix
}

// Generate runs the scan -> extract -> load -> index -> diff -> assemble
// -> render -> write pipeline once.
func Generate(ctx context.Context, tel *telemetry.Telemetry, opts Options) (*Result, error) {
	modulePath, err := modfile.ReadModulePath(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	appName := opts.AppName
	if appName == "" {
		appName = modfile.AppName(modulePath)
	}

	var scan *scanner.Result
	if err := tel.Phase(ctx, "scan", appName, func() (int, error) {
		var err error
		scan, err = scanner.Scan(opts.Root, modulePath)
		if err != nil {
			return 0, err
		}
		return len(scan.Files), nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	var appModels []model.Model
	if err := tel.Phase(ctx, "extract", appName, func() (int, error) {
		var err error
		appModels, err = extract.Models(scan, appName)
		if err != nil {
			return 0, err
		}
		return len(appModels), nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	migDirName := migrationsDirName(opts)
	migrationsDir := filepath.Join(opts.Root, migDirName)

	var history []model.Migration
	if err := tel.Phase(ctx, "load", appName, func() (int, error) {
		migs, err := loadHistory(migrationsDir, modulePath, appName)
		if err != nil {
			return 0, err
		}
		history = migs
		return len(history), nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	var idx *migindex.Index
	if err := tel.Phase(ctx, "index", appName, func() (int, error) {
		var err error
		idx, err = migindex.Sort(history)
		if err != nil {
			return 0, err
		}
		return len(idx.All()), nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	// appModels also contains the frozen migration-kind snapshots embedded
	// in migration files under migrationsDir, since scanner.Scan walks the
	// whole project root; only KindApplication models reflect live source.
	appByTable := make(map[string]model.Model, len(appModels))
	for _, m := range appModels {
		if m.Kind == model.KindApplication {
			appByTable[m.TableName] = m
		}
	}
	frozenModels := idx.LatestModels(appName)

	var diffResult *differ.Result
	if err := tel.Phase(ctx, "diff", appName, func() (int, error) {
		var err error
		diffResult, err = differ.Diff(appByTable, frozenModels)
		if err != nil {
			return 0, err
		}
		return len(diffResult.Operations), nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	if diffResult == nil || len(diffResult.Operations) == 0 {
		return &Result{AppName: appName}, nil
	}

	owner := func(table string) (string, bool) { return appName, true }

	var assembled *assemble.Assembled
	if err := tel.Phase(ctx, "assemble", appName, func() (int, error) {
		var err error
		assembled, err = assemble.Assemble(migindex.BaseDependencies(idx, appName), diffResult.Operations, owner)
		if err != nil {
			return 0, err
		}
		return len(assembled.Operations), nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	name, err := migindex.NextName(idx, appName, suffixOrDefault(opts))
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	migration := model.Migration{
		AppName:      appName,
		Name:         name,
		Dependencies: assembled.Dependencies,
		Operations:   assembled.Operations,
		FrozenModels: diffResult.Touched,
	}

	result := &Result{
		AppName:       appName,
		MigrationName: name,
		Operations:    migration.Operations,
	}

	if opts.DryRun {
		return result, nil
	}

	owners := idx.Owners(appName)

	now := time.Now()
	var migPath, indexPath string
	if err := tel.Phase(ctx, "write", appName, func() (int, error) {
		var err error
		migPath, err = writer.WriteMigration(opts.Root, modulePath, migDirName, migration, owners, now)
		if err != nil {
			return 0, err
		}
		newIdx, err := migindex.Sort(append(history, migration))
		if err != nil {
			return 0, err
		}
		indexPath, err = writer.WriteIndex(opts.Root, migDirName, newIdx, appName, now)
		if err != nil {
			return 0, err
		}
		return 2, nil
	}); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	result.Written = true
	result.MigrationPath = migPath
	result.IndexPath = indexPath
	return result, nil
}

// List returns every migration known to appName's history, in topological
// order.
func List(opts Options) ([]model.Migration, error) {
	modulePath, err := modfile.ReadModulePath(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	appName := opts.AppName
	if appName == "" {
		appName = modfile.AppName(modulePath)
	}

	migrationsDir := filepath.Join(opts.Root, migrationsDirName(opts))
	history, err := loadHistory(migrationsDir, modulePath, appName)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	idx, err := migindex.Sort(history)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return idx.ForApp(appName), nil
}

// loadHistory loads the migration corpus at dir, treating a missing
// directory as an empty, first-run history rather than an error.
func loadHistory(dir, modulePath, appName string) ([]model.Migration, error) {
	migs, err := loader.Load(dir, modulePath, appName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return migs, nil
}
