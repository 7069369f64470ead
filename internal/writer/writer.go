// Package writer is the boundary that puts rendered migration source onto
// disk: one file per migration, each in its own package under
// <root>/<migrationsDir>/<name>/, plus the migrations-index module listing
// them all. Each migration gets its own package (rather than all of them
// sharing one) because every migration file declares its own AppName,
// MigrationName, Dependencies, and Operations identifiers — those would
// collide the moment a second migration landed in a shared package.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"makemigrations/internal/migindex"
	"makemigrations/internal/model"
	"makemigrations/internal/render"
)

// WriteMigration renders and writes a single migration file under
// root/migrationsDirName/<name>/<name>.go, in its own package named after
// the migration. modulePath and owners are forwarded to internal/render
// so a foreign key referencing an earlier migration's frozen type can be
// qualified with that migration's import path.
func WriteMigration(root, modulePath, migrationsDirName string, m model.Migration, owners map[string]string, now time.Time) (string, error) {
	src, err := render.Migration(m, modulePath, migrationsDirName, owners, now)
	if err != nil {
		return "", fmt.Errorf("writer: %w", err)
	}

	dir := filepath.Join(root, migrationsDirName, m.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("writer: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, m.Name+".go")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("writer: write %s: %w", path, err)
	}
	return path, nil
}

// WriteIndex rewrites the migrations-index module for appName, listing
// every migration the index knows about for that app, in topological
// order. It lives directly under root/migrationsDirName, a sibling of
// each migration's own subpackage directory.
func WriteIndex(root, migrationsDirName string, idx *migindex.Index, appName string, now time.Time) (string, error) {
	migrations := idx.ForApp(appName)
	names := make([]string, len(migrations))
	for i, m := range migrations {
		names[i] = m.Name
	}

	src, err := render.Index(names, now)
	if err != nil {
		return "", fmt.Errorf("writer: %w", err)
	}

	dir := filepath.Join(root, migrationsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("writer: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, "migrations_index.go")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("writer: write %s: %w", path, err)
	}
	return path, nil
}
