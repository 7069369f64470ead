// Package migindex builds the ordered index of previously generated
// migrations a generator run diffs against: it orders the migration
// corpus deterministically, exposes the latest frozen snapshot of every
// model, and computes the next migration name and base dependency for a
// new migration. Grounded line-for-line on flareon's
// db/migrations/sorter.rs: a descending lexicographic pre-sort for
// determinism, then a topological sort over the declared dependency edges.
package migindex

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"makemigrations/internal/generrors"
	"makemigrations/internal/graph"
	"makemigrations/internal/model"
)

// Index is the sorted, validated corpus of migrations for one or more
// apps.
type Index struct {
	sorted []model.Migration
}

type key struct {
	appName string
	name    string
}

// Sort validates and orders a migration corpus: migrations are first
// ordered descending by (app name, name) for a deterministic starting
// sequence, then topologically sorted so that every migration appears
// after everything it depends on.
func Sort(migrations []model.Migration) (*Index, error) {
	ordered := make([]model.Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].AppName != ordered[j].AppName {
			return ordered[i].AppName > ordered[j].AppName
		}
		return ordered[i].Name > ordered[j].Name
	})

	byMigration := make(map[key]int, len(ordered))
	byModel := make(map[key]int, len(ordered))
	for i, m := range ordered {
		if _, err := parseMigrationNumber(m.Name); err != nil {
			return nil, err
		}

		mk := key{m.AppName, m.Name}
		if _, exists := byMigration[mk]; exists {
			return nil, &generrors.DuplicateMigrationError{AppName: m.AppName, Name: m.Name}
		}
		byMigration[mk] = i

		for _, op := range m.Operations {
			if op.Kind != model.OpCreateModel {
				continue
			}
			tk := key{m.AppName, op.TableName}
			if _, exists := byModel[tk]; exists {
				return nil, &generrors.DuplicateModelError{AppName: m.AppName, TableName: op.TableName}
			}
			byModel[tk] = i
		}
	}

	g := graph.New(len(ordered))
	for i, m := range ordered {
		for _, dep := range m.Dependencies {
			var from int
			var ok bool
			switch dep.Kind {
			case model.DepMigration:
				from, ok = byMigration[key{dep.AppName, dep.Name}]
			case model.DepModel:
				from, ok = byModel[key{dep.AppName, dep.Name}]
			}
			if !ok {
				return nil, &generrors.InvalidDependencyError{AppName: dep.AppName, Name: dep.Name}
			}
			g.AddEdge(from, i)
		}
	}

	order, err := g.Toposort()
	if err != nil {
		return nil, generrors.ErrCycleDetected
	}

	sortedMigrations := make([]model.Migration, len(order))
	for i, idx := range order {
		sortedMigrations[i] = ordered[idx]
	}
	return &Index{sorted: sortedMigrations}, nil
}

// All returns the migrations in final topological order.
func (idx *Index) All() []model.Migration { return idx.sorted }

// ForApp returns the migrations belonging to appName, in topological order.
func (idx *Index) ForApp(appName string) []model.Migration {
	var result []model.Migration
	for _, m := range idx.sorted {
		if m.AppName == appName {
			result = append(result, m)
		}
	}
	return result
}

// LatestModels returns, for appName, the most recent frozen snapshot of
// every model that has ever been touched by a migration, keyed by table
// name. "Most recent" means the one belonging to the migration that comes
// last in topological order.
func (idx *Index) LatestModels(appName string) map[string]model.Model {
	latest := make(map[string]model.Model)
	for _, m := range idx.sorted {
		if m.AppName != appName {
			continue
		}
		for table, frozen := range m.FrozenModels {
			latest[table] = frozen
		}
	}
	return latest
}

// Owners returns, for appName, the name of the migration that most
// recently froze each table's snapshot, keyed by table name. A migration
// that references an older snapshot by foreign key but didn't freeze it
// itself uses this to find which migration's package declares the
// type.
func (idx *Index) Owners(appName string) map[string]string {
	owners := make(map[string]string)
	for _, m := range idx.sorted {
		if m.AppName != appName {
			continue
		}
		for table := range m.FrozenModels {
			owners[table] = m.Name
		}
	}
	return owners
}

var migrationNamePattern = regexp.MustCompile(`^m_(\d+)_`)

// parseMigrationNumber extracts the numeric prefix from a migration name
// conforming to the m_NNNN_description scheme. A name that does not
// conform is a hard error: Sort calls this for every migration entering
// the index, so a corrupted migration history is rejected at index-build
// time rather than only when a new migration happens to be generated.
func parseMigrationNumber(name string) (int, error) {
	match := migrationNamePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, fmt.Errorf("%w: %q does not match m_NNNN_description", generrors.ErrMalformedMigrationName, name)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", generrors.ErrMalformedMigrationName, name, err)
	}
	return n, nil
}

// NextName computes the name for the next migration to generate for
// appName. The first migration for an app is always "m_0001_initial".
// Subsequent names increment the numeric prefix of the highest-numbered
// existing migration; idx has already validated every existing name
// during Sort, so the name parsing here does not fail for an Index built
// by Sort.
func NextName(idx *Index, appName, suffix string) (string, error) {
	existing := idx.ForApp(appName)
	if len(existing) == 0 {
		return "m_0001_initial", nil
	}

	max := -1
	for _, m := range existing {
		n, err := parseMigrationNumber(m.Name)
		if err != nil {
			return "", err
		}
		if n > max {
			max = n
		}
	}

	return fmt.Sprintf("m_%04d_auto_%s", max+1, suffix), nil
}

// BaseDependencies returns the dependency a new migration for appName must
// start with: none, if this is the app's first migration, otherwise a
// single dependency on the last migration in the app's topological order.
func BaseDependencies(idx *Index, appName string) []model.Dependency {
	existing := idx.ForApp(appName)
	if len(existing) == 0 {
		return nil
	}
	last := existing[len(existing)-1]
	return []model.Dependency{{Kind: model.DepMigration, AppName: appName, Name: last.Name}}
}
