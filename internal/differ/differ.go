// Package differ compares the models currently declared in source against
// the latest frozen snapshot recorded by prior migrations and produces the
// schema operations needed to reconcile them. Grounded on cot-cli's
// generate_operations / make_alter_model_operations: a three-way set
// comparison over table names, then a per-field comparison over column
// names, both iterated in sorted order so the same input always produces
// the same operation sequence.
package differ

import (
	"fmt"
	"sort"

	"makemigrations/internal/generrors"
	"makemigrations/internal/model"
)

// Result is the outcome of diffing one app's models against its latest
// frozen snapshot.
type Result struct {
	Operations []model.Operation
	// Touched holds, for every table an operation was generated for, the
	// new frozen snapshot of that table's model — the copy the renderer
	// embeds in the migration it writes.
	Touched map[string]model.Model
}

// Diff compares appModels (freshly extracted from source, keyed by table
// name) against frozenModels (the latest snapshot from the migration
// index, keyed by table name) and returns the operations required to bring
// the frozen state in line with the application state.
//
// A table present only in frozenModels — meaning its application model was
// deleted — is a RemoveModel transition this generator does not support;
// Diff returns ErrNotImplemented rather than guessing at a destructive
// operation. A table present in neither map never occurs, since Diff
// iterates the union of the two maps' keys.
func Diff(appModels, frozenModels map[string]model.Model) (*Result, error) {
	result := &Result{Touched: map[string]model.Model{}}

	for _, table := range unionModelKeys(appModels, frozenModels) {
		app, hasApp := appModels[table]
		frozen, hasFrozen := frozenModels[table]

		switch {
		case hasApp && !hasFrozen:
			result.Operations = append(result.Operations, model.Operation{
				Kind:      model.OpCreateModel,
				TableName: table,
				ModelType: frozenTypeName(app),
				Fields:    app.Fields,
			})
			result.Touched[table] = freeze(app)

		case hasApp && hasFrozen:
			ops, changed, err := diffFields(app, frozen)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", table, err)
			}
			if changed {
				result.Operations = append(result.Operations, ops...)
				result.Touched[table] = freeze(app)
			}

		case !hasApp && hasFrozen:
			return nil, fmt.Errorf("table %s: %w: model removal", table, generrors.ErrNotImplemented)

		default:
			panic("differ: table present in neither model set")
		}
	}

	return result, nil
}

// diffFields compares one model's current fields against its frozen
// fields, keyed by column name, in sorted order. It returns the AddField
// operations needed for newly introduced columns. Type changes and column
// removals are unsupported transitions reported as ErrNotImplemented
// rather than the original's todo!() panics, since neither is an
// invariant violation.
func diffFields(app, frozen model.Model) ([]model.Operation, bool, error) {
	oldByColumn := make(map[string]model.Field, len(frozen.Fields))
	for _, f := range frozen.Fields {
		oldByColumn[f.ColumnName] = f
	}
	newByColumn := make(map[string]model.Field, len(app.Fields))
	for _, f := range app.Fields {
		newByColumn[f.ColumnName] = f
	}

	var ops []model.Operation
	changed := false

	for _, column := range unionFieldKeys(oldByColumn, newByColumn) {
		oldField, hasOld := oldByColumn[column]
		newField, hasNew := newByColumn[column]

		switch {
		case hasOld && hasNew:
			if !oldField.Equal(newField) {
				return nil, false, fmt.Errorf("column %s: %w: field type or flags changed", column, generrors.ErrNotImplemented)
			}

		case !hasOld && hasNew:
			ops = append(ops, model.Operation{
				Kind:      model.OpAddField,
				TableName: app.TableName,
				ModelType: frozenTypeName(app),
				Fields:    []model.Field{newField},
			})
			changed = true

		case hasOld && !hasNew:
			return nil, false, fmt.Errorf("column %s: %w: field removal", column, generrors.ErrNotImplemented)

		default:
			panic("differ: column present in neither field set")
		}
	}

	return ops, changed, nil
}

// freeze produces the migration-kind snapshot of an application model,
// embedded in the migration that introduces or modifies it.
func freeze(app model.Model) model.Model {
	frozen := app
	frozen.Kind = model.KindMigration
	frozen.Name = "_" + app.OriginalName
	return frozen
}

func frozenTypeName(app model.Model) string {
	return app.AppName + "._" + app.OriginalName
}

func unionModelKeys(a, b map[string]model.Model) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unionFieldKeys(a, b map[string]model.Field) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
