// Package assemble orders one migration's operations so that every
// CreateModel appears before anything that references it, and derives the
// migration's full dependency list. Grounded on cot-cli's
// GeneratedMigration::new / remove_cycles / toposort_operations /
// get_foreign_key_dependencies: construct a dependency graph over the
// operation list, break any cycle with a greedy feedback-arc-set by
// deferring the offending foreign-key field into its own AddField
// operation, topologically sort what remains, then add a cross-migration
// Model dependency for every foreign key whose target isn't created in
// this same migration.
package assemble

import (
	"fmt"
	"sort"

	"makemigrations/internal/generrors"
	"makemigrations/internal/graph"
	"makemigrations/internal/model"
)

// Assembled is a migration's final operation order and full dependency
// list, ready for rendering.
type Assembled struct {
	Operations   []model.Operation
	Dependencies []model.Dependency
}

// TableOwner resolves a table name to the app name that owns it, across
// the full known model set — application models, this migration's own new
// models, and every previously frozen snapshot.
type TableOwner func(table string) (appName string, ok bool)

// Assemble orders ops and computes this migration's dependency list.
// baseDeps is the migration's dependency on its app's own immediately
// prior migration (from internal/migindex.BaseDependencies), carried
// through unchanged.
func Assemble(baseDeps []model.Dependency, ops []model.Operation, owner TableOwner) (*Assembled, error) {
	ordered := sortedOperations(ops)

	ordered, err := breakCycles(ordered)
	if err != nil {
		return nil, err
	}

	g := dependencyGraph(ordered)
	order, err := g.Toposort()
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", generrors.ErrCycleDetected)
	}
	sortedOps := make([]model.Operation, len(order))
	for i, idx := range order {
		sortedOps[i] = ordered[idx]
	}

	deps := append([]model.Dependency{}, baseDeps...)
	deps = append(deps, foreignKeyDependencies(sortedOps, owner)...)

	return &Assembled{Operations: sortedOps, Dependencies: deps}, nil
}

// sortedOperations orders operations by (table name, first referenced
// table name) before any cycle-breaking runs, so that which edge a greedy
// feedback-arc-set chooses to cut is a pure function of the input — the
// open question the original left to the toolchain's arbitrary HashMap
// iteration order is pinned down here.
func sortedOperations(ops []model.Operation) []model.Operation {
	sorted := append([]model.Operation{}, ops...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TableName != sorted[j].TableName {
			return sorted[i].TableName < sorted[j].TableName
		}
		return firstReferencedTable(sorted[i]) < firstReferencedTable(sorted[j])
	})
	return sorted
}

func firstReferencedTable(op model.Operation) string {
	for _, f := range op.Fields {
		if f.ForeignKey != nil {
			return f.ForeignKey.ToTable
		}
	}
	return ""
}

// dependencyGraph builds an edge from each CreateModel operation to every
// other operation in the list that has a field referencing the table it
// creates.
func dependencyGraph(ops []model.Operation) *graph.Graph {
	g := graph.New(len(ops))
	for i, from := range ops {
		if from.Kind != model.OpCreateModel {
			continue
		}
		for j, to := range ops {
			if i == j {
				continue
			}
			if operationReferences(to, from.TableName) {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}

func operationReferences(op model.Operation, table string) bool {
	for _, f := range op.Fields {
		if f.ForeignKey != nil && f.ForeignKey.ToTable == table {
			return true
		}
	}
	return false
}

// breakCycles detects dependency cycles among this migration's own
// operations and breaks each one by moving the foreign-key field that
// causes a feedback edge out of its CreateModel operation into a separate
// AddField operation, which the final toposort will naturally place after
// the table it references.
func breakCycles(ops []model.Operation) ([]model.Operation, error) {
	g := dependencyGraph(ops)
	if _, err := g.Toposort(); err == nil {
		return ops, nil
	}

	feedback := graph.GreedyFeedbackArcSet(g)
	result := append([]model.Operation{}, ops...)

	for _, edge := range feedback {
		from := result[edge.From]
		if from.Kind != model.OpCreateModel {
			panic("assemble: feedback edge originates from a non-CreateModel operation")
		}
		targetTable := result[edge.To].TableName

		var retain, removed []model.Field
		for _, f := range from.Fields {
			if f.ForeignKey != nil && f.ForeignKey.ToTable == targetTable {
				removed = append(removed, f)
			} else {
				retain = append(retain, f)
			}
		}
		if len(removed) == 0 {
			continue
		}

		result[edge.From].Fields = retain
		for _, f := range removed {
			result = append(result, model.Operation{
				Kind:      model.OpAddField,
				TableName: from.TableName,
				ModelType: from.ModelType,
				Fields:    []model.Field{f},
			})
		}
	}

	g = dependencyGraph(result)
	if _, err := g.Toposort(); err != nil {
		return nil, fmt.Errorf("assemble: %w", generrors.ErrCycleDetected)
	}
	return result, nil
}

// foreignKeyDependencies returns one deduplicated Model dependency per
// foreign key target table that isn't created by a CreateModel operation
// within this same migration.
func foreignKeyDependencies(ops []model.Operation, owner TableOwner) []model.Dependency {
	createdHere := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op.Kind == model.OpCreateModel {
			createdHere[op.TableName] = true
		}
	}

	seen := map[string]bool{}
	var deps []model.Dependency
	for _, op := range ops {
		for _, f := range op.Fields {
			if f.ForeignKey == nil || createdHere[f.ForeignKey.ToTable] {
				continue
			}
			appName, ok := owner(f.ForeignKey.ToTable)
			if !ok {
				continue
			}
			key := appName + "." + f.ForeignKey.ToTable
			if seen[key] {
				continue
			}
			seen[key] = true
			deps = append(deps, model.Dependency{Kind: model.DepModel, AppName: appName, Name: f.ForeignKey.ToTable})
		}
	}
	return deps
}
