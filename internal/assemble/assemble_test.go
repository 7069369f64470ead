package assemble

import (
	"testing"

	"makemigrations/internal/model"
)

func ownerAlways(app string) TableOwner {
	return func(table string) (string, bool) { return app, true }
}

func TestAssembleOrdersCreateBeforeDependent(t *testing.T) {
	ops := []model.Operation{
		{Kind: model.OpCreateModel, TableName: "post", ModelType: "blog._Post", Fields: []model.Field{
			{ColumnName: "author_id", ForeignKey: &model.ForeignKeySpec{ToTable: "author"}},
		}},
		{Kind: model.OpCreateModel, TableName: "author", ModelType: "blog._Author", Fields: []model.Field{
			{ColumnName: "id", PrimaryKey: true},
		}},
	}

	result, err := Assemble(nil, ops, ownerAlways("blog"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	authorIdx, postIdx := -1, -1
	for i, op := range result.Operations {
		switch op.TableName {
		case "author":
			authorIdx = i
		case "post":
			postIdx = i
		}
	}
	if authorIdx == -1 || postIdx == -1 || authorIdx > postIdx {
		t.Fatalf("Operations not ordered author-before-post: %+v", result.Operations)
	}
}

func TestAssembleBreaksMutualCycle(t *testing.T) {
	ops := []model.Operation{
		{Kind: model.OpCreateModel, TableName: "a", ModelType: "app._A", Fields: []model.Field{
			{ColumnName: "id", PrimaryKey: true},
			{ColumnName: "b_id", ForeignKey: &model.ForeignKeySpec{ToTable: "b"}},
		}},
		{Kind: model.OpCreateModel, TableName: "b", ModelType: "app._B", Fields: []model.Field{
			{ColumnName: "id", PrimaryKey: true},
			{ColumnName: "a_id", ForeignKey: &model.ForeignKeySpec{ToTable: "a"}},
		}},
	}

	result, err := Assemble(nil, ops, ownerAlways("app"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(result.Operations) != 3 {
		t.Fatalf("Operations = %+v, want 3 (2 CreateModel + 1 split AddField)", result.Operations)
	}

	var addFieldCount int
	for _, op := range result.Operations {
		if op.Kind == model.OpAddField {
			addFieldCount++
		}
	}
	if addFieldCount != 1 {
		t.Fatalf("Operations contain %d AddField ops, want 1", addFieldCount)
	}

	createIdx := map[string]int{}
	for i, op := range result.Operations {
		if op.Kind == model.OpCreateModel {
			createIdx[op.TableName] = i
		}
	}
	for i, op := range result.Operations {
		if op.Kind != model.OpAddField {
			continue
		}
		fk := op.Fields[0].ForeignKey
		if fk == nil {
			t.Fatalf("split AddField has no foreign key: %+v", op)
		}
		if createIdx[fk.ToTable] >= i {
			t.Fatalf("AddField at %d references table created at %d, want created first", i, createIdx[fk.ToTable])
		}
	}
}

func TestAssembleCrossMigrationDependency(t *testing.T) {
	ops := []model.Operation{
		{Kind: model.OpAddField, TableName: "post", ModelType: "blog._Post", Fields: []model.Field{
			{ColumnName: "author_id", ForeignKey: &model.ForeignKeySpec{ToTable: "author"}},
		}},
	}

	result, err := Assemble(nil, ops, ownerAlways("blog"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(result.Dependencies) != 1 {
		t.Fatalf("Dependencies = %+v, want 1", result.Dependencies)
	}
	dep := result.Dependencies[0]
	if dep.Kind != model.DepModel || dep.AppName != "blog" || dep.Name != "author" {
		t.Fatalf("Dependencies[0] = %+v", dep)
	}
}

func TestAssembleKeepsBaseDependencies(t *testing.T) {
	base := []model.Dependency{{Kind: model.DepMigration, AppName: "blog", Name: "m_0001_initial"}}
	result, err := Assemble(base, nil, ownerAlways("blog"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(result.Dependencies) != 1 || result.Dependencies[0] != base[0] {
		t.Fatalf("Dependencies = %+v, want base dependency preserved", result.Dependencies)
	}
}
