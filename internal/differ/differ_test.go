package differ

import (
	"errors"
	"testing"

	"makemigrations/internal/generrors"
	"makemigrations/internal/model"
)

func TestDiffCreateModel(t *testing.T) {
	app := map[string]model.Model{
		"post": {
			OriginalName: "Post",
			AppName:      "blog",
			TableName:    "post",
			Fields: []model.Field{
				{ColumnName: "id", PrimaryKey: true, Auto: true},
				{ColumnName: "title"},
			},
		},
	}

	result, err := Diff(app, map[string]model.Model{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(result.Operations) != 1 || result.Operations[0].Kind != model.OpCreateModel {
		t.Fatalf("Operations = %+v", result.Operations)
	}
	if len(result.Operations[0].Fields) != 2 {
		t.Fatalf("CreateModel fields = %+v", result.Operations[0].Fields)
	}
	if _, ok := result.Touched["post"]; !ok {
		t.Fatal("Touched missing post")
	}
}

func TestDiffAddField(t *testing.T) {
	frozen := map[string]model.Model{
		"post": {
			Kind:      model.KindMigration,
			TableName: "post",
			Fields:    []model.Field{{ColumnName: "id", PrimaryKey: true}},
		},
	}
	app := map[string]model.Model{
		"post": {
			OriginalName: "Post",
			AppName:      "blog",
			TableName:    "post",
			Fields: []model.Field{
				{ColumnName: "id", PrimaryKey: true},
				{ColumnName: "title"},
			},
		},
	}

	result, err := Diff(app, frozen)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(result.Operations) != 1 || result.Operations[0].Kind != model.OpAddField {
		t.Fatalf("Operations = %+v", result.Operations)
	}
	if result.Operations[0].Fields[0].ColumnName != "title" {
		t.Fatalf("AddField column = %+v", result.Operations[0].Fields[0])
	}
}

func TestDiffNoChange(t *testing.T) {
	m := model.Model{
		TableName: "post",
		Fields:    []model.Field{{ColumnName: "id", PrimaryKey: true}},
	}
	app := map[string]model.Model{"post": m}
	frozen := map[string]model.Model{"post": m}

	result, err := Diff(app, frozen)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(result.Operations) != 0 {
		t.Fatalf("Operations = %+v, want none", result.Operations)
	}
	if len(result.Touched) != 0 {
		t.Fatalf("Touched = %+v, want none", result.Touched)
	}
}

func TestDiffFieldTypeChangeUnsupported(t *testing.T) {
	frozen := map[string]model.Model{
		"post": {TableName: "post", Fields: []model.Field{{ColumnName: "id", ResolvedType: "int64"}}},
	}
	app := map[string]model.Model{
		"post": {TableName: "post", Fields: []model.Field{{ColumnName: "id", ResolvedType: "string"}}},
	}

	_, err := Diff(app, frozen)
	if !errors.Is(err, generrors.ErrNotImplemented) {
		t.Fatalf("Diff() error = %v, want ErrNotImplemented", err)
	}
}

func TestDiffFieldRemovalUnsupported(t *testing.T) {
	frozen := map[string]model.Model{
		"post": {TableName: "post", Fields: []model.Field{
			{ColumnName: "id"}, {ColumnName: "legacy"},
		}},
	}
	app := map[string]model.Model{
		"post": {TableName: "post", Fields: []model.Field{{ColumnName: "id"}}},
	}

	_, err := Diff(app, frozen)
	if !errors.Is(err, generrors.ErrNotImplemented) {
		t.Fatalf("Diff() error = %v, want ErrNotImplemented", err)
	}
}

func TestDiffModelRemovalUnsupported(t *testing.T) {
	frozen := map[string]model.Model{
		"post": {TableName: "post"},
	}

	_, err := Diff(map[string]model.Model{}, frozen)
	if !errors.Is(err, generrors.ErrNotImplemented) {
		t.Fatalf("Diff() error = %v, want ErrNotImplemented", err)
	}
}
