package schema

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestColumnTypeFor(t *testing.T) {
	cases := []struct {
		value any
		want  ColumnType
	}{
		{int64(0), ColumnTypeBigInt},
		{int32(0), ColumnTypeInt},
		{"", ColumnTypeString},
		{true, ColumnTypeBool},
		{float64(0), ColumnTypeFloat64},
		{[]byte(nil), ColumnTypeBytes},
		{time.Time{}, ColumnTypeTimestamp},
	}
	for _, c := range cases {
		got := ColumnTypeFor(reflect.TypeOf(c.value))
		if got != c.want {
			t.Errorf("ColumnTypeFor(%T) = %v, want %v", c.value, got, c.want)
		}
	}
}

func TestFieldRenderOrder(t *testing.T) {
	f := NewField("id", ColumnTypeBigInt).Unique().Auto().PrimaryKey()
	got := f.Render()

	autoIdx := strings.Index(got, ".Auto()")
	pkIdx := strings.Index(got, ".PrimaryKey()")
	nullableIdx := strings.Index(got, ".Nullable(")
	uniqueIdx := strings.Index(got, ".Unique()")

	if !(autoIdx < pkIdx && pkIdx < nullableIdx && nullableIdx < uniqueIdx) {
		t.Fatalf("Field.Render() builder calls out of order: %s", got)
	}
}

func TestFieldRenderForeignKeyOrder(t *testing.T) {
	f := NewField("author_id", ColumnTypeBigInt).ForeignKey(ForeignKeySpec{
		ToTable:  "authors",
		ToColumn: "id",
		OnDelete: Restrict,
		OnUpdate: Restrict,
	}).Nullable(true)
	got := f.Render()

	fkIdx := strings.Index(got, ".ForeignKey(")
	nullableIdx := strings.Index(got, ".Nullable(")
	if fkIdx == -1 || nullableIdx == -1 || fkIdx > nullableIdx {
		t.Fatalf("Field.Render() ForeignKey must precede Nullable: %s", got)
	}
}

func TestOperationRenderKinds(t *testing.T) {
	op := CreateModelOp("posts", "myapp.Post", []*Field{
		NewField("id", ColumnTypeBigInt).Auto().PrimaryKey().Nullable(false),
	})
	if op.Kind() != "CreateModel" {
		t.Fatalf("Kind() = %q, want CreateModel", op.Kind())
	}
	if got := op.Render(); !strings.Contains(got, "schema.CreateModelOp(") {
		t.Fatalf("Render() = %q, want CreateModelOp call", got)
	}

	add := AddFieldOp("posts", "myapp.Post", NewField("title", ColumnTypeString).Nullable(false))
	if add.Kind() != "AddField" {
		t.Fatalf("Kind() = %q, want AddField", add.Kind())
	}
	if got := add.Render(); !strings.Contains(got, "schema.AddFieldOp(") {
		t.Fatalf("Render() = %q, want AddFieldOp call", got)
	}
}

func TestDependencyRender(t *testing.T) {
	mig := OnMigration("myapp", "m_0001_initial")
	if got := mig.Render(); got != `schema.OnMigration("myapp", "m_0001_initial")` {
		t.Fatalf("Render() = %q", got)
	}

	model := OnModel("myapp", "author")
	if got := model.Render(); got != `schema.OnModel("myapp", "author")` {
		t.Fatalf("Render() = %q", got)
	}
}
