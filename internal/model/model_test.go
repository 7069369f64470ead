package model

import "testing"

func TestFieldEqual(t *testing.T) {
	a := Field{ColumnName: "id", ResolvedType: "int64", PrimaryKey: true, Auto: true}
	b := a
	if !a.Equal(b) {
		t.Fatal("identical fields reported unequal")
	}

	b.Nullable = true
	if a.Equal(b) {
		t.Fatal("fields differing in Nullable reported equal")
	}
}

func TestFieldEqualForeignKey(t *testing.T) {
	a := Field{ColumnName: "author_id", ForeignKey: &ForeignKeySpec{ToTable: "authors", ToColumn: "id"}}
	b := Field{ColumnName: "author_id", ForeignKey: &ForeignKeySpec{ToTable: "authors", ToColumn: "id"}}
	if !a.Equal(b) {
		t.Fatal("equivalent foreign keys reported unequal")
	}

	c := Field{ColumnName: "author_id", ForeignKey: &ForeignKeySpec{ToTable: "people", ToColumn: "id"}}
	if a.Equal(c) {
		t.Fatal("differing foreign key targets reported equal")
	}

	d := Field{ColumnName: "author_id"}
	if a.Equal(d) {
		t.Fatal("presence vs absence of foreign key reported equal")
	}
}

func TestModelPrimaryKeyField(t *testing.T) {
	m := Model{Fields: []Field{
		{ColumnName: "id", PrimaryKey: true},
		{ColumnName: "title"},
	}}

	pk, ok := m.PrimaryKeyField()
	if !ok || pk.ColumnName != "id" {
		t.Fatalf("PrimaryKeyField() = %v, %v", pk, ok)
	}

	if _, ok := (Model{}).PrimaryKeyField(); ok {
		t.Fatal("PrimaryKeyField() found a key in an empty model")
	}
}

func TestModelFieldByColumn(t *testing.T) {
	m := Model{Fields: []Field{{ColumnName: "title"}}}
	if _, ok := m.FieldByColumn("title"); !ok {
		t.Fatal("FieldByColumn(\"title\") not found")
	}
	if _, ok := m.FieldByColumn("missing"); ok {
		t.Fatal("FieldByColumn(\"missing\") unexpectedly found")
	}
}
