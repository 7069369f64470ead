package loader

import (
	"testing"
	"time"

	"makemigrations/internal/model"
	"makemigrations/internal/writer"
)

func TestLoadRoundTripsWrittenMigration(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	original := model.Migration{
		AppName: "blog",
		Name:    "m_0001_initial",
		Dependencies: []model.Dependency{
			{Kind: model.DepModel, AppName: "blog", Name: "author"},
		},
		Operations: []model.Operation{
			{
				Kind:      model.OpCreateModel,
				TableName: "post",
				ModelType: "blog._Post",
				Fields: []model.Field{
					{ColumnName: "id", ColumnType: 4, Auto: true, PrimaryKey: true},
					{ColumnName: "author_id", ColumnType: 4, ForeignKey: &model.ForeignKeySpec{ToTable: "author", ToColumn: "id"}},
				},
			},
		},
		FrozenModels: map[string]model.Model{
			"post": {
				Name:      "_Post",
				Kind:      model.KindMigration,
				TableName: "post",
				Fields: []model.Field{
					{FieldName: "ID", ColumnName: "id", ResolvedType: "uint64", Auto: true, PrimaryKey: true},
					{FieldName: "AuthorID", ColumnName: "author_id", ResolvedType: "blog.Author", ForeignKey: &model.ForeignKeySpec{ToTable: "author", ToColumn: "id"}},
				},
			},
		},
	}

	if _, err := writer.WriteMigration(root, "example.com/blog", "migrations", original, nil, now); err != nil {
		t.Fatalf("WriteMigration: %v", err)
	}

	loaded, err := Load(root+"/migrations", "example.com/blog", "blog")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Load() returned %d migrations, want 1", len(loaded))
	}

	m := loaded[0]
	if m.Name != "m_0001_initial" || m.AppName != "blog" {
		t.Fatalf("Load() migration = %+v", m)
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0].Kind != model.DepModel || m.Dependencies[0].Name != "author" {
		t.Fatalf("Load() dependencies = %+v", m.Dependencies)
	}
	if len(m.Operations) != 1 || m.Operations[0].TableName != "post" {
		t.Fatalf("Load() operations = %+v", m.Operations)
	}

	post, ok := m.FrozenModels["post"]
	if !ok {
		t.Fatalf("Load() missing frozen model for post")
	}
	if _, ok := post.PrimaryKeyField(); !ok {
		t.Fatalf("Load() frozen post model has no primary key: %+v", post)
	}
	if fk, ok := post.FieldByColumn("author_id"); !ok || fk.ForeignKey == nil || fk.ForeignKey.ToTable != "author" {
		t.Fatalf("Load() frozen post.author_id = %+v, %v", fk, ok)
	}
}
