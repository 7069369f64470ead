// Package model defines the domain types the rest of the generator passes
// between stages: the shape of a scanned model and its fields, and the
// shape of the operations and dependencies a migration is assembled from.
// It mirrors flareon-codegen's Model/Field and cot-cli's DynOperation/
// DynDependency, translated into plain Go data (no macro attributes, no
// proc-macro Repr trait — rendering to source text is internal/render's
// job, not this package's).
package model

import "makemigrations/schema"

// Kind classifies how a scanned struct participates in the generator.
type Kind int

const (
	// KindApplication is a live model: the generator diffs it against the
	// latest frozen snapshot to produce new operations.
	KindApplication Kind = iota
	// KindMigration is a frozen snapshot embedded in a previously generated
	// migration file; it is never touched by the scanner's author, only by
	// the renderer.
	KindMigration
	// KindInternal is a struct that looks like a model but is explicitly
	// excluded from both scanning and diffing.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindMigration:
		return "migration"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ForeignKeySpec describes the target of a foreign-key field.
type ForeignKeySpec struct {
	ToTable  string
	ToColumn string
}

// Field is one column of a model, in its resolved (attribute-free) form.
type Field struct {
	// FieldName is the Go struct field identifier.
	FieldName string
	// ColumnName is the database column name (snake_case of FieldName
	// unless overridden).
	ColumnName string
	// ResolvedType is the field's fully-qualified Go type, produced by the
	// symbol resolver; used for structural equality across files.
	ResolvedType string
	ColumnType   schema.ColumnType
	Auto         bool
	PrimaryKey   bool
	Unique       bool
	Nullable     bool
	ForeignKey   *ForeignKeySpec
}

// Equal reports whether two fields are structurally identical — same
// column name, resolved type, and flags. Used by the differ to detect
// AlterField transitions (which it does not support and reports as an
// error, but still needs Equal to detect that a change occurred at all).
func (f Field) Equal(other Field) bool {
	if f.ColumnName != other.ColumnName ||
		f.ResolvedType != other.ResolvedType ||
		f.ColumnType != other.ColumnType ||
		f.Auto != other.Auto ||
		f.PrimaryKey != other.PrimaryKey ||
		f.Unique != other.Unique ||
		f.Nullable != other.Nullable {
		return false
	}
	switch {
	case f.ForeignKey == nil && other.ForeignKey == nil:
		return true
	case f.ForeignKey == nil || other.ForeignKey == nil:
		return false
	default:
		return *f.ForeignKey == *other.ForeignKey
	}
}

// Model is a scanned or frozen struct recognized as a model.
type Model struct {
	// Name is the exported Go identifier other code should use to refer to
	// this model (for Migration-kind models, this is the frozen type name
	// with its leading underscore, e.g. "_Post").
	Name string
	// OriginalName is the struct's name as declared in source, before any
	// frozen-model prefix handling.
	OriginalName string
	Kind         Kind
	// AppName is the owning module's short name (see internal/modfile).
	AppName string
	// TableName is the database table name: an explicit override, or the
	// snake_case of OriginalName with any leading underscore stripped.
	TableName string
	// SourcePackage is the fully-qualified import path of the package the
	// model was declared in, used by the resolver to qualify this model's
	// own type when other models reference it.
	SourcePackage string
	Fields        []Field
}

// PrimaryKeyField returns the model's single primary-key field. Extraction
// guarantees exactly one exists by the time a Model reaches this stage.
func (m Model) PrimaryKeyField() (Field, bool) {
	for _, f := range m.Fields {
		if f.PrimaryKey {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByColumn returns the field with the given column name, if any.
func (m Model) FieldByColumn(column string) (Field, bool) {
	for _, f := range m.Fields {
		if f.ColumnName == column {
			return f, true
		}
	}
	return Field{}, false
}

// Operation is a single schema change within a migration: either creating
// a table wholesale, or adding one column to an existing table.
type Operation struct {
	Kind      OperationKind
	TableName string
	ModelType string // fully-qualified frozen model type this operation targets
	Fields    []Field
}

// OperationKind distinguishes the two operation shapes this generator
// emits. AlterField, RemoveField, and RemoveModel are recognized by the
// differ but rejected with a typed error rather than represented here —
// see internal/generrors.ErrNotImplemented.
type OperationKind int

const (
	OpCreateModel OperationKind = iota
	OpAddField
)

func (k OperationKind) String() string {
	if k == OpAddField {
		return "AddField"
	}
	return "CreateModel"
}

// Dependency is an edge a migration declares on another migration, or on a
// model becoming available before this migration runs. For DepMigration,
// Name is the depended-on migration's name; for DepModel, Name is the
// depended-on model's table name (the Rust original resolves this through
// a type's APP_NAME/TABLE_NAME associated constants at compile time; Go has
// no such mechanism, so the app name and table name are carried directly).
type Dependency struct {
	Kind    DependencyKind
	AppName string
	Name    string
}

type DependencyKind int

const (
	DepMigration DependencyKind = iota
	DepModel
)

// Migration is one generated (or previously generated and reloaded)
// migration: its position in the app's history, the schema operations it
// performs, the migrations/models it depends on, and the frozen model
// snapshots it carries forward for future diffs.
type Migration struct {
	AppName      string
	Name         string
	Dependencies []Dependency
	Operations   []Operation
	// FrozenModels holds a KindMigration snapshot for every model touched
	// by Operations, keyed by table name.
	FrozenModels map[string]Model
}
