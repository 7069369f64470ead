// Package schema carries the data shapes that generated migration source
// references: field markers, the field/operation/dependency builders the
// renderer emits constructor calls for, and the column-type mapping used
// when a Go field type has no direct database analog. It does not apply
// migrations to a database — that is the runtime migration executor's job,
// outside this module's scope.
package schema

import (
	"fmt"
	"reflect"
)

// Auto marks a field whose value is assigned by the database on insert
// (serial primary keys, autoincrement columns). T is the field's logical
// Go type; Auto[T] itself carries no value at migration-generation time,
// it is only a shape the extractor recognizes.
type Auto[T any] struct{}

// ForeignKey marks a field that references the primary key of another
// model's table. T is the referenced model type.
type ForeignKey[T any] struct{}

// ColumnType enumerates the database column types a field can be declared
// with in generated migration source.
type ColumnType int

const (
	ColumnTypeUnknown ColumnType = iota
	ColumnTypeBool
	ColumnTypeSmallInt
	ColumnTypeInt
	ColumnTypeBigInt
	ColumnTypeFloat32
	ColumnTypeFloat64
	ColumnTypeString
	ColumnTypeText
	ColumnTypeBytes
	ColumnTypeTimestamp
)

func (c ColumnType) String() string {
	switch c {
	case ColumnTypeBool:
		return "Bool"
	case ColumnTypeSmallInt:
		return "SmallInt"
	case ColumnTypeInt:
		return "Int"
	case ColumnTypeBigInt:
		return "BigInt"
	case ColumnTypeFloat32:
		return "Float32"
	case ColumnTypeFloat64:
		return "Float64"
	case ColumnTypeString:
		return "String"
	case ColumnTypeText:
		return "Text"
	case ColumnTypeBytes:
		return "Bytes"
	case ColumnTypeTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// ColumnTypeFor maps a Go reflect.Type to the database column type a
// migration field declares for it. Rust's original delegates this to a
// DatabaseField trait implemented per concrete type; Go has no such
// trait to call through, so this is a direct kind-based table instead.
func ColumnTypeFor(t reflect.Type) ColumnType {
	switch t.Kind() {
	case reflect.Bool:
		return ColumnTypeBool
	case reflect.Int8, reflect.Int16, reflect.Uint8, reflect.Uint16:
		return ColumnTypeSmallInt
	case reflect.Int, reflect.Int32, reflect.Uint, reflect.Uint32:
		return ColumnTypeInt
	case reflect.Int64, reflect.Uint64:
		return ColumnTypeBigInt
	case reflect.Float32:
		return ColumnTypeFloat32
	case reflect.Float64:
		return ColumnTypeFloat64
	case reflect.String:
		return ColumnTypeString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ColumnTypeBytes
		}
		return ColumnTypeUnknown
	default:
		if t.PkgPath() == "time" && t.Name() == "Time" {
			return ColumnTypeTimestamp
		}
		return ColumnTypeUnknown
	}
}

// OnDelete and OnUpdate referential actions for a foreign key.
type ReferentialAction int

const (
	Restrict ReferentialAction = iota
	Cascade
	SetNull
)

func (a ReferentialAction) String() string {
	switch a {
	case Cascade:
		return "Cascade"
	case SetNull:
		return "SetNull"
	default:
		return "Restrict"
	}
}

// ForeignKeySpec describes a foreign key target, rendered by the builder's
// ForeignKey() call.
type ForeignKeySpec struct {
	ToTable    string
	ToColumn   string
	OnDelete   ReferentialAction
	OnUpdate   ReferentialAction
}

// Field is a single column declaration within a CreateModel or AddField
// operation. The rendering order of its builder calls is fixed: Auto,
// PrimaryKey, ForeignKey, then the unconditional Nullable, then Unique —
// matching the order the original proc-macro codegen emits them in, so
// that regenerating an unchanged model produces byte-identical source.
type Field struct {
	ColumnName string
	Type       ColumnType
	auto       bool
	primaryKey bool
	foreignKey *ForeignKeySpec
	nullable   bool
	unique     bool
}

// NewField starts a Field builder for the given column and database type.
func NewField(columnName string, t ColumnType) *Field {
	return &Field{ColumnName: columnName, Type: t}
}

func (f *Field) Auto() *Field {
	f.auto = true
	return f
}

func (f *Field) PrimaryKey() *Field {
	f.primaryKey = true
	return f
}

func (f *Field) ForeignKey(spec ForeignKeySpec) *Field {
	f.foreignKey = &spec
	return f
}

func (f *Field) Nullable(v bool) *Field {
	f.nullable = v
	return f
}

func (f *Field) Unique() *Field {
	f.unique = true
	return f
}

// Render produces the Go source expression for this field, in the fixed
// builder-call order: Auto, PrimaryKey, ForeignKey, Nullable, Unique.
func (f *Field) Render() string {
	s := fmt.Sprintf("schema.NewField(%q, schema.ColumnType%s)", f.ColumnName, f.Type)
	if f.auto {
		s += ".Auto()"
	}
	if f.primaryKey {
		s += ".PrimaryKey()"
	}
	if f.foreignKey != nil {
		s += fmt.Sprintf(".ForeignKey(schema.ForeignKeySpec{ToTable: %q, ToColumn: %q, OnDelete: schema.%s, OnUpdate: schema.%s})",
			f.foreignKey.ToTable, f.foreignKey.ToColumn, f.foreignKey.OnDelete, f.foreignKey.OnUpdate)
	}
	s += fmt.Sprintf(".Nullable(%t)", f.nullable)
	if f.unique {
		s += ".Unique()"
	}
	return s
}

// Operation is a single schema change within a migration.
type Operation struct {
	kind      string // "CreateModel" | "AddField"
	TableName string
	ModelType string
	Fields    []*Field // all fields for CreateModel, exactly one for AddField
}

// CreateModelOp builds an operation that creates a new table for a model.
func CreateModelOp(tableName, modelType string, fields []*Field) *Operation {
	return &Operation{kind: "CreateModel", TableName: tableName, ModelType: modelType, Fields: fields}
}

// AddFieldOp builds an operation that adds a single column to an existing
// table.
func AddFieldOp(tableName, modelType string, field *Field) *Operation {
	return &Operation{kind: "AddField", TableName: tableName, ModelType: modelType, Fields: []*Field{field}}
}

// Kind reports whether this is a "CreateModel" or "AddField" operation.
func (o *Operation) Kind() string { return o.kind }

// Render produces the Go source expression for this operation.
func (o *Operation) Render() string {
	switch o.kind {
	case "CreateModel":
		rendered := make([]string, len(o.Fields))
		for i, f := range o.Fields {
			rendered[i] = f.Render()
		}
		fieldList := ""
		for _, r := range rendered {
			fieldList += "\n\t\t" + r + ","
		}
		return fmt.Sprintf("schema.CreateModelOp(%q, %q, []*schema.Field{%s\n\t})", o.TableName, o.ModelType, fieldList)
	case "AddField":
		return fmt.Sprintf("schema.AddFieldOp(%q, %q, %s)", o.TableName, o.ModelType, o.Fields[0].Render())
	default:
		return fmt.Sprintf("/* unknown operation kind %q */", o.kind)
	}
}

// Dependency is an edge a migration declares on another migration or on a
// model becoming available before this migration runs.
type Dependency struct {
	kind    string // "Migration" | "Model"
	AppName string
	Name    string // migration name for kind == "Migration", table name for kind == "Model"
}

// OnMigration declares a dependency on a specific prior migration.
func OnMigration(appName, name string) Dependency {
	return Dependency{kind: "Migration", AppName: appName, Name: name}
}

// OnModel declares a dependency on a model becoming available, used when a
// foreign key targets a table this migration's own operations don't
// create.
func OnModel(appName, tableName string) Dependency {
	return Dependency{kind: "Model", AppName: appName, Name: tableName}
}

// Render produces the Go source expression for this dependency.
func (d Dependency) Render() string {
	switch d.kind {
	case "Migration":
		return fmt.Sprintf("schema.OnMigration(%q, %q)", d.AppName, d.Name)
	case "Model":
		return fmt.Sprintf("schema.OnModel(%q, %q)", d.AppName, d.Name)
	default:
		return fmt.Sprintf("/* unknown dependency kind %q */", d.kind)
	}
}
