// Package render turns an assembled migration into Go source: the
// migration file itself (dependency/operation declarations plus the
// frozen model snapshots it carries forward) and the migrations-index
// module that lists every migration belonging to an app. Rendered with
// text/template and gofmt'd with go/format.Source — the idiomatic Go
// code-generation pairing, used in place of the original's token-stream
// macro expansion since Go has no equivalent to quote!/proc_macro2.
package render

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"time"

	"makemigrations/internal/model"
	"makemigrations/schema"
)

const header = `// Code generated by makemigrations. DO NOT EDIT.
// Generated {{.Timestamp}}.
`

var migrationTemplate = template.Must(template.New("migration").Parse(header + `
package {{.Name}}

import (
	"makemigrations/schema"
{{- range .Imports}}
	{{printf "%q" .}}
{{- end}}
)

// AppName and MigrationName identify this migration to the migration
// index; Dependencies and Operations are consumed by the runtime
// migration executor.
const (
	AppName       = {{printf "%q" .AppName}}
	MigrationName = {{printf "%q" .Name}}
)

var Dependencies = []schema.Dependency{
{{- range .Dependencies}}
	{{.Render}},
{{- end}}
}

var Operations = []*schema.Operation{
{{- range .Operations}}
	{{.Render}},
{{- end}}
}
{{range .FrozenModels}}
//model(model_type="migration", table_name={{printf "%q" .TableName}})
type {{.Name}} struct {
{{- range .FieldDecls}}
	{{.}}
{{- end}}
}
{{end}}`))

var indexTemplate = template.Must(template.New("index").Parse(header + `
package migrations

// MIGRATIONS lists every migration belonging to this app, in the order
// the migration index resolved them.
var MIGRATIONS = []string{
{{- range .Names}}
	{{printf "%q" .}},
{{- end}}
}
`))

// frozenModelView is the template-facing shape of one frozen snapshot.
type frozenModelView struct {
	Name       string
	TableName  string
	FieldDecls []string
}

type migrationView struct {
	Timestamp    string
	AppName      string
	Name         string
	Dependencies []schema.Dependency
	Operations   []*schema.Operation
	FrozenModels []frozenModelView
	Imports      []string
}

// Migration renders one migration's Go source file. modulePath and
// migrationsDirName are used to compute the import path of any earlier
// migration this one's frozen models reference by foreign key but didn't
// itself freeze; owners maps a table name to the migration that most
// recently froze it (internal/migindex.Index.Owners), as of before this
// migration is added to the index. now is the timestamp stamped into the
// generated header comment.
func Migration(m model.Migration, modulePath, migrationsDirName string, owners map[string]string, now time.Time) ([]byte, error) {
	view := migrationView{
		Timestamp: now.UTC().Format("2006-01-02T15:04:05Z"),
		AppName:   m.AppName,
		Name:      m.Name,
	}
	for _, d := range m.Dependencies {
		view.Dependencies = append(view.Dependencies, toSchemaDependency(d))
	}
	for _, op := range m.Operations {
		view.Operations = append(view.Operations, toSchemaOperation(op))
	}

	qualify := func(table string) string {
		if _, ownFreeze := m.FrozenModels[table]; ownFreeze {
			return ""
		}
		owner, ok := owners[table]
		if !ok || owner == m.Name {
			return ""
		}
		return owner
	}

	tables := make([]string, 0, len(m.FrozenModels))
	for table := range m.FrozenModels {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	imports := map[string]bool{}
	for _, table := range tables {
		fm := m.FrozenModels[table]
		decls, referenced := fieldDecls(fm.Fields, qualify)
		for _, pkg := range referenced {
			imports[migrationImportPath(modulePath, migrationsDirName, pkg)] = true
		}
		view.FrozenModels = append(view.FrozenModels, frozenModelView{
			Name:       fm.Name,
			TableName:  fm.TableName,
			FieldDecls: decls,
		})
	}
	for path := range imports {
		view.Imports = append(view.Imports, path)
	}
	sort.Strings(view.Imports)

	var buf bytes.Buffer
	if err := migrationTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render: migration %s.%s: %w", m.AppName, m.Name, err)
	}
	return gofmt(buf.Bytes())
}

// migrationImportPath computes the import path of another migration's
// package, given the target project's module path and its configured
// migrations directory name.
func migrationImportPath(modulePath, migrationsDirName, migrationName string) string {
	return modulePath + "/" + migrationsDirName + "/" + migrationName
}

// Index renders the migrations-index module listing every migration name
// belonging to one app, in the order supplied (the migration index's
// topological order).
func Index(names []string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, struct {
		Timestamp string
		Names     []string
	}{now.UTC().Format("2006-01-02T15:04:05Z"), names})
	if err != nil {
		return nil, fmt.Errorf("render: index: %w", err)
	}
	return gofmt(buf.Bytes())
}

func gofmt(src []byte) ([]byte, error) {
	formatted, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("render: gofmt: %w", err)
	}
	return formatted, nil
}

func toSchemaField(f model.Field) *schema.Field {
	sf := schema.NewField(f.ColumnName, f.ColumnType)
	if f.Auto {
		sf = sf.Auto()
	}
	if f.PrimaryKey {
		sf = sf.PrimaryKey()
	}
	if f.ForeignKey != nil {
		sf = sf.ForeignKey(schema.ForeignKeySpec{
			ToTable:  f.ForeignKey.ToTable,
			ToColumn: f.ForeignKey.ToColumn,
			OnDelete: schema.Restrict,
			OnUpdate: schema.Restrict,
		})
	}
	sf = sf.Nullable(f.Nullable)
	if f.Unique {
		sf = sf.Unique()
	}
	return sf
}

func toSchemaOperation(op model.Operation) *schema.Operation {
	fields := make([]*schema.Field, len(op.Fields))
	for i, f := range op.Fields {
		fields[i] = toSchemaField(f)
	}
	if op.Kind == model.OpAddField {
		return schema.AddFieldOp(op.TableName, op.ModelType, fields[0])
	}
	return schema.CreateModelOp(op.TableName, op.ModelType, fields)
}

func toSchemaDependency(d model.Dependency) schema.Dependency {
	if d.Kind == model.DepModel {
		return schema.OnModel(d.AppName, d.Name)
	}
	return schema.OnMigration(d.AppName, d.Name)
}

// fieldDecls renders each field of a frozen model as a Go struct field
// declaration line, in the field's original order, alongside the name of
// every other migration package a foreign-key field's type had to be
// qualified with.
func fieldDecls(fields []model.Field, qualify func(table string) string) ([]string, []string) {
	decls := make([]string, len(fields))
	var referenced []string
	for i, f := range fields {
		decl, pkg := fieldDecl(f, qualify)
		decls[i] = decl
		if pkg != "" {
			referenced = append(referenced, pkg)
		}
	}
	return decls, referenced
}

func fieldDecl(f model.Field, qualify func(table string) string) (string, string) {
	goType, pkg := goTypeFor(f, qualify)
	tag := fieldTagFor(f)
	if tag != "" {
		return fmt.Sprintf("%s %s `%s`", f.FieldName, goType, tag), pkg
	}
	return fmt.Sprintf("%s %s", f.FieldName, goType), pkg
}

// goTypeFor returns a field's Go type and, for a foreign key whose target
// table wasn't frozen by this same migration, the name of the migration
// package the target type must be qualified with.
func goTypeFor(f model.Field, qualify func(table string) string) (string, string) {
	switch {
	case f.Auto:
		return fmt.Sprintf("schema.Auto[%s]", primitiveGoType(f.ResolvedType)), ""
	case f.ForeignKey != nil:
		name := exportedTableName(f.ForeignKey.ToTable)
		if pkg := qualify(f.ForeignKey.ToTable); pkg != "" {
			return fmt.Sprintf("schema.ForeignKey[%s._%s]", pkg, name), pkg
		}
		return fmt.Sprintf("schema.ForeignKey[_%s]", name), ""
	default:
		t := primitiveGoType(f.ResolvedType)
		if f.Nullable {
			return "*" + t, ""
		}
		return t, ""
	}
}

// primitiveGoType returns the Go spelling used for a field's type in a
// generated frozen struct: the resolved type string unchanged, or "any"
// when it is empty. No import is emitted for a resolved type that carries
// a package path.
func primitiveGoType(resolved string) string {
	if resolved == "" {
		return "any"
	}
	return resolved
}

func exportedTableName(table string) string {
	parts := strings.Split(table, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func fieldTagFor(f model.Field) string {
	var flags []string
	if f.PrimaryKey {
		flags = append(flags, "primary_key")
	}
	if f.Unique {
		flags = append(flags, "unique")
	}
	if len(flags) == 0 {
		return ""
	}
	return fmt.Sprintf(`model:"%s"`, strings.Join(flags, ","))
}
