// Package extract implements the model extractor: it walks parsed source
// files looking for struct declarations carrying a model directive
// comment, classifies them, and resolves their fields into the domain
// shapes internal/model and internal/differ operate on. It plays the part
// of flareon-codegen's ModelOpts/FieldOpts and cot-cli's model-recognition
// code — translated onto Go's doc-comment and struct-tag idioms, since Go
// has no proc-macro attribute to attach to a type.
package extract

import (
	"fmt"
	"go/ast"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"makemigrations/internal/generrors"
	"makemigrations/internal/model"
	"makemigrations/internal/resolve"
	"makemigrations/internal/scanner"
	"makemigrations/schema"
)

var directivePattern = regexp.MustCompile(`^(?:\w+:)?model(?:\(([^)]*)\))?$`)

const (
	autoTypeSuffix       = ".Auto"
	foreignKeyTypeSuffix = ".ForeignKey"
)

// Models extracts every recognized model from a scan result.
func Models(scan *scanner.Result, appName string) ([]model.Model, error) {
	var models []model.Model
	for _, f := range scan.Files {
		r := resolve.New(f.ImportPath, f.AST)
		found, err := modelsInFile(f, r, appName)
		if err != nil {
			return nil, fmt.Errorf("extract: %s: %w", f.Path, err)
		}
		models = append(models, found...)
	}
	return models, nil
}

func modelsInFile(f scanner.File, r *resolve.Resolver, appName string) ([]model.Model, error) {
	var models []model.Model

	for _, decl := range f.AST.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok.String() != "type" {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}

			args, isModel := directiveArgs(declDoc(genDecl, typeSpec))
			if !isModel {
				continue
			}

			m, err := buildModel(typeSpec.Name.Name, args, structType, r, appName, f.ImportPath)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", typeSpec.Name.Name, err)
			}
			if m.Kind != model.KindInternal {
				models = append(models, m)
			}
		}
	}
	return models, nil
}

// declDoc returns the doc comment attached to a type spec, falling back to
// the enclosing GenDecl's doc comment for the common "type X struct{...}"
// single-spec form.
func declDoc(genDecl *ast.GenDecl, spec *ast.TypeSpec) *ast.CommentGroup {
	if spec.Doc != nil {
		return spec.Doc
	}
	return genDecl.Doc
}

// directiveArgs scans a doc comment for a model directive line and returns
// its parenthesized argument text (possibly empty) and whether one was
// found at all.
func directiveArgs(doc *ast.CommentGroup) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		m := directivePattern.FindStringSubmatch(text)
		if m != nil {
			return m[1], true
		}
	}
	return "", false
}

func parseDirectiveArgs(args string) map[string]string {
	result := map[string]string{}
	if strings.TrimSpace(args) == "" {
		return result
	}
	for _, part := range strings.Split(args, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		result[key] = value
	}
	return result
}

func buildModel(originalName, directiveArgs string, structType *ast.StructType, r *resolve.Resolver, appName, sourcePackage string) (model.Model, error) {
	args := parseDirectiveArgs(directiveArgs)

	kind := model.KindApplication
	switch args["model_type"] {
	case "", "application":
		kind = model.KindApplication
	case "migration":
		kind = model.KindMigration
	case "internal":
		kind = model.KindInternal
	default:
		return model.Model{}, fmt.Errorf("unrecognized model_type %q", args["model_type"])
	}

	name := originalName
	if kind == model.KindMigration {
		if !strings.HasPrefix(name, "_") {
			return model.Model{}, fmt.Errorf("migration model names must start with an underscore")
		}
	}

	tableName := args["table_name"]
	if tableName == "" {
		tableName = toSnakeCase(strings.TrimPrefix(name, "_"))
	}

	fields, err := extractFields(structType, r)
	if err != nil {
		return model.Model{}, err
	}

	if kind != model.KindInternal {
		if err := validatePrimaryKey(fields); err != nil {
			return model.Model{}, err
		}
	}

	return model.Model{
		Name:          name,
		OriginalName:  originalName,
		Kind:          kind,
		AppName:       appName,
		TableName:     tableName,
		SourcePackage: sourcePackage,
		Fields:        fields,
	}, nil
}

func validatePrimaryKey(fields []model.Field) error {
	count := 0
	for _, f := range fields {
		if f.PrimaryKey {
			count++
		}
	}
	if count > 1 {
		return generrors.ErrCompositePrimaryKey
	}
	if count == 0 {
		return generrors.ErrNoPrimaryKey
	}
	return nil
}

func extractFields(structType *ast.StructType, r *resolve.Resolver) ([]model.Field, error) {
	var fields []model.Field
	for _, astField := range structType.Fields.List {
		for _, name := range astField.Names {
			if !name.IsExported() {
				continue
			}
			f, err := buildField(name.Name, astField, r)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name.Name, err)
			}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func buildField(fieldName string, astField *ast.Field, r *resolve.Resolver) (model.Field, error) {
	tag := fieldTag(astField)

	flags := map[string]bool{}
	for _, flag := range strings.Split(tag.Get("model"), ",") {
		if flag != "" {
			flags[flag] = true
		}
	}

	columnName := tag.Get("column")
	if columnName == "" {
		columnName = toSnakeCase(fieldName)
	}

	f := model.Field{
		FieldName:  fieldName,
		ColumnName: columnName,
		PrimaryKey: flags["primary_key"] || strings.EqualFold(fieldName, "id"),
		Unique:     flags["unique"],
	}

	fieldType := astField.Type
	if base, args, ok := resolve.GenericBase(r, fieldType); ok && len(args) == 1 {
		switch {
		case strings.HasSuffix(base, autoTypeSuffix):
			f.Auto = true
			fieldType = nil
			f.ResolvedType = args[0]
		case strings.HasSuffix(base, foreignKeyTypeSuffix):
			f.ForeignKey = &model.ForeignKeySpec{ToTable: toSnakeCase(strings.TrimPrefix(lastSegment(args[0]), "_")), ToColumn: "id"}
			fieldType = nil
			f.ResolvedType = args[0]
			f.ColumnType = schema.ColumnTypeBigInt
		}
	}

	if fieldType != nil {
		resolved := r.Resolve(fieldType)
		f.Nullable = strings.HasPrefix(resolved, "*")
		f.ResolvedType = strings.TrimPrefix(resolved, "*")
		f.ColumnType = columnTypeForResolved(f.ResolvedType)
	} else if f.ForeignKey == nil {
		f.ColumnType = columnTypeForResolved(f.ResolvedType)
	}

	return f, nil
}

// columnTypeForResolved maps a resolved Go type name to a database column
// type. Unlike schema.ColumnTypeFor (which inspects a reflect.Type at
// runtime), this works from the resolved type string produced by static
// source analysis, since no field ever holds a live value at
// generation time.
func columnTypeForResolved(resolved string) schema.ColumnType {
	switch resolved {
	case "bool":
		return schema.ColumnTypeBool
	case "int8", "int16", "uint8", "uint16":
		return schema.ColumnTypeSmallInt
	case "int", "int32", "uint", "uint32":
		return schema.ColumnTypeInt
	case "int64", "uint64":
		return schema.ColumnTypeBigInt
	case "float32":
		return schema.ColumnTypeFloat32
	case "float64":
		return schema.ColumnTypeFloat64
	case "string":
		return schema.ColumnTypeString
	case "time.Time":
		return schema.ColumnTypeTimestamp
	case "[]byte":
		return schema.ColumnTypeBytes
	default:
		return schema.ColumnTypeUnknown
	}
}

func fieldTag(f *ast.Field) reflect.StructTag {
	if f.Tag == nil {
		return ""
	}
	unquoted := strings.Trim(f.Tag.Value, "`")
	return reflect.StructTag(unquoted)
}

func lastSegment(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
