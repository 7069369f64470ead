// Package loader reconstructs the migration corpus migindex needs from
// the migration files a previous generator run wrote to disk: it re-parses
// each migration's Dependencies/Operations declarations and reuses
// internal/extract to recover its frozen model snapshots (which are
// themselves ordinary directive-carrying structs extract already knows
// how to read). This is the Go-native analog of cot-cli loading compiled
// migration modules back through the same macro machinery that wrote
// them — here it is the same AST reader on both ends instead.
package loader

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strconv"

	"makemigrations/internal/extract"
	"makemigrations/internal/model"
	"makemigrations/internal/scanner"
	"makemigrations/schema"
)

const indexFileName = "migrations_index.go"

// Load reads every previously generated migration file in dir and
// reconstructs its model.Migration representation. modulePath is the
// current module's import path, used to compute the scanned package's
// import path the same way a fresh scan would.
func Load(dir, modulePath, appName string) ([]model.Migration, error) {
	scan, err := scanner.Scan(dir, modulePath)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	var migrations []model.Migration
	for _, f := range scan.Files {
		if filepath.Base(f.Path) == indexFileName {
			continue
		}

		m, err := loadMigrationFile(scan, f, appName)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", f.Path, err)
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

func loadMigrationFile(scan *scanner.Result, f scanner.File, appName string) (model.Migration, error) {
	single := &scanner.Result{Fset: scan.Fset, Files: []scanner.File{f}}

	frozenModels, err := extract.Models(single, appName)
	if err != nil {
		return model.Migration{}, err
	}

	m := model.Migration{
		AppName:      appName,
		FrozenModels: map[string]model.Model{},
	}
	for _, fm := range frozenModels {
		if fm.Kind == model.KindMigration {
			m.FrozenModels[fm.TableName] = fm
		}
	}

	if name, ok := stringConst(f.AST, "MigrationName"); ok {
		m.Name = name
	} else {
		return model.Migration{}, fmt.Errorf("no MigrationName constant found")
	}
	if app, ok := stringConst(f.AST, "AppName"); ok {
		m.AppName = app
	}

	if lit, ok := compositeVar(f.AST, "Dependencies"); ok {
		for _, elt := range lit.Elts {
			call, ok := elt.(*ast.CallExpr)
			if !ok {
				continue
			}
			dep, ok := parseDependency(call)
			if ok {
				m.Dependencies = append(m.Dependencies, dep)
			}
		}
	}

	if lit, ok := compositeVar(f.AST, "Operations"); ok {
		for _, elt := range lit.Elts {
			call, ok := elt.(*ast.CallExpr)
			if !ok {
				continue
			}
			op, ok := parseOperation(call)
			if ok {
				m.Operations = append(m.Operations, op)
			}
		}
	}

	return m, nil
}

func stringConst(file *ast.File, name string) (string, bool) {
	var value string
	var found bool
	ast.Inspect(file, func(n ast.Node) bool {
		genDecl, ok := n.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			return true
		}
		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, ident := range valueSpec.Names {
				if ident.Name != name || i >= len(valueSpec.Values) {
					continue
				}
				if lit, ok := valueSpec.Values[i].(*ast.BasicLit); ok && lit.Kind == token.STRING {
					if unquoted, err := strconv.Unquote(lit.Value); err == nil {
						value, found = unquoted, true
					}
				}
			}
		}
		return true
	})
	return value, found
}

func compositeVar(file *ast.File, name string) (*ast.CompositeLit, bool) {
	var result *ast.CompositeLit
	var found bool
	ast.Inspect(file, func(n ast.Node) bool {
		genDecl, ok := n.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			return true
		}
		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, ident := range valueSpec.Names {
				if ident.Name != name || i >= len(valueSpec.Values) {
					continue
				}
				if lit, ok := valueSpec.Values[i].(*ast.CompositeLit); ok {
					result, found = lit, true
				}
			}
		}
		return true
	})
	return result, found
}

// calleeName returns the selector name of a call like schema.OnMigration,
// i.e. "OnMigration".
func calleeName(call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	return sel.Sel.Name, true
}

func stringArg(call *ast.CallExpr, i int) (string, bool) {
	if i >= len(call.Args) {
		return "", false
	}
	lit, ok := call.Args[i].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	unquoted, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return unquoted, true
}

func parseDependency(call *ast.CallExpr) (model.Dependency, bool) {
	name, ok := calleeName(call)
	if !ok || len(call.Args) != 2 {
		return model.Dependency{}, false
	}
	appName, ok1 := stringArg(call, 0)
	value, ok2 := stringArg(call, 1)
	if !ok1 || !ok2 {
		return model.Dependency{}, false
	}
	switch name {
	case "OnMigration":
		return model.Dependency{Kind: model.DepMigration, AppName: appName, Name: value}, true
	case "OnModel":
		return model.Dependency{Kind: model.DepModel, AppName: appName, Name: value}, true
	default:
		return model.Dependency{}, false
	}
}

func parseOperation(call *ast.CallExpr) (model.Operation, bool) {
	name, ok := calleeName(call)
	if !ok {
		return model.Operation{}, false
	}
	switch name {
	case "CreateModelOp":
		if len(call.Args) != 3 {
			return model.Operation{}, false
		}
		table, ok1 := stringArg(call, 0)
		modelType, ok2 := stringArg(call, 1)
		fieldsLit, ok3 := call.Args[2].(*ast.CompositeLit)
		if !ok1 || !ok2 || !ok3 {
			return model.Operation{}, false
		}
		var fields []model.Field
		for _, elt := range fieldsLit.Elts {
			if fieldCall, ok := unwrapCall(elt); ok {
				if f, ok := parseField(fieldCall); ok {
					fields = append(fields, f)
				}
			}
		}
		return model.Operation{Kind: model.OpCreateModel, TableName: table, ModelType: modelType, Fields: fields}, true

	case "AddFieldOp":
		if len(call.Args) != 3 {
			return model.Operation{}, false
		}
		table, ok1 := stringArg(call, 0)
		modelType, ok2 := stringArg(call, 1)
		fieldCall, ok3 := unwrapCall(call.Args[2])
		if !ok1 || !ok2 || !ok3 {
			return model.Operation{}, false
		}
		f, ok := parseField(fieldCall)
		if !ok {
			return model.Operation{}, false
		}
		return model.Operation{Kind: model.OpAddField, TableName: table, ModelType: modelType, Fields: []model.Field{f}}, true

	default:
		return model.Operation{}, false
	}
}

// unwrapCall returns expr as a call expression, and false if it is not
// one. Rendered fields are plain *schema.Field-returning call chains; no
// other expression form (such as a unary '&') is unwrapped.
func unwrapCall(expr ast.Expr) (*ast.CallExpr, bool) {
	call, ok := expr.(*ast.CallExpr)
	return call, ok
}

// parseField walks a schema.NewField(...).Auto().PrimaryKey()... method
// chain from the outermost call back to the NewField base call,
// reconstructing the field it describes.
func parseField(call *ast.CallExpr) (model.Field, bool) {
	var f model.Field
	current := call

	for {
		sel, ok := current.Fun.(*ast.SelectorExpr)
		if !ok {
			return model.Field{}, false
		}

		switch sel.Sel.Name {
		case "NewField":
			col, ok1 := stringArg(current, 0)
			if !ok1 {
				return model.Field{}, false
			}
			f.ColumnName = col
			f.FieldName = col
			if len(current.Args) == 2 {
				if sel, ok := current.Args[1].(*ast.SelectorExpr); ok {
					f.ColumnType = columnTypeFromIdent(sel.Sel.Name)
				}
			}
			return f, true
		case "Auto":
			f.Auto = true
		case "PrimaryKey":
			f.PrimaryKey = true
		case "Unique":
			f.Unique = true
		case "Nullable":
			if len(current.Args) == 1 {
				if ident, ok := current.Args[0].(*ast.Ident); ok {
					f.Nullable = ident.Name == "true"
				}
			}
		case "ForeignKey":
			if spec, ok := parseForeignKeySpecArg(current); ok {
				f.ForeignKey = spec
			}
		}

		next, ok := current.Fun.(*ast.SelectorExpr).X.(*ast.CallExpr)
		if !ok {
			return model.Field{}, false
		}
		current = next
	}
}

func parseForeignKeySpecArg(call *ast.CallExpr) (*model.ForeignKeySpec, bool) {
	if len(call.Args) != 1 {
		return nil, false
	}
	lit, ok := call.Args[0].(*ast.CompositeLit)
	if !ok {
		return nil, false
	}
	spec := &model.ForeignKeySpec{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		switch key.Name {
		case "ToTable":
			if s, ok := literalString(kv.Value); ok {
				spec.ToTable = s
			}
		case "ToColumn":
			if s, ok := literalString(kv.Value); ok {
				spec.ToColumn = s
			}
		}
	}
	return spec, true
}

func literalString(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	return s, err == nil
}

func columnTypeFromIdent(name string) schema.ColumnType {
	switch name {
	case "ColumnTypeBool":
		return schema.ColumnTypeBool
	case "ColumnTypeSmallInt":
		return schema.ColumnTypeSmallInt
	case "ColumnTypeInt":
		return schema.ColumnTypeInt
	case "ColumnTypeBigInt":
		return schema.ColumnTypeBigInt
	case "ColumnTypeFloat32":
		return schema.ColumnTypeFloat32
	case "ColumnTypeFloat64":
		return schema.ColumnTypeFloat64
	case "ColumnTypeString":
		return schema.ColumnTypeString
	case "ColumnTypeText":
		return schema.ColumnTypeText
	case "ColumnTypeBytes":
		return schema.ColumnTypeBytes
	case "ColumnTypeTimestamp":
		return schema.ColumnTypeTimestamp
	default:
		return schema.ColumnTypeUnknown
	}
}
