// Package resolve implements the symbol resolver the generator needs to
// normalize a field's type expression into a fully-qualified form before
// comparing it across files or against a frozen migration snapshot.
// Unresolved short names (a local "Post" versus an imported "models.Post")
// would otherwise produce spurious non-equalities during diffing.
package resolve

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"
)

var predeclaredTypes = map[string]bool{
	"bool": true, "string": true, "error": true, "any": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
	"float32": true, "float64": true,
	"complex64": true, "complex128": true,
}

// Resolver resolves identifiers against a single file's import list and
// its own package's import path.
type Resolver struct {
	packagePath string
	imports     map[string]string // local name -> import path
	fset        *token.FileSet
}

// New builds a Resolver for a file belonging to packagePath (the current
// package's own fully-qualified import path).
func New(packagePath string, file *ast.File) *Resolver {
	imports := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		imports[importLocalName(imp, path)] = path
	}
	return &Resolver{packagePath: packagePath, imports: imports, fset: token.NewFileSet()}
}

func importLocalName(imp *ast.ImportSpec, path string) string {
	if imp.Name != nil {
		return imp.Name.Name
	}
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

// Resolve returns the fully-qualified string form of a type expression:
// local named types get this resolver's package path prefixed, imported
// types get their import's resolved path prefixed, and compound types
// (pointers, slices, generic instantiations) are resolved recursively.
func (r *Resolver) Resolve(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		if predeclaredTypes[e.Name] {
			return e.Name
		}
		return r.packagePath + "." + e.Name
	case *ast.SelectorExpr:
		if pkgIdent, ok := e.X.(*ast.Ident); ok {
			if path, ok := r.imports[pkgIdent.Name]; ok {
				return path + "." + e.Sel.Name
			}
			return pkgIdent.Name + "." + e.Sel.Name
		}
		return r.fallback(expr)
	case *ast.StarExpr:
		return "*" + r.Resolve(e.X)
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + r.Resolve(e.Elt)
		}
		return r.fallback(expr)
	case *ast.IndexExpr:
		return r.Resolve(e.X) + "[" + r.Resolve(e.Index) + "]"
	case *ast.IndexListExpr:
		parts := make([]string, len(e.Indices))
		for i, idx := range e.Indices {
			parts[i] = r.Resolve(idx)
		}
		return r.Resolve(e.X) + "[" + strings.Join(parts, ",") + "]"
	default:
		return r.fallback(expr)
	}
}

// fallback prints an expression using go/printer for shapes this resolver
// does not give special qualification treatment to (maps, interfaces,
// fixed-size arrays, function types). These are rare in model fields and
// their unqualified text is still stable for structural comparison within
// a single generator run.
func (r *Resolver) fallback(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, r.fset, expr); err != nil {
		return "<unresolved>"
	}
	return buf.String()
}

// GenericBase returns the resolved base type and resolved type arguments of
// a generic instantiation expression (schema.Auto[uint64],
// schema.ForeignKey[Author]), and false if expr is not one.
func GenericBase(r *Resolver, expr ast.Expr) (base string, args []string, ok bool) {
	switch e := expr.(type) {
	case *ast.IndexExpr:
		return r.Resolve(e.X), []string{r.Resolve(e.Index)}, true
	case *ast.IndexListExpr:
		resolvedArgs := make([]string, len(e.Indices))
		for i, idx := range e.Indices {
			resolvedArgs[i] = r.Resolve(idx)
		}
		return r.Resolve(e.X), resolvedArgs, true
	default:
		return "", nil, false
	}
}
