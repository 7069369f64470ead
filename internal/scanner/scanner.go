// Package scanner walks a source tree and parses every Go source file in
// it, preserving doc comments so the model extractor can read directive
// comments above type declarations. It is the Go-native stand-in for the
// original tool's glob-based Rust source walk.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// File is one parsed source file, along with the fileset needed to resolve
// its node positions.
type File struct {
	// Path is the file's path relative to the scan root.
	Path        string
	PackageName string
	ImportPath  string // modulePath joined with the file's directory relative to the scan root, slash-separated
	AST         *ast.File
}

// Result is the full output of a scan: every parsed file, sharing one
// token.FileSet.
type Result struct {
	Fset  *token.FileSet
	Files []File
}

var skipDirNames = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
}

// Scan walks root recursively and parses every non-test .go file it finds,
// skipping dotfiles/dot-directories and vendor trees. modulePath is the
// current module's import path (from internal/modfile), used to compute
// each file's package import path for the symbol resolver.
func Scan(root, modulePath string) (*Result, error) {
	fset := token.NewFileSet()
	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirNames[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		parsed, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("scanner: parse %s: %w", path, err)
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("scanner: relativize %s: %w", path, err)
		}
		rel := filepath.Dir(relPath)
		importPath := modulePath
		if rel != "." {
			importPath = modulePath + "/" + filepath.ToSlash(rel)
		}

		files = append(files, File{
			Path:        relPath,
			PackageName: parsed.Name.Name,
			ImportPath:  importPath,
			AST:         parsed,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return &Result{Fset: fset, Files: files}, nil
}
