// Package modfile reads the module directive out of a go.mod file. It plays
// the part Cargo.toml's package.name plays in the original tool: recovering
// the current module's import path, used as the app name stamped into
// generated migrations.
package modfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadModulePath reads the module directive from the go.mod file located at
// dir/go.mod and returns its value, e.g. "github.com/acme/widgets".
func ReadModulePath(dir string) (string, error) {
	path := filepath.Join(dir, "go.mod")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("modfile: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		module := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		module = strings.Trim(module, `"`)
		if module == "" {
			return "", fmt.Errorf("modfile: %s: empty module directive", path)
		}
		return module, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("modfile: read %s: %w", path, err)
	}
	return "", fmt.Errorf("modfile: %s: no module directive found", path)
}

// AppName derives the short app name used as a migration's AppName from a
// module path: the last path element, e.g. "github.com/acme/widgets" ->
// "widgets".
func AppName(modulePath string) string {
	if modulePath == "" {
		return ""
	}
	parts := strings.Split(modulePath, "/")
	return parts[len(parts)-1]
}
