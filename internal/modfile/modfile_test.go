package modfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoMod(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestReadModulePath(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "module github.com/acme/widgets\n\ngo 1.24\n")

	got, err := ReadModulePath(dir)
	if err != nil {
		t.Fatalf("ReadModulePath: %v", err)
	}
	if got != "github.com/acme/widgets" {
		t.Fatalf("ReadModulePath() = %q", got)
	}
}

func TestReadModulePathQuoted(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, `module "github.com/acme/widgets"`+"\n")

	got, err := ReadModulePath(dir)
	if err != nil {
		t.Fatalf("ReadModulePath: %v", err)
	}
	if got != "github.com/acme/widgets" {
		t.Fatalf("ReadModulePath() = %q", got)
	}
}

func TestReadModulePathMissing(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "go 1.24\n")

	if _, err := ReadModulePath(dir); err == nil {
		t.Fatal("ReadModulePath() error = nil, want error for missing module directive")
	}
}

func TestReadModulePathNoFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadModulePath(dir); err == nil {
		t.Fatal("ReadModulePath() error = nil, want error for missing go.mod")
	}
}

func TestAppName(t *testing.T) {
	cases := map[string]string{
		"github.com/acme/widgets": "widgets",
		"widgets":                 "widgets",
		"":                        "",
	}
	for in, want := range cases {
		if got := AppName(in); got != want {
			t.Errorf("AppName(%q) = %q, want %q", in, got, want)
		}
	}
}
