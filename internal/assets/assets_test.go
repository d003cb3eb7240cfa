package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "default", wantErr: false},
		{name: "dash and digits", input: "paper-2", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "traversal", input: "..", wantErr: true},
		{name: "extension", input: "default.css", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) error = %v, want ErrInvalidAssetName", tt.input, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Embedded styles
// ---------------------------------------------------------------------------

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	css, err := loader.LoadStyle(DefaultStyle)
	if err != nil {
		t.Fatalf("LoadStyle(%q) unexpected error: %v", DefaultStyle, err)
	}
	if !strings.Contains(css, ".math-block") || !strings.Contains(css, "overflow-x: auto") {
		t.Errorf("default style should make math blocks scroll horizontally")
	}

	if _, err := loader.LoadStyle("nonexistent"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(nonexistent) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadStyle("../default"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(../default) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestStyleNames(t *testing.T) {
	t.Parallel()

	names := StyleNames()
	for _, want := range []string{"default", "minimal"} {
		if !slices.Contains(names, want) {
			t.Errorf("StyleNames() = %v, want to contain %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("StyleNames() = %v, want sorted", names)
	}
}

// ---------------------------------------------------------------------------
// Filesystem styles
// ---------------------------------------------------------------------------

// writeStyle creates {dir}/styles/{name}.css.
func writeStyle(t *testing.T, dir, name, css string) {
	t.Helper()

	stylesDir := filepath.Join(dir, "styles")
	if err := os.MkdirAll(stylesDir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stylesDir, name+".css"), []byte(css), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestNewFilesystemLoader_InvalidBasePath(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing"), file} {
		if _, err := NewFilesystemLoader(path); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(%q) error = %v, want ErrInvalidBasePath", path, err)
		}
	}
}

func TestFilesystemLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStyle(t, dir, "paper", "body{color:red}")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() unexpected error: %v", err)
	}

	css, err := loader.LoadStyle("paper")
	if err != nil {
		t.Fatalf("LoadStyle(paper) unexpected error: %v", err)
	}
	if css != "body{color:red}" {
		t.Errorf("LoadStyle(paper) = %q, want file content", css)
	}

	if _, err := loader.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) error = %v, want ErrStyleNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.css"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(dir, "styles", "leak.css")); err != nil {
		t.Fatal(err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() unexpected error: %v", err)
	}
	if _, err := loader.LoadStyle("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(leak) error = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

func TestAssetResolver_LoadStyle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStyle(t, dir, "default", "/* custom default */")

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() unexpected error: %v", err)
	}
	if !resolver.HasCustomLoader() {
		t.Error("HasCustomLoader() = false, want true")
	}

	css, err := resolver.LoadStyle("default")
	if err != nil {
		t.Fatalf("LoadStyle(default) unexpected error: %v", err)
	}
	if css != "/* custom default */" {
		t.Errorf("LoadStyle(default) = %q, want custom override", css)
	}

	css, err = resolver.LoadStyle("minimal")
	if err != nil {
		t.Fatalf("LoadStyle(minimal) unexpected error: %v", err)
	}
	if !strings.Contains(css, ".math-block") {
		t.Errorf("LoadStyle(minimal) should fall back to the embedded style")
	}

	if _, err := resolver.LoadStyle("a.b"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(a.b) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestAssetResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	resolver, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver(\"\") unexpected error: %v", err)
	}
	if resolver.HasCustomLoader() {
		t.Error("HasCustomLoader() = true, want false")
	}
	if _, err := resolver.LoadStyle(DefaultStyle); err != nil {
		t.Errorf("LoadStyle(default) unexpected error: %v", err)
	}
}

func TestNewAssetResolver_InvalidPath(t *testing.T) {
	t.Parallel()

	if _, err := NewAssetResolver(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewAssetResolver(missing) error = %v, want ErrInvalidBasePath", err)
	}
}
