package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// rewritableAttrs lists, per element, the attribute holding a local resource.
var rewritableAttrs = map[string]string{
	"img": "src",
	"a":   "href",
}

// RewriteRelativePaths makes relative image and link paths in an HTML document
// absolute file:// URLs under sourceDir, so the document still resolves them
// once copied to a temporary file for PDF rendering.
// Paths escaping sourceDir are left untouched. An empty sourceDir is a no-op.
func RewriteRelativePaths(document, sourceDir string) (string, error) {
	if sourceDir == "" {
		return document, nil
	}

	base, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	for n := range root.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		key, ok := rewritableAttrs[n.Data]
		if !ok {
			continue
		}
		for i := range n.Attr {
			if n.Attr[i].Key != key || n.Attr[i].Namespace != "" {
				continue
			}
			if resolved, ok := resolveLocalPath(n.Attr[i].Val, base); ok {
				n.Attr[i].Val = resolved
			}
		}
	}

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// resolveLocalPath returns the file:// URL for a relative path under base.
func resolveLocalPath(ref, base string) (string, bool) {
	if !isRelativePath(ref) {
		return "", false
	}

	abs := filepath.Join(base, filepath.FromSlash(ref))
	if !isPathUnderDir(abs, base) {
		return "", false
	}
	return pathToFileURL(abs), true
}

// isRelativePath reports whether ref names a file relative to the document.
// URLs with a scheme, protocol-relative URLs, anchors and absolute paths are not.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") {
		return false
	}
	if u, err := url.Parse(ref); err != nil || u.Scheme != "" {
		return false
	}
	return true
}

// isPathUnderDir checks if absPath is dir or below it.
func isPathUnderDir(absPath, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(absPath))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
