// Package assets provides the CSS styles applied to rendered documents.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in styles)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// Custom directories hold styles as {basePath}/styles/{name}.css, so a user
// can override "default" while keeping the other built-in styles.
//
// # Security
//
// Style names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
