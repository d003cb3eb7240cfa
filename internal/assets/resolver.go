package assets

import "errors"

// AssetResolver loads styles from a custom directory first, falling back
// to the embedded styles when a style is not found there.
type AssetResolver struct {
	custom   StyleLoader // nil if no custom path configured
	embedded StyleLoader
}

// NewAssetResolver creates an AssetResolver.
// An empty customBasePath means embedded styles only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}
	return resolver, nil
}

// LoadStyle loads a CSS style, trying the custom loader first if configured.
// Only not-found errors fall through to the embedded styles; validation and
// I/O errors are returned as is.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}

	content, err := r.custom.LoadStyle(name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrStyleNotFound) {
		return "", err
	}
	return r.embedded.LoadStyle(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ StyleLoader = (*AssetResolver)(nil)
