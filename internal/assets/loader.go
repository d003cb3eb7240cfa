package assets

// DefaultStyle is the name of the built-in stylesheet.
const DefaultStyle = "default"

// StyleLoader loads CSS styles by name (without the .css extension).
// Implementations return ErrStyleNotFound for unknown names and
// ErrInvalidAssetName for names that are not plain identifiers.
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}
