package driven

// ConfigStore holds user settings as flat dotted keys such as "llm.model".
// Typed getters return the zero value for missing keys and for values of
// another type, so callers check Get when a stored zero is meaningful.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64

	// Set stores value under key. Durable stores persist before returning
	// and leave the previous value in place when persisting fails.
	Set(key string, value any) error

	// Unset removes key so that readers fall back to the built-in default.
	// Removing a missing key is not an error.
	Unset(key string) error

	// Path reports where settings live, for display.
	Path() string
}
