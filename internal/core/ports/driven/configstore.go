package driven

// ConfigStore is a flat key/value view of the configuration file. Keys use
// dot notation matching TOML tables, e.g. "chunking.size". Values keep the
// type they were decoded or set with; callers coerce.
type ConfigStore interface {
	// Get returns the value for key and whether it is set.
	Get(key string) (any, bool)

	// Set records a value. Implementations may persist immediately.
	Set(key string, value any) error

	// Save persists every recorded value.
	Save() error

	// Path names the backing file, or a placeholder for stores without one.
	Path() string
}
