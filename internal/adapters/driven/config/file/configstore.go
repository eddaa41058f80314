package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/ports/driven"
)

const (
	// ConfigFile is the file name inside the config directory.
	ConfigFile = "config.toml"

	// EnvPrefix starts the environment variable that overrides a key:
	// chunking.size is read from LEARNBOX_CHUNKING_SIZE.
	EnvPrefix = "LEARNBOX_"
)

// envAliases are conventional variables consulted after the prefixed one.
//
//nolint:gosec // G101: variable names, not credentials.
var envAliases = map[string]string{
	"embedding.api_key": "OPENAI_API_KEY",
}

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore reads config.toml into flat dot keys and writes them back as
// nested tables, so "chunking.size" is size under [chunking]. Environment
// variables shadow file values on read and are never written to the file.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
	getenv func(string) (string, bool)
}

// NewConfigStore opens config.toml in configDir, which defaults to
// ~/.learnbox and is created when missing.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".learnbox")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		path:   filepath.Join(configDir, ConfigFile),
		values: make(map[string]any),
		getenv: os.LookupEnv,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnvVar returns the override variable for key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (s *ConfigStore) override(key string) (string, bool) {
	if v, ok := s.getenv(EnvVar(key)); ok {
		return v, true
	}
	if alias, ok := envAliases[key]; ok {
		if v, ok := s.getenv(alias); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Get returns the environment override for key if one is set, else the file
// value. Overrides are strings.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.override(key); ok {
		return v, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set records value and rewrites the file. A value equal to the active
// environment override is not recorded, so saving loaded settings does not
// copy the environment to disk.
func (s *ConfigStore) Set(key string, value any) error {
	if env, ok := s.override(key); ok && fmt.Sprint(value) == env {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.write()
}

// Save rewrites the file.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// Load rereads the file. A missing file leaves the store empty.
func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.values = make(map[string]any)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", domain.ErrConfig, s.path, err)
	}

	values := make(map[string]any)
	flatten(values, "", tree)

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Path() string { return s.path }

// write encodes the values to disk. Caller holds mu.
func (s *ConfigStore) write() error {
	tree, err := nest(s.values)
	if err != nil {
		return err
	}
	raw, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", domain.ErrConfig, s.path, err)
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// flatten copies tree into dst under dot keys.
func flatten(dst map[string]any, prefix string, tree map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(dst, k, table)
			continue
		}
		dst[k] = v
	}
}

// nest is the inverse of flatten. A key that is both a value and a table
// prefix ("a" and "a.b") has no TOML form.
func nest(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)
	for key, value := range flat {
		path := strings.Split(key, ".")
		node := root
		for _, part := range path[:len(path)-1] {
			next, exists := node[part]
			if !exists {
				next = make(map[string]any)
				node[part] = next
			}
			table, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: key %q conflicts with value at %q", domain.ErrConfig, key, part)
			}
			node = table
		}

		leaf := path[len(path)-1]
		if _, isTable := node[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("%w: key %q conflicts with table", domain.ErrConfig, key)
		}
		node[leaf] = value
	}
	return root, nil
}
