package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFileName is the name of the configuration file inside the config directory.
const ConfigFileName = "config.toml"

// ConfigStore keeps reshelve settings in a TOML file.
// Keys use dot notation ("schema.input"); on disk each prefix is a table:
//
//	[schema]
//	input = ["somePathPart", "name", "year", "fileName"]
//	output = ["year", "somePathPart", "name", "fileName"]
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	values   map[string]any
}

// NewConfigStore opens configDir/config.toml, or ~/.reshelve/config.toml when
// configDir is empty. A missing file yields an empty store; nothing is
// written until the first Set or Save.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		configDir = filepath.Join(home, ".reshelve")
	}

	s := &ConfigStore{filePath: filepath.Join(configDir, ConfigFileName)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	str, _ := lookup[string](s, key)
	return str
}

func (s *ConfigStore) GetBool(key string) bool {
	b, _ := lookup[bool](s, key)
	return b
}

// GetStringSlice returns a copy of the array at key. Decoded TOML arrays
// arrive as []any; their non-string elements are dropped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	switch v := val.(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				names = append(names, str)
			}
		}
		return names
	}
	return nil
}

// Set stores value under key and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.write()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// Load replaces the in-memory values with the file's contents.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.values = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", s.filePath, err)
	}

	var tables map[string]any
	if err := toml.Unmarshal(raw, &tables); err != nil {
		return fmt.Errorf("parse config %s: %w", s.filePath, err)
	}

	s.values = flattenMap(tables, "")
	return nil
}

func (s *ConfigStore) Path() string {
	return s.filePath
}

// write must be called with mu held.
func (s *ConfigStore) write() error {
	raw, err := toml.Marshal(nestMap(s.values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.filePath, raw, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", s.filePath, err)
	}
	return nil
}

func lookup[T any](s *ConfigStore, key string) (T, bool) {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(tables map[string]any, prefix string) map[string]any {
	flat := make(map[string]any, len(tables))
	for name, val := range tables {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		sub, isTable := val.(map[string]any)
		if !isTable {
			flat[key] = val
			continue
		}
		for k, v := range flattenMap(sub, key) {
			flat[k] = v
		}
	}
	return flat
}

// nestMap turns {"a.b": 1} into {"a": {"b": 1}}.
func nestMap(flat map[string]any) map[string]any {
	tables := make(map[string]any)
	for key, val := range flat {
		path := strings.Split(key, ".")
		table := tables
		for _, name := range path[:len(path)-1] {
			sub, ok := table[name].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				table[name] = sub
			}
			table = sub
		}
		table[path[len(path)-1]] = val
	}
	return tables
}
