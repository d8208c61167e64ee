package sdk

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// State is the flat string kv the engine persists everything into.
type State interface {
	Get(key string) *string
	Set(key, value string)
	Delete(key string)
}

// MemState keeps the whole kv in memory and can snapshot it to a json file.
type MemState struct {
	db       map[string]string
	filename string
}

// NewMemState returns an empty in-memory state without file backing.
func NewMemState() *MemState {
	return &MemState{db: make(map[string]string)}
}

// OpenFileState loads filename when it exists; Flush writes back to the same path.
// A missing file starts an empty state.
func OpenFileState(filename string) (*MemState, error) {
	m := &MemState{db: make(map[string]string), filename: filename}
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return m, nil
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for k, v := range raw {
		key, err := hex.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("state key %q: %w", k, err)
		}
		val, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("state value of %q: %w", k, err)
		}
		m.db[string(key)] = string(val)
	}
	return m, nil
}

func (m *MemState) Set(key, value string) {
	m.db[key] = value
}

func (m *MemState) Get(key string) *string {
	val, ok := m.db[key]
	if !ok {
		return nil
	}
	return &val
}

func (m *MemState) Delete(key string) {
	delete(m.db, key)
}

// Len reports the number of stored keys.
func (m *MemState) Len() int {
	return len(m.db)
}

// Keys returns all keys sorted, used by dumps and tests.
func (m *MemState) Keys() []string {
	keys := make([]string, 0, len(m.db))
	for k := range m.db {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush writes the full map to the backing json file, a no-op for pure memory states.
// Keys and values are binary, both are hex encoded in the file.
func (m *MemState) Flush() error {
	if m.filename == "" {
		return nil
	}
	raw := make(map[string]string, len(m.db))
	for k, v := range m.db {
		raw[hex.EncodeToString([]byte(k))] = hex.EncodeToString([]byte(v))
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filename, data, 0o644)
}
