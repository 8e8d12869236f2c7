package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"okinoko_grants/sdk"
)

// Memory is a map backed store. Keys are binary so the snapshot file
// stores them as base64 byte slices.
type Memory struct {
	mu       sync.RWMutex
	db       map[string]string
	filename string
}

// NewMemory returns an empty store. A non-empty filename makes every commit
// rewrite that snapshot file.
func NewMemory(filename string) *Memory {
	return &Memory{
		db:       make(map[string]string),
		filename: filename,
	}
}

func (m *Memory) Get(key string) (*string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.db[key]
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (m *Memory) Commit(changes []sdk.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range changes {
		if ch.Value == nil {
			delete(m.db, ch.Key)
			continue
		}
		m.db[ch.Key] = *ch.Value
	}
	if m.filename == "" {
		return nil
	}
	return m.saveToFile()
}

func (m *Memory) Close() error { return nil }

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db)
}

type snapshotEntry struct {
	K []byte `json:"k"`
	V []byte `json:"v"`
}

// saveToFile writes the full map to the snapshot file, sorted for stable diffs.
func (m *Memory) saveToFile() error {
	keys := make([]string, 0, len(m.db))
	for k := range m.db {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]snapshotEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, snapshotEntry{K: []byte(k), V: []byte(m.db[k])})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(m.filename, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadFromFile replaces the contents with the snapshot file. A missing file
// leaves the store empty.
func (m *Memory) LoadFromFile() error {
	if m.filename == "" {
		return nil
	}
	data, err := os.ReadFile(m.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.db = make(map[string]string, len(entries))
	for _, e := range entries {
		m.db[string(e.K)] = string(e.V)
	}
	return nil
}
