// Package save provides SQLite-based world state storage. Subsystems opt in
// by implementing Saveable; their state travels as versioned gob blobs.
package save

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
)

// Saveable is implemented by any subsystem that persists state. SaveToBytes
// may report false to skip the blob this cycle (derived state that is
// rebuilt on load).
type Saveable interface {
	// SaveKey is the stable blob identifier, e.g. "grid", "citizens".
	SaveKey() string
	SaveToBytes() ([]byte, bool)
	LoadFromBytes(data []byte) error
}

// Registry holds the saveables in registration order.
type Registry struct {
	entries []Saveable
	version int
}

// NewRegistry creates a registry stamping blobs with the given version.
func NewRegistry(version int) *Registry {
	return &Registry{version: version}
}

// Register adds a saveable. Keys must be unique; a duplicate is a
// programming error and panics at startup.
func (r *Registry) Register(s Saveable) {
	for _, e := range r.entries {
		if e.SaveKey() == s.SaveKey() {
			panic(fmt.Sprintf("save: duplicate key %q", s.SaveKey()))
		}
	}
	r.entries = append(r.entries, s)
}

// SaveAll writes every saveable's blob to the database in one transaction.
func (r *Registry) SaveAll(db *DB) error {
	blobs := make(map[string][]byte, len(r.entries))
	for _, e := range r.entries {
		data, ok := e.SaveToBytes()
		if !ok {
			continue
		}
		blobs[e.SaveKey()] = data
	}
	return db.WriteBlobs(blobs, r.version)
}

// LoadAll restores every saveable from the database. A missing or corrupt
// blob leaves that subsystem at its defaults with a warning; one bad
// subsystem does not lose the save.
func (r *Registry) LoadAll(db *DB) error {
	for _, e := range r.entries {
		data, err := db.ReadBlob(e.SaveKey())
		if err != nil {
			slog.Warn("save blob missing, using defaults", "key", e.SaveKey(), "err", err)
			continue
		}
		if err := e.LoadFromBytes(data); err != nil {
			slog.Warn("save blob corrupt, using defaults", "key", e.SaveKey(), "err", err)
		}
	}
	return nil
}

// Encode gob-encodes a value for SaveToBytes implementations.
func Encode(v any) ([]byte, bool) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		slog.Warn("save encode failed", "err", err)
		return nil, false
	}
	return buf.Bytes(), true
}

// Decode gob-decodes a blob for LoadFromBytes implementations.
func Decode(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Func adapts three closures into a Saveable, for subsystems that do not
// want a dedicated wrapper type.
type Func struct {
	Key  string
	Save func() ([]byte, bool)
	Load func(data []byte) error
}

func (f Func) SaveKey() string                { return f.Key }
func (f Func) SaveToBytes() ([]byte, bool)    { return f.Save() }
func (f Func) LoadFromBytes(data []byte) error { return f.Load(data) }
