package table

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
)

// Codec maps a value to its key and to a single table record.
type Codec[K comparable, T any] interface {
	Key(value T) K
	Encode(value T) string
	Decode(record string) (T, error)
}

// Table is a keyed in-memory index backed by a flat table file.
// Every mutation rewrites the whole file before returning.
type Table[K comparable, T any] struct {
	name  string
	store *flatfile.Store
	codec Codec[K, T]

	mu    sync.RWMutex
	index map[K]T
	keys  []K

	writeMu sync.Mutex

	locksMu sync.Mutex
	locks   map[K]*keyLock
}

// keyLock is an id lock shared by every caller holding or waiting for it.
// It is dropped from the table when the last of them releases it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty table. Call Load to read the stored records.
func New[K comparable, T any](name string, store *flatfile.Store, codec Codec[K, T]) *Table[K, T] {
	return &Table[K, T]{
		name:  name,
		store: store,
		codec: codec,
		index: make(map[K]T),
		locks: make(map[K]*keyLock),
	}
}

// Load replaces the index with the stored records.
// Malformed records are skipped.
func (t *Table[K, T]) Load() error {
	lines, err := t.store.ReadLines()
	if err != nil {
		return fmt.Errorf("failed to load table %s: %w", t.name, err)
	}

	index := make(map[K]T, len(lines))
	keys := make([]K, 0, len(lines))
	skipped := 0
	for i, line := range lines {
		value, err := t.codec.Decode(line)
		if err != nil {
			skipped++
			slog.Warn("Skipping malformed record", "table", t.name, "line", i+1, "error", err)

			continue
		}
		key := t.codec.Key(value)
		if _, ok := index[key]; !ok {
			keys = append(keys, key)
		}
		index[key] = value
	}

	t.mu.Lock()
	t.index = index
	t.keys = keys
	t.mu.Unlock()

	slog.Info("Table loaded", "table", t.name, "records", len(keys), "skipped", skipped)

	return nil
}

// Get returns the value stored under id.
func (t *Table[K, T]) Get(id K) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	value, ok := t.index[id]
	if !ok {
		var zero T

		return zero, fmt.Errorf("%s %v: %w", t.name, id, apperrors.ErrNotFound)
	}

	return value, nil
}

// Exists reports whether id is stored.
func (t *Table[K, T]) Exists(id K) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.index[id]

	return ok
}

// All returns every value in insertion order.
func (t *Table[K, T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	values := make([]T, 0, len(t.keys))
	for _, k := range t.keys {
		values = append(values, t.index[k])
	}

	return values
}

// Find returns the values matching pred in insertion order.
func (t *Table[K, T]) Find(pred func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var values []T
	for _, k := range t.keys {
		if v := t.index[k]; pred(v) {
			values = append(values, v)
		}
	}

	return values
}

// Len returns the number of stored values.
func (t *Table[K, T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.keys)
}

// Persist upserts value and rewrites the table.
func (t *Table[K, T]) Persist(value T) {
	key := t.codec.Key(value)
	unlock := t.lock(key)
	defer unlock()

	t.put(key, value)
	t.flush()
}

// Create inserts value unless its key is already stored.
func (t *Table[K, T]) Create(value T) error {
	key := t.codec.Key(value)
	unlock := t.lock(key)
	defer unlock()

	if t.Exists(key) {
		return fmt.Errorf("%s %v: %w", t.name, key, apperrors.ErrAlreadyExists)
	}
	t.put(key, value)
	t.flush()

	return nil
}

// Delete removes id and rewrites the table.
func (t *Table[K, T]) Delete(id K) error {
	return t.DeleteIf(id, nil)
}

// DeleteIf removes id when check accepts its current value.
// A nil check accepts everything. If check fails nothing is removed.
func (t *Table[K, T]) DeleteIf(id K, check func(T) error) error {
	unlock := t.lock(id)
	defer unlock()

	current, err := t.Get(id)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(current); err != nil {
			return err
		}
	}

	t.mu.Lock()
	delete(t.index, id)
	for i, k := range t.keys {
		if k == id {
			t.keys = append(t.keys[:i:i], t.keys[i+1:]...)

			break
		}
	}
	t.mu.Unlock()

	t.flush()

	return nil
}

// Apply runs mutate on the current value of id and persists the result.
// Read, mutation and write happen under the id's lock, so concurrent
// mutations of one entity are serialized. If mutate fails nothing is stored.
func (t *Table[K, T]) Apply(id K, mutate func(T) (T, error)) (T, error) {
	unlock := t.lock(id)
	defer unlock()

	var zero T

	current, err := t.Get(id)
	if err != nil {
		return zero, err
	}

	updated, err := mutate(current)
	if err != nil {
		return zero, err
	}
	if key := t.codec.Key(updated); key != id {
		return zero, fmt.Errorf("%w: mutation changed key %v to %v", apperrors.ErrInvalidArgument, id, key)
	}

	t.put(id, updated)
	t.flush()

	return updated, nil
}

func (t *Table[K, T]) put(key K, value T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.index[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.index[key] = value
}

// flush rewrites the table file from a snapshot taken under the write lock,
// so a later flush never writes an older snapshot.
// Write errors are logged; the in-memory index stays authoritative.
func (t *Table[K, T]) flush() {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.RLock()
	records := make([]string, 0, len(t.keys))
	for _, k := range t.keys {
		records = append(records, t.codec.Encode(t.index[k]))
	}
	t.mu.RUnlock()

	if err := t.store.WriteLines(records); err != nil {
		slog.Error("Failed to persist table", "table", t.name, "path", t.store.Path(), "error", err)
	}
}

func (t *Table[K, T]) lock(key K) func() {
	t.locksMu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &keyLock{}
		t.locks[key] = l
	}
	l.refs++
	t.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, key)
		}
		t.locksMu.Unlock()
	}
}

// lockCount reports how many id locks are held or awaited.
func (t *Table[K, T]) lockCount() int {
	t.locksMu.Lock()
	defer t.locksMu.Unlock()

	return len(t.locks)
}
