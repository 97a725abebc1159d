package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yeremiapane/restaurant-seating/models"
)

const DefaultKeyPrefix = "seating"

// KVSnapshotStore serializes the roster, the history ledger and the named
// table sets as JSON documents under three keys.
type KVSnapshotStore struct {
	kv     KVStore
	prefix string
}

func NewKVSnapshotStore(kv KVStore, prefix string) *KVSnapshotStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &KVSnapshotStore{kv: kv, prefix: prefix}
}

// NewMemoryStore is a KVSnapshotStore over process memory.
func NewMemoryStore() *KVSnapshotStore {
	return NewKVSnapshotStore(NewMemoryKVStore(), DefaultKeyPrefix)
}

func (s *KVSnapshotStore) tablesKey() string  { return s.prefix + ":tables" }
func (s *KVSnapshotStore) historyKey() string { return s.prefix + ":history" }
func (s *KVSnapshotStore) setsKey() string    { return s.prefix + ":table_sets" }

func (s *KVSnapshotStore) Load(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	found, err := s.getJSON(ctx, s.tablesKey(), &snap.Tables)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load tables: %w", err)
	}
	if !found {
		return models.Snapshot{}, nil
	}
	if _, err := s.getJSON(ctx, s.historyKey(), &snap.History); err != nil {
		return models.Snapshot{}, fmt.Errorf("load history: %w", err)
	}
	return snap, nil
}

// Save writes the ledger before the roster so a reader never sees a table
// whose ledger is older than its embedded history.
func (s *KVSnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	if err := s.setJSON(ctx, s.historyKey(), snap.History); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := s.setJSON(ctx, s.tablesKey(), snap.Tables); err != nil {
		return fmt.Errorf("save tables: %w", err)
	}
	return nil
}

func (s *KVSnapshotStore) Clear(ctx context.Context) error {
	return s.kv.Del(ctx, s.tablesKey(), s.historyKey())
}

func (s *KVSnapshotStore) SaveSet(ctx context.Context, set models.TableSet) error {
	set.Name = strings.TrimSpace(set.Name)
	if set.Name == "" {
		return models.ErrInvalidSetName
	}
	sets, err := s.loadSets(ctx)
	if err != nil {
		return err
	}
	sets[set.Name] = set
	return s.setJSON(ctx, s.setsKey(), sets)
}

func (s *KVSnapshotStore) LoadSet(ctx context.Context, name string) (models.TableSet, error) {
	sets, err := s.loadSets(ctx)
	if err != nil {
		return models.TableSet{}, err
	}
	set, ok := sets[strings.TrimSpace(name)]
	if !ok {
		return models.TableSet{}, fmt.Errorf("%w: %q", models.ErrTableSetNotFound, name)
	}
	return set, nil
}

func (s *KVSnapshotStore) ListSets(ctx context.Context) ([]string, error) {
	sets, err := s.loadSets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *KVSnapshotStore) DeleteSet(ctx context.Context, name string) error {
	sets, err := s.loadSets(ctx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if _, ok := sets[name]; !ok {
		return fmt.Errorf("%w: %q", models.ErrTableSetNotFound, name)
	}
	delete(sets, name)
	return s.setJSON(ctx, s.setsKey(), sets)
}

func (s *KVSnapshotStore) loadSets(ctx context.Context) (map[string]models.TableSet, error) {
	sets := make(map[string]models.TableSet)
	if _, err := s.getJSON(ctx, s.setsKey(), &sets); err != nil {
		return nil, fmt.Errorf("load table sets: %w", err)
	}
	if sets == nil {
		sets = make(map[string]models.TableSet)
	}
	return sets, nil
}

func (s *KVSnapshotStore) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *KVSnapshotStore) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(data), 0)
}
