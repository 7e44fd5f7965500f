package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const snapshotPrefix = "snapshot:"

// Snapshot is a model revision materialized in a local directory.
type Snapshot struct {
	ID        string    `json:"id"`
	Revision  string    `json:"revision"`
	Dir       string    `json:"dir"`
	Files     []string  `json:"files"`
	FetchedAt time.Time `json:"fetched_at"`

	// Local is set for identifiers that name a directory on disk.
	Local bool `json:"-"`
}

// Has reports whether name is part of the snapshot.
func (s *Snapshot) Has(name string) bool {
	for _, f := range s.Files {
		if f == name {
			return true
		}
	}
	return false
}

// Manifest records downloaded snapshots in BadgerDB.
type Manifest struct {
	db *badger.DB
}

// NewManifest wraps an open database.
func NewManifest(db *badger.DB) *Manifest {
	return &Manifest{db: db}
}

// OpenManifest opens or creates the manifest database in dir.
func OpenManifest(dir string) (*Manifest, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	return &Manifest{db: db}, nil
}

// Close closes the database.
func (m *Manifest) Close() error {
	return m.db.Close()
}

func snapshotKey(id, revision string) []byte {
	return []byte(snapshotPrefix + id + "@" + revision)
}

// Put records s, replacing any previous record of the same id and revision.
func (m *Manifest) Put(s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(s.ID, s.Revision), data)
	})
}

// Get returns the recorded snapshot, with ok false when there is none.
func (m *Manifest) Get(id, revision string) (*Snapshot, bool, error) {
	var s Snapshot
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(id, revision))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &s)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read manifest: %w", err)
	}
	return &s, true, nil
}

// Delete forgets a snapshot. Files on disk are left alone.
func (m *Manifest) Delete(id, revision string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(id, revision))
	})
}

// List returns every recorded snapshot ordered by id and revision.
func (m *Manifest) List() ([]Snapshot, error) {
	var out []Snapshot
	prefix := []byte(snapshotPrefix)
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var s Snapshot
				if err := json.Unmarshal(v, &s); err != nil {
					return fmt.Errorf("failed to unmarshal snapshot: %w", err)
				}
				out = append(out, s)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list manifest: %w", err)
	}
	return out, nil
}
