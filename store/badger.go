package store

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v2"

	"okinoko_grants/sdk"
)

// Badger persists state in a badger database, one badger transaction per commit.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database in dir. An empty dir keeps
// everything in memory.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(key string) (*string, error) {
	var out *string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		s := string(val)
		out = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return out, nil
}

func (b *Badger) Commit(changes []sdk.Change) error {
	if len(changes) == 0 {
		return nil
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, ch := range changes {
			if ch.Value == nil {
				if err := txn.Delete([]byte(ch.Key)); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set([]byte(ch.Key), []byte(*ch.Value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger commit: %w", err)
	}
	return nil
}

func (b *Badger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
