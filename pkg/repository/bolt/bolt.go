package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("checkin")

// Bolt is a single file KVStore backed by bbolt
type Bolt struct {
	db *bbolt.DB
}

var _ interfaces.KVStore = &Bolt{}

// DefaultPath returns <user config dir>/checkin/checkin.db
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve user config dir")
	}
	return filepath.Join(dir, "checkin", "checkin.db"), nil
}

// New opens (or creates) the database file at path
func New(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create store directory", goerr.V("path", path))
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bolt database", goerr.V("path", path))
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create bucket", goerr.V("path", path))
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return interfaces.ErrKeyNotFound
		}
		// v is only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	if err == interfaces.ErrKeyNotFound {
		return nil, err
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read key", goerr.V("key", key))
	}
	return value, nil
}

func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	if err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	}); err != nil {
		return goerr.Wrap(err, "failed to write key", goerr.V("key", key))
	}
	return nil
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	}); err != nil {
		return goerr.Wrap(err, "failed to delete key", goerr.V("key", key))
	}
	return nil
}

func (b *Bolt) Close() error {
	if err := b.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close bolt database")
	}
	return nil
}
