package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/repository/bolt"
	"github.com/secmon-lab/checkin/pkg/repository/firestore"
	"github.com/secmon-lab/checkin/pkg/repository/gcs"
	"github.com/secmon-lab/checkin/pkg/repository/memory"
)

func runKVStoreTest(t *testing.T, newStore func(t *testing.T) interfaces.KVStore) {
	t.Helper()

	t.Run("Get missing key returns ErrKeyNotFound", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Get(ctx, fmt.Sprintf("missing_%d", time.Now().UnixNano()))
		gt.Bool(t, errors.Is(err, interfaces.ErrKeyNotFound)).True()
	})

	t.Run("Put then Get round trips bytes", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		key := fmt.Sprintf("key_%d", time.Now().UnixNano())

		gt.NoError(t, store.Put(ctx, key, []byte(`{"a":1}`))).Required()
		got, err := store.Get(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, string(got)).Equal(`{"a":1}`)
	})

	t.Run("Put overwrites", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		key := fmt.Sprintf("key_%d", time.Now().UnixNano())

		gt.NoError(t, store.Put(ctx, key, []byte("first"))).Required()
		gt.NoError(t, store.Put(ctx, key, []byte("second"))).Required()
		got, err := store.Get(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, string(got)).Equal("second")
	})

	t.Run("returned value is not aliased", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		key := fmt.Sprintf("key_%d", time.Now().UnixNano())

		value := []byte("abc")
		gt.NoError(t, store.Put(ctx, key, value)).Required()
		value[0] = 'x'

		got, err := store.Get(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, string(got)).Equal("abc")
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		key := fmt.Sprintf("key_%d", time.Now().UnixNano())

		gt.NoError(t, store.Put(ctx, key, []byte("v"))).Required()
		gt.NoError(t, store.Delete(ctx, key)).Required()
		gt.NoError(t, store.Delete(ctx, key)).Required()

		_, err := store.Get(ctx, key)
		gt.Bool(t, errors.Is(err, interfaces.ErrKeyNotFound)).True()
	})
}

func TestMemoryKVStore(t *testing.T) {
	runKVStoreTest(t, func(t *testing.T) interfaces.KVStore {
		return memory.New()
	})
}

func TestBoltKVStore(t *testing.T) {
	runKVStoreTest(t, func(t *testing.T) interfaces.KVStore {
		store, err := bolt.New(filepath.Join(t.TempDir(), "nested", "checkin.db"))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, store.Close())
		})
		return store
	})
}

func TestBoltKVStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkin.db")
	ctx := context.Background()

	store, err := bolt.New(path)
	gt.NoError(t, err).Required()
	gt.NoError(t, store.Put(ctx, "threadLink", []byte("1700000000.000100"))).Required()
	gt.NoError(t, store.Close()).Required()

	reopened, err := bolt.New(path)
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, reopened.Close()) }()

	got, err := reopened.Get(ctx, "threadLink")
	gt.NoError(t, err).Required()
	gt.Value(t, string(got)).Equal("1700000000.000100")
}

func TestFirestoreKVStore(t *testing.T) {
	runKVStoreTest(t, func(t *testing.T) interfaces.KVStore {
		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
		}
		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

		prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
		store, err := firestore.New(context.Background(), projectID, databaseID,
			[]firestore.Option{firestore.WithCollectionPrefix(prefix)})
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, store.Close())
		})
		return store
	})
}

func TestGCSKVStore(t *testing.T) {
	runKVStoreTest(t, func(t *testing.T) interfaces.KVStore {
		bucket := os.Getenv("TEST_GCS_BUCKET")
		if bucket == "" {
			t.Skip("TEST_GCS_BUCKET not set")
		}

		prefix := fmt.Sprintf("test/%d", time.Now().UnixNano())
		store, err := gcs.New(context.Background(), bucket, []gcs.Option{gcs.WithPrefix(prefix)})
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, store.Close())
		})
		return store
	})
}
