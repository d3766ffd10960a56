package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/repository/bolt"
	"github.com/secmon-lab/checkin/pkg/repository/firestore"
	"github.com/secmon-lab/checkin/pkg/repository/gcs"
	"github.com/secmon-lab/checkin/pkg/repository/memory"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Store holds CLI flags for the key-value store backend
type Store struct {
	backend    string
	path       string
	projectID  string
	databaseID string
	bucket     string
	prefix     string
}

// Flags returns CLI flags for store configuration
func (x *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Store backend type [bolt|memory|firestore|gcs]",
			Category:    "Store",
			Value:       "bolt",
			Sources:     cli.EnvVars("CHECKIN_STORE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "store-path",
			Usage:       "Database file path for the bolt backend (default: user config dir)",
			Category:    "Store",
			Sources:     cli.EnvVars("CHECKIN_STORE_PATH"),
			Destination: &x.path,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Store",
			Sources:     cli.EnvVars("CHECKIN_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Store",
			Sources:     cli.EnvVars("CHECKIN_FIRESTORE_DATABASE_ID"),
			Destination: &x.databaseID,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Store",
			Sources:     cli.EnvVars("CHECKIN_GCS_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the Cloud Storage bucket",
			Category:    "Store",
			Value:       "checkin",
			Sources:     cli.EnvVars("CHECKIN_GCS_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Store) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("path", x.path),
		slog.String("firestore_project_id", x.projectID),
		slog.String("gcs_bucket", x.bucket),
	)
}

// Backend returns the configured backend type
func (x *Store) Backend() string {
	return x.backend
}

// Configure opens the configured backend. The caller is responsible for
// calling Close() on the returned store.
func (x *Store) Configure(ctx context.Context) (interfaces.KVStore, error) {
	logger := logging.From(ctx)

	switch x.backend {
	case "bolt", "":
		path := x.path
		if path == "" {
			p, err := bolt.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		kv, err := bolt.New(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open bolt store")
		}
		logger.Debug("Using bolt store", "path", path)
		return kv, nil

	case "memory":
		logger.Info("Using in-memory store (nothing is persisted)")
		return memory.New(), nil

	case "firestore":
		if x.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		kv, err := firestore.New(ctx, x.projectID, x.databaseID, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore store")
		}
		logger.Info("Using Firestore store",
			"project_id", x.projectID,
			"database_id", x.databaseID,
		)
		return kv, nil

	case "gcs":
		if x.bucket == "" {
			return nil, goerr.New("gcs-bucket is required when using gcs backend")
		}
		kv, err := gcs.New(ctx, x.bucket, []gcs.Option{gcs.WithPrefix(x.prefix)})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize cloud storage store")
		}
		logger.Info("Using Cloud Storage store", "bucket", x.bucket, "prefix", x.prefix)
		return kv, nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", x.backend))
	}
}
