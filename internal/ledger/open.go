package ledger

import (
	"context"
	"fmt"
	"os"

	"salespoint/internal/blob"
	"salespoint/pkg/domain"
)

// StorageDriver identifies a concrete snapshot backend.
type StorageDriver string

// Supported snapshot drivers.
const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageFS       StorageDriver = "fs"       // blob store on the local filesystem
	StorageS3       StorageDriver = "s3"       // blob store on S3 / MinIO
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// Open selects a snapshot backend using environment variables. Defaults to
// sqlite when unset.
//
//	SALESPOINT_STORAGE_DRIVER: memory|fs|s3|sqlite|postgres (default sqlite)
//	SALESPOINT_SQLITE_PATH: path to sqlite file (default ./salespoint.db)
//	SALESPOINT_POSTGRES_DSN: postgres DSN when driver=postgres
//	(blob specific variables documented in the blob package)
func Open(ctx context.Context) (domain.SnapshotStore, error) {
	driver := os.Getenv("SALESPOINT_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return NewMemorySnapshotStore(), nil
	case StorageFS:
		store, err := blob.Open(ctx, blob.ConfigFromEnv(blob.DriverFilesystem))
		if err != nil {
			return nil, err
		}
		return NewBlobSnapshotStore(store), nil
	case StorageS3:
		store, err := blob.Open(ctx, blob.ConfigFromEnv(blob.DriverS3))
		if err != nil {
			return nil, err
		}
		return NewBlobSnapshotStore(store), nil
	case StorageSQLite:
		return NewSQLiteSnapshotStore(os.Getenv("SALESPOINT_SQLITE_PATH"))
	case StoragePostgres:
		return NewPostgresSnapshotStore(ctx, os.Getenv("SALESPOINT_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
