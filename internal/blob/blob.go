// Package blob abstracts the key-value persistence collaborator used by the
// transaction ledger. Implementations store opaque byte payloads under
// string keys; the ledger writes full-replace snapshots, so drivers must
// guarantee a failed write never corrupts the previously committed payload.
package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem is the local filesystem driver (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 is an S3 / MinIO compatible driver.
	DriverS3 Driver = "s3"
	// DriverMemory is the in-memory test driver.
	DriverMemory Driver = "memory"
)

// Store provides the minimal read-all/write-all surface the ledger needs.
type Store interface {
	// Put replaces the payload stored under key.
	Put(ctx context.Context, key string, payload []byte) error
	// Get returns the payload under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Delete removes the key; returns true if it existed. Idempotent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns keys starting with prefix, sorted. Empty prefix lists all.
	List(ctx context.Context, prefix string) ([]string, error)
	Driver() Driver
}

// Config selects and parameterizes a blob driver.
type Config struct {
	Driver      Driver
	FSRoot      string // fs driver root (default ./posdata)
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// ConfigFromEnv reads the SALESPOINT_BLOB_* variables.
//
//	SALESPOINT_STORAGE_DRIVER selects fs|s3|memory for blob-backed ledgers
//	SALESPOINT_BLOB_FS_ROOT: directory root when driver=fs (default ./posdata)
//	SALESPOINT_BLOB_S3_BUCKET: bucket name (required for s3)
//	SALESPOINT_BLOB_S3_REGION: region (default us-east-1)
//	SALESPOINT_BLOB_S3_ENDPOINT: custom endpoint, e.g. MinIO (optional)
//	SALESPOINT_BLOB_S3_PATH_STYLE: true|false (default false)
func ConfigFromEnv(driver Driver) Config {
	return Config{
		Driver:      driver,
		FSRoot:      os.Getenv("SALESPOINT_BLOB_FS_ROOT"),
		S3Bucket:    os.Getenv("SALESPOINT_BLOB_S3_BUCKET"),
		S3Region:    os.Getenv("SALESPOINT_BLOB_S3_REGION"),
		S3Endpoint:  os.Getenv("SALESPOINT_BLOB_S3_ENDPOINT"),
		S3PathStyle: strings.EqualFold(os.Getenv("SALESPOINT_BLOB_S3_PATH_STYLE"), "true"),
	}
}

// Open selects a Store implementation from the config.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return OpenS3(ctx, cfg)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
