// Package config loads process configuration from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"hotelcore/internal/blob"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// StorageDriver identifies the document store backend.
type StorageDriver string

const (
	StorageFile     StorageDriver = "file"     // JSON file (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBlob     StorageDriver = "blob"     // single object in a blob store
	StorageMemory   StorageDriver = "memory"   // in-process only
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	// ErrInvalidDriver is returned for an unknown storage or blob driver.
	ErrInvalidDriver = errors.New("invalid driver")
)

// Config holds every setting the command line front end needs.
type Config struct {
	StorageDriver StorageDriver `env:"HOTEL_STORAGE_DRIVER" envDefault:"file"`
	FilePath      string        `env:"HOTEL_FILE_PATH" envDefault:"hotel.json"`
	SQLitePath    string        `env:"HOTEL_SQLITE_PATH" envDefault:"hotel.db"`
	PostgresDSN   string        `env:"HOTEL_POSTGRES_DSN"`
	DocumentKey   string        `env:"HOTEL_DOCUMENT_KEY" envDefault:"hotel.json"`

	Blob BlobConfig

	LogLevel        string `env:"HOTEL_LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"HOTEL_LOG_FORMAT" envDefault:"text"`
	MetricsTextfile string `env:"HOTEL_METRICS_TEXTFILE"`
	TraceFile       string `env:"HOTEL_TRACE_FILE"`
}

// BlobConfig configures the blob driver used when StorageDriver is blob.
type BlobConfig struct {
	Driver      string `env:"HOTEL_BLOB_DRIVER" envDefault:"fs"`
	FSRoot      string `env:"HOTEL_BLOB_FS_ROOT" envDefault:"./blobdata"`
	S3Bucket    string `env:"HOTEL_BLOB_S3_BUCKET"`
	S3Region    string `env:"HOTEL_BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"HOTEL_BLOB_S3_ENDPOINT"`
	S3PathStyle bool   `env:"HOTEL_BLOB_S3_PATH_STYLE"`
}

// Load reads .env files and parses the environment into a Config. With no
// arguments the default ".env" is read when present; a malformed one is an
// error. Variables already set in the process take precedence over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver names.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageFile, StorageSQLite, StoragePostgres, StorageBlob, StorageMemory:
	default:
		return fmt.Errorf("storage driver %q: %w", c.StorageDriver, ErrInvalidDriver)
	}
	if c.StorageDriver == StorageBlob {
		switch blob.Driver(c.Blob.Driver) {
		case blob.DriverFilesystem, blob.DriverS3, blob.DriverMemory:
		default:
			return fmt.Errorf("blob driver %q: %w", c.Blob.Driver, ErrInvalidDriver)
		}
	}
	return nil
}

// BlobStoreConfig converts the blob settings for blob.Open.
func (c Config) BlobStoreConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    c.Blob.S3Bucket,
			Region:    c.Blob.S3Region,
			Endpoint:  c.Blob.S3Endpoint,
			PathStyle: c.Blob.S3PathStyle,
		},
	}
}
