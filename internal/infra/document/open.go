// Package document selects the document store backend named by configuration.
package document

import (
	"context"
	"fmt"
	"io"

	"hotelcore/internal/blob"
	"hotelcore/internal/config"
	blobdoc "hotelcore/internal/infra/document/blob"
	"hotelcore/internal/infra/document/file"
	"hotelcore/internal/infra/document/memory"
	"hotelcore/internal/infra/document/postgres"
	"hotelcore/internal/infra/document/sqlite"
	"hotelcore/pkg/domain"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open constructs the store selected by cfg.StorageDriver. The returned closer
// releases database handles and is safe to call for every driver.
func Open(ctx context.Context, cfg config.Config) (domain.DocumentStore, io.Closer, error) {
	switch cfg.StorageDriver {
	case config.StorageFile, "":
		s, err := file.NewStore(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case config.StorageSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoragePostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StorageBlob:
		blobs, err := blob.Open(ctx, cfg.BlobStoreConfig())
		if err != nil {
			return nil, nil, err
		}
		return blobdoc.NewStore(blobs, cfg.DocumentKey), nopCloser{}, nil
	case config.StorageMemory:
		return memory.NewStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %s", cfg.StorageDriver)
	}
}
