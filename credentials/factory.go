package credentials

import (
	"context"
	"path/filepath"

	"github.com/jrsteele09/secops-console/internal/config"
	cerrors "github.com/jrsteele09/secops-console/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sqliteFileName = "console.db"

// Open builds the store selected by CREDENTIAL_BACKEND.
func Open(ctx context.Context, cfg config.EnvConfig) (Store, error) {
	switch cfg.GetCredentialBackend() {
	case config.CredentialBackendFile:
		return NewFileStore(cfg.GetDataFolder())
	case config.CredentialBackendSQLite:
		return NewSQLiteStore(ctx, filepath.Join(cfg.GetDataFolder(), sqliteFileName))
	case config.CredentialBackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, errors.Wrap(cerrors.ErrStorageUnavailable, err.Error())
		}
		return NewRedisStore(rdb, cfg.GetRedisNamespace()), nil
	}
	return nil, errors.Wrapf(cerrors.ErrUnknownBackend, "%q", cfg.GetCredentialBackend())
}
