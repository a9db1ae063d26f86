package auth

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/sessionstore"
)

// StoreDeps carries the connections a session store may need.
type StoreDeps struct {
	SQLDB       *sql.DB
	RedisClient redis.UniversalClient
	RedisPrefix string
}

// NewStore builds the scs store selected by kind.
func NewStore(kind string, deps StoreDeps) (scs.Store, error) {
	switch kind {
	case config.SessionStoreMemory:
		return memstore.New(), nil
	case config.SessionStoreRedis:
		if deps.RedisClient == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return sessionstore.NewRedisStore(deps.RedisClient, deps.RedisPrefix), nil
	case config.SessionStoreSQLite, "":
		if deps.SQLDB == nil {
			return nil, errors.New("sqlite session store requires a database")
		}
		if err := createSessionsTable(deps.SQLDB); err != nil {
			return nil, err
		}
		return sqlite3store.New(deps.SQLDB), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", kind)
	}
}

func createSessionsTable(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}
