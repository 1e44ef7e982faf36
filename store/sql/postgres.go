package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// PersistenceConfig is the configuration surface the persistence client
// expects from its host.
type PersistenceConfig interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

// NewPostgresClient opens a lib/pq connection for cfg.GetServer() and wraps
// it in a persistence client speaking the postgres dialect. The caller owns
// the returned client and closes it when done.
func NewPostgresClient(cfg PersistenceConfig) (*persistence.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlstore: persistence config is required")
	}
	dsn := strings.TrimSpace(cfg.GetServer())
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: postgres server dsn is required")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres connection: %w", err)
	}

	client, err := persistence.New(cfg, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

// NewPostgresRepositoryFactory opens a postgres-backed persistence client and
// builds the full store set over it in one call.
func NewPostgresRepositoryFactory(cfg PersistenceConfig) (*RepositoryFactory, *persistence.Client, error) {
	client, err := NewPostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	factory, err := NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return factory, client, nil
}
