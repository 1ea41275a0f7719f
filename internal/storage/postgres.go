package storage

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PostgresStore backs team-shared deployments where several machines
// query the same fact database.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore connects to the given DSN and ensures the schema
// exists.
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &PostgresStore{
		sqlStore: sqlStore{db: db, logger: logger},
	}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("postgres store ready")
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("initialize postgres schema: %w", err)
	}
	return nil
}
