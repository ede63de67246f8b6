package padla

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteConfig configures the SQLite storage driver.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:" for a private in-memory database.
	Path string

	// TablePrefix allows customizing the table name prefix.
	// Default: "padla_"
	TablePrefix string

	// BusyTimeout is how long a statement waits for a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// QueryTimeout is the default timeout for queries.
	// Default: 30 seconds
	QueryTimeout time.Duration
}

// DefaultSQLiteConfig returns an in-memory configuration with defaults.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:         SQLiteMemoryPath,
		TablePrefix:  SQLiteTablePrefix,
		BusyTimeout:  SQLiteDefaultBusyTimeout,
		QueryTimeout: SQLiteDefaultQueryTimeout,
	}
}

var sqliteDialect = sqlDialect{
	placeholder: questionPlaceholder,
	schema:      sqliteSchema,
	isolation:   sql.LevelDefault,
}

func sqliteSchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			source     TEXT NOT NULL,
			version    INTEGER NOT NULL,
			metadata   TEXT,
			tags       TEXT,
			created_by TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (name, version)
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_name ON %s (name)`, table, table),
	}
}

// SQLiteStorage implements TemplateStorage on an embedded SQLite database.
// Writes go through a single connection.
type SQLiteStorage struct {
	*sqlStorage
	config SQLiteConfig
}

// SQLiteStorageDriver is the driver for creating SQLiteStorage instances.
type SQLiteStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameSQLite, &SQLiteStorageDriver{})
}

// Open creates a new SQLiteStorage. The connection string is the database
// path; empty means in-memory.
func (d *SQLiteStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	config := DefaultSQLiteConfig()
	if connectionString != "" {
		config.Path = connectionString
	}
	return NewSQLiteStorage(config)
}

// NewSQLiteStorage opens the database, enables WAL and creates the schema.
func NewSQLiteStorage(config SQLiteConfig) (*SQLiteStorage, error) {
	d := DefaultSQLiteConfig()
	if config.Path == "" {
		config.Path = d.Path
	}
	if config.TablePrefix == "" {
		config.TablePrefix = d.TablePrefix
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = d.BusyTimeout
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = d.QueryTimeout
	}

	db, err := sql.Open(StorageDriverNameSQLite, config.Path)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgConnectionFailed, Name: config.Path, Cause: err}
	}
	// One connection keeps ":memory:" a single database and serialises writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), config.QueryTimeout)
	defer cancel()

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.BusyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, &StorageError{Message: ErrMsgConnectionFailed, Name: config.Path, Cause: err}
		}
	}

	storage := &SQLiteStorage{
		sqlStorage: newSQLStorage(db, sqliteDialect, config.TablePrefix, config.QueryTimeout),
		config:     config,
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return storage, nil
}

// Config returns the effective configuration.
func (s *SQLiteStorage) Config() SQLiteConfig {
	return s.config
}
