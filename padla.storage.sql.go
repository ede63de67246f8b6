package padla

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// sqlDialect holds what differs between the SQL backends.
type sqlDialect struct {
	// placeholder returns the bind parameter for the n-th (1-based) argument.
	placeholder func(n int) string
	// schema returns the statements creating the templates table.
	schema func(table string) []string
	// isolation is used for the version-allocating transaction of Save.
	isolation sql.IsolationLevel
}

// sqlStorage implements TemplateStorage over database/sql.
// It is embedded by PostgresStorage and SQLiteStorage.
type sqlStorage struct {
	db           *sql.DB
	dialect      sqlDialect
	table        string
	queryTimeout time.Duration
	mu           sync.RWMutex
	closed       bool
}

const sqlTemplateColumns = `id, name, source, version, metadata, tags, created_by, created_at, updated_at`

func newSQLStorage(db *sql.DB, dialect sqlDialect, tablePrefix string, queryTimeout time.Duration) *sqlStorage {
	return &sqlStorage{
		db:           db,
		dialect:      dialect,
		table:        tablePrefix + "templates",
		queryTimeout: queryTimeout,
	}
}

// Migrate creates the templates table and its indexes if they do not exist.
func (s *sqlStorage) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	for _, stmt := range s.dialect.schema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return &StorageError{Message: ErrMsgMigrationFailed, Name: s.table, Cause: err}
		}
	}
	return nil
}

// DB returns the underlying database handle.
func (s *sqlStorage) DB() *sql.DB {
	return s.db
}

// Get retrieves the latest version of a template by name.
func (s *sqlStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = %s ORDER BY version DESC LIMIT 1`,
		sqlTemplateColumns, s.table, s.dialect.placeholder(1))

	tmpl, err := s.queryOne(ctx, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewTemplateNotFoundError(name)
	}
	if err != nil {
		return nil, wrapQueryError(err, name, 0)
	}
	return tmpl, nil
}

// GetByID retrieves a specific template version by ID.
func (s *sqlStorage) GetByID(ctx context.Context, id string) (*StoredTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`,
		sqlTemplateColumns, s.table, s.dialect.placeholder(1))

	tmpl, err := s.queryOne(ctx, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewTemplateNotFoundError(id)
	}
	if err != nil {
		return nil, wrapQueryError(err, id, 0)
	}
	return tmpl, nil
}

// GetVersion retrieves a specific version of a template.
func (s *sqlStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = %s AND version = %s`,
		sqlTemplateColumns, s.table, s.dialect.placeholder(1), s.dialect.placeholder(2))

	tmpl, err := s.queryOne(ctx, query, name, version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStorageVersionNotFoundError(name, version)
	}
	if err != nil {
		return nil, wrapQueryError(err, name, version)
	}
	return tmpl, nil
}

// Save stores tmpl as the next version of its name inside one transaction.
func (s *sqlStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if tmpl != nil {
		if err := validateTemplateName(tmpl.Name); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil {
		return NewNilArgumentError(ArgTemplate)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.dialect.isolation})
	if err != nil {
		return &StorageError{Message: ErrMsgTransactionFailed, Name: tmpl.Name, Cause: err}
	}
	defer func() { _ = tx.Rollback() }()

	var maxVersion int
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s WHERE name = %s`, s.table, s.dialect.placeholder(1)),
		tmpl.Name).Scan(&maxVersion)
	if err != nil {
		return wrapQueryError(err, tmpl.Name, 0)
	}

	stored := tmpl.Clone()
	if err := prepareSave(ctx, stored, maxVersion+1); err != nil {
		return err
	}

	metadataJSON, err := json.Marshal(stored.Metadata)
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalTemplate, Name: stored.Name, Cause: err}
	}
	tagsJSON, err := json.Marshal(stored.Tags)
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalTemplate, Name: stored.Name, Cause: err}
	}

	placeholders := make([]string, 9)
	for i := range placeholders {
		placeholders[i] = s.dialect.placeholder(i + 1)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		s.table, sqlTemplateColumns, strings.Join(placeholders, ", "))

	_, err = tx.ExecContext(ctx, insert,
		stored.ID, stored.Name, stored.Source, stored.Version,
		string(metadataJSON), string(tagsJSON), nullString(stored.CreatedBy),
		stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return wrapQueryError(err, stored.Name, stored.Version)
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Message: ErrMsgTransactionFailed, Name: stored.Name, Cause: err}
	}

	tmpl.ID = stored.ID
	tmpl.Version = stored.Version
	tmpl.CreatedAt = stored.CreatedAt
	tmpl.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes all versions of a template by name.
func (s *sqlStorage) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = %s`, s.table, s.dialect.placeholder(1))
	affected, err := s.exec(ctx, query, name)
	if err != nil {
		return wrapQueryError(err, name, 0)
	}
	if affected == 0 {
		return NewTemplateNotFoundError(name)
	}
	return nil
}

// DeleteVersion removes a specific version of a template.
func (s *sqlStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = %s AND version = %s`,
		s.table, s.dialect.placeholder(1), s.dialect.placeholder(2))
	affected, err := s.exec(ctx, query, name, version)
	if err != nil {
		return wrapQueryError(err, name, version)
	}
	if affected == 0 {
		return NewStorageVersionNotFoundError(name, version)
	}
	return nil
}

// List returns templates matching the query. Name and creator filters run in
// SQL; tags, latest-version selection and pagination are applied afterwards.
func (s *sqlStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	var conditions []string
	var args []any
	if query != nil {
		if query.CreatedBy != "" {
			args = append(args, query.CreatedBy)
			conditions = append(conditions, "created_by = "+s.dialect.placeholder(len(args)))
		}
		if query.NamePrefix != "" {
			args = append(args, escapeLike(query.NamePrefix)+"%")
			conditions = append(conditions, "name LIKE "+s.dialect.placeholder(len(args))+` ESCAPE '\'`)
		}
		if query.NameContains != "" {
			args = append(args, "%"+escapeLike(query.NameContains)+"%")
			conditions = append(conditions, "name LIKE "+s.dialect.placeholder(len(args))+` ESCAPE '\'`)
		}
	}

	stmt := fmt.Sprintf(`SELECT %s FROM %s`, sqlTemplateColumns, s.table)
	if len(conditions) > 0 {
		stmt += " WHERE " + strings.Join(conditions, " AND ")
	}
	stmt += " ORDER BY name ASC, version DESC"

	templates, err := s.queryAll(ctx, stmt, args...)
	if err != nil {
		return nil, wrapQueryError(err, "", 0)
	}
	return filterTemplates(templates, query), nil
}

// Exists checks if a template exists.
func (s *sqlStorage) Exists(ctx context.Context, name string) (bool, error) {
	versions, err := s.ListVersions(ctx, name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// ListVersions returns all version numbers of a template, newest first.
func (s *sqlStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT version FROM %s WHERE name = %s ORDER BY version DESC`, s.table, s.dialect.placeholder(1)),
		name)
	if err != nil {
		return nil, wrapQueryError(err, name, 0)
	}
	defer rows.Close()

	versions := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, wrapQueryError(err, name, 0)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err, name, 0)
	}
	return versions, nil
}

// Close closes the database handle.
func (s *sqlStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *sqlStorage) queryOne(ctx context.Context, query string, args ...any) (*StoredTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return scanTemplate(s.db.QueryRowContext(ctx, query, args...))
}

func (s *sqlStorage) queryAll(ctx context.Context, query string, args ...any) ([]*StoredTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*StoredTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (s *sqlStorage) exec(ctx context.Context, query string, args ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, NewStorageClosedError()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*StoredTemplate, error) {
	var (
		tmpl         StoredTemplate
		metadataJSON sql.NullString
		tagsJSON     sql.NullString
		createdBy    sql.NullString
	)
	err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Source, &tmpl.Version,
		&metadataJSON, &tagsJSON, &createdBy, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &tmpl.Metadata); err != nil {
			return nil, &StorageError{Message: ErrMsgUnmarshalTemplate, Name: tmpl.Name, Cause: err}
		}
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &tmpl.Tags); err != nil {
			return nil, &StorageError{Message: ErrMsgUnmarshalTemplate, Name: tmpl.Name, Cause: err}
		}
	}
	tmpl.CreatedBy = createdBy.String
	return &tmpl, nil
}

func wrapQueryError(err error, name string, version int) error {
	var storageErr *StorageError
	if errors.As(err, &storageErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StorageError{Message: ErrMsgQueryFailed, Name: name, Version: version, Cause: err}
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// dollarPlaceholder renders PostgreSQL style parameters ($1, $2, ...).
func dollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// questionPlaceholder renders SQLite style parameters.
func questionPlaceholder(int) string {
	return "?"
}
