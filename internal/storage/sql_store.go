// Package storage provides persistence for the metadata catalog.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/errors"
)

// Dialect selects the SQL placeholder style for the backing driver.
type Dialect string

const (
	// DialectSQLite targets modernc.org/sqlite ("?" placeholders).
	DialectSQLite Dialect = "sqlite"

	// DialectPostgres targets lib/pq ("$n" placeholders).
	DialectPostgres Dialect = "postgres"
)

// SQLStore implements MetadataStore on database/sql.
// Queries are written with "?" placeholders and rebound for postgres.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a store over an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// rebind rewrites "?" placeholders as "$1".."$n" for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save upserts a table and its columns in one transaction.
func (s *SQLStore) Save(ctx context.Context, meta *catalog.TableMetadata) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}

	partitionsJSON, err := json.Marshal(orEmptySlice(meta.Partitions))
	if err != nil {
		return "", errors.NewStorageBackend("save", err)
	}
	propertiesJSON, err := json.Marshal(orEmptyMap(meta.Properties))
	if err != nil {
		return "", errors.NewStorageBackend("save", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.NewStorageBackend("save", err)
	}
	defer tx.Rollback()

	// Timestamps are persisted as epoch milliseconds; truncate so the
	// values handed back on meta match what a later Get returns.
	now := time.Now().UTC().Truncate(time.Millisecond)

	var id string
	var existingFormat string
	var existingCreatedAt int64
	err = tx.QueryRowContext(ctx,
		s.rebind(`SELECT id, format, created_at FROM table_metadata WHERE table_name = ?`),
		meta.TableName,
	).Scan(&id, &existingFormat, &existingCreatedAt)

	switch {
	case err == sql.ErrNoRows:
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO table_metadata
				(id, table_name, format, location, partitions_json, properties_json,
				 supports_time_travel, num_files, size_bytes, row_count, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			id, meta.TableName, string(meta.Format), meta.Location,
			string(partitionsJSON), string(propertiesJSON), meta.SupportsTimeTravel,
			nullableInt64(meta.NumFiles), nullableInt64(meta.SizeBytes), nullableInt64(meta.RowCount),
			now.UnixMilli(), now.UnixMilli(),
		)
		if err != nil {
			return "", errors.NewStorageBackend("save", err)
		}
		meta.CreatedAt = now

	case err != nil:
		return "", errors.NewStorageBackend("save", err)

	default:
		// A table's format is immutable once stored; a re-discovery
		// that yields a different format must not silently replace it.
		if existingFormat != string(meta.Format) {
			return "", errors.NewFormatMismatch(meta.TableName, existingFormat, string(meta.Format))
		}
		_, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE table_metadata
				SET location = ?, partitions_json = ?, properties_json = ?,
				    supports_time_travel = ?, num_files = ?, size_bytes = ?, row_count = ?,
				    updated_at = ?
				WHERE id = ?`),
			meta.Location, string(partitionsJSON), string(propertiesJSON),
			meta.SupportsTimeTravel,
			nullableInt64(meta.NumFiles), nullableInt64(meta.SizeBytes), nullableInt64(meta.RowCount),
			now.UnixMilli(), id,
		)
		if err != nil {
			return "", errors.NewStorageBackend("save", err)
		}
		if _, err = tx.ExecContext(ctx,
			s.rebind(`DELETE FROM column_metadata WHERE table_id = ?`), id,
		); err != nil {
			return "", errors.NewStorageBackend("save", err)
		}
		meta.CreatedAt = time.UnixMilli(existingCreatedAt).UTC()
	}

	for i, col := range meta.Columns {
		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO column_metadata
				(id, table_id, column_name, data_type, nullable, comment, column_order)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
			uuid.NewString(), id, col.Name, col.DataType, col.Nullable,
			nullableString(col.Comment), i,
		)
		if err != nil {
			return "", errors.NewStorageBackend("save", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.NewStorageBackend("save", err)
	}

	meta.ID = id
	meta.UpdatedAt = now
	return id, nil
}

// Get retrieves one table with its columns in declared order.
func (s *SQLStore) Get(ctx context.Context, name string) (*catalog.TableMetadata, error) {
	if name == "" {
		return nil, errors.NewInvalidMetadata("table_name", "cannot be empty")
	}

	var (
		meta           catalog.TableMetadata
		format         string
		partitionsJSON string
		propertiesJSON string
		numFiles       sql.NullInt64
		sizeBytes      sql.NullInt64
		rowCount       sql.NullInt64
		createdAt      int64
		updatedAt      int64
	)

	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, table_name, format, location, partitions_json, properties_json,
			supports_time_travel, num_files, size_bytes, row_count, created_at, updated_at
			FROM table_metadata WHERE table_name = ?`),
		name,
	).Scan(&meta.ID, &meta.TableName, &format, &meta.Location, &partitionsJSON, &propertiesJSON,
		&meta.SupportsTimeTravel, &numFiles, &sizeBytes, &rowCount, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, errors.NewTableNotFound(name)
	}
	if err != nil {
		return nil, errors.NewStorageBackend("get", err)
	}

	meta.Format = catalog.TableFormat(format)
	meta.CreatedAt = time.UnixMilli(createdAt).UTC()
	meta.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if err := json.Unmarshal([]byte(partitionsJSON), &meta.Partitions); err != nil {
		return nil, errors.NewStorageBackend("get", err)
	}
	if err := json.Unmarshal([]byte(propertiesJSON), &meta.Properties); err != nil {
		return nil, errors.NewStorageBackend("get", err)
	}
	if numFiles.Valid {
		meta.NumFiles = &numFiles.Int64
	}
	if sizeBytes.Valid {
		meta.SizeBytes = &sizeBytes.Int64
	}
	if rowCount.Valid {
		meta.RowCount = &rowCount.Int64
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT column_name, data_type, nullable, comment
			FROM column_metadata WHERE table_id = ? ORDER BY column_order`),
		meta.ID,
	)
	if err != nil {
		return nil, errors.NewStorageBackend("get", err)
	}
	defer rows.Close()

	for rows.Next() {
		var col catalog.ColumnMetadata
		var comment sql.NullString
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &comment); err != nil {
			return nil, errors.NewStorageBackend("get", err)
		}
		col.Comment = comment.String
		meta.Columns = append(meta.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageBackend("get", err)
	}

	return &meta, nil
}

// List returns table names sorted by name, optionally filtered by format.
func (s *SQLStore) List(ctx context.Context, format catalog.TableFormat) ([]string, error) {
	query := `SELECT table_name FROM table_metadata ORDER BY table_name`
	args := []any{}
	if format != "" && format != catalog.FormatUnknown {
		query = `SELECT table_name FROM table_metadata WHERE format = ? ORDER BY table_name`
		args = append(args, string(format))
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, errors.NewStorageBackend("list", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewStorageBackend("list", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageBackend("list", err)
	}
	return names, nil
}

// Delete removes a table and its columns in one transaction.
func (s *SQLStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return errors.NewInvalidMetadata("table_name", "cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageBackend("delete", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		s.rebind(`SELECT id FROM table_metadata WHERE table_name = ?`), name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return errors.NewTableNotFound(name)
	}
	if err != nil {
		return errors.NewStorageBackend("delete", err)
	}

	// Cascade explicitly rather than trusting the driver's foreign-key
	// pragma state.
	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM column_metadata WHERE table_id = ?`), id,
	); err != nil {
		return errors.NewStorageBackend("delete", err)
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM table_metadata WHERE id = ?`), id,
	); err != nil {
		return errors.NewStorageBackend("delete", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageBackend("delete", err)
	}
	return nil
}

// Count returns the number of discovered tables.
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM table_metadata`).Scan(&count)
	if err != nil {
		return 0, errors.NewStorageBackend("count", err)
	}
	return count, nil
}

// CheckConnectivity verifies database connectivity.
func (s *SQLStore) CheckConnectivity(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewStorageBackend("ping", err)
	}
	return nil
}

// nullableString converts empty strings to nil for SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableInt64 converts nil pointers to SQL NULL.
func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Ensure SQLStore implements MetadataStore.
var _ MetadataStore = (*SQLStore)(nil)
