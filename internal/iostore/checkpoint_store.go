package iostore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// CheckpointStoreImpl handles durable storage of finished metric rows
// using various database backends.
type CheckpointStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.StoreBackend
	connStr   string
}

var _ contract.CheckpointStore = &CheckpointStoreImpl{} // Compile-time check

// NewCheckpointStore initializes and returns a new CheckpointStore based on the backend type.
func NewCheckpointStore(tableName string, backend schema.StoreBackend, connStr string) (contract.CheckpointStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	// Return a no-op store for disabled checkpointing
	if backend == schema.NoneBackend {
		return &CheckpointStoreImpl{
			db:        nil,
			tableName: tableName,
			backend:   backend,
			connStr:   connStr,
		}, nil
	}

	db, _, err := openStoreDB(backend, connStr, GetCheckpointDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schema
	query := getCreateCheckpointQuery(tableName, backend)
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &CheckpointStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateCheckpointQuery returns the CREATE TABLE query for the given backend.
func getCreateCheckpointQuery(tableName string, backend schema.StoreBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sha VARCHAR(64) PRIMARY KEY,
				fingerprint VARCHAR(64) NOT NULL,
				repo VARCHAR(255) NOT NULL,
				mi_before DOUBLE NOT NULL,
				mi_after DOUBLE NOT NULL,
				cc_before DOUBLE NOT NULL,
				cc_after DOUBLE NOT NULL,
				loc_before DOUBLE NOT NULL,
				loc_after DOUBLE NOT NULL,
				files_before INT NOT NULL,
				files_after INT NOT NULL,
				saved_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sha TEXT PRIMARY KEY,
				fingerprint TEXT NOT NULL,
				repo TEXT NOT NULL,
				mi_before DOUBLE PRECISION NOT NULL,
				mi_after DOUBLE PRECISION NOT NULL,
				cc_before DOUBLE PRECISION NOT NULL,
				cc_after DOUBLE PRECISION NOT NULL,
				loc_before DOUBLE PRECISION NOT NULL,
				loc_after DOUBLE PRECISION NOT NULL,
				files_before INTEGER NOT NULL,
				files_after INTEGER NOT NULL,
				saved_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sha TEXT PRIMARY KEY,
				fingerprint TEXT NOT NULL,
				repo TEXT NOT NULL,
				mi_before REAL NOT NULL,
				mi_after REAL NOT NULL,
				cc_before REAL NOT NULL,
				cc_after REAL NOT NULL,
				loc_before REAL NOT NULL,
				loc_after REAL NOT NULL,
				files_before INTEGER NOT NULL,
				files_after INTEGER NOT NULL,
				saved_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get returns the stored row for the SHA when its fingerprint matches.
func (cs *CheckpointStoreImpl) Get(sha, fingerprint string) (schema.CommitMetricRow, bool, error) {
	// Return not found for NoneBackend
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return schema.CommitMetricRow{}, false, nil
	}

	quotedTableName := quoteTableName(cs.tableName, cs.backend)

	var query string
	switch cs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT sha, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after
			FROM %s WHERE sha = $1 AND fingerprint = $2`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT sha, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after
			FROM %s WHERE sha = ? AND fingerprint = ?`, quotedTableName)
	}

	var row schema.CommitMetricRow
	err := cs.db.QueryRow(query, sha, fingerprint).Scan(
		&row.SHA, &row.Repo,
		&row.MIBefore, &row.MIAfter,
		&row.CCBefore, &row.CCAfter,
		&row.LOCBefore, &row.LOCAfter,
		&row.FilesBefore, &row.FilesAfter,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.CommitMetricRow{}, false, nil
	}
	if err != nil {
		return schema.CommitMetricRow{}, false, fmt.Errorf("failed to read checkpoint for %s: %w", sha, err)
	}
	return row, true, nil
}

// Put stores or replaces the row for its SHA.
func (cs *CheckpointStoreImpl) Put(row schema.CommitMetricRow, fingerprint string, timestamp int64) error {
	// Skip for NoneBackend
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil
	}

	// Use backend-specific UPSERT
	query := cs.getUpsertQuery()
	_, err := cs.db.Exec(query,
		row.SHA, fingerprint, row.Repo,
		row.MIBefore, row.MIAfter,
		row.CCBefore, row.CCAfter,
		row.LOCBefore, row.LOCAfter,
		row.FilesBefore, row.FilesAfter,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to write checkpoint for %s: %w", row.SHA, err)
	}
	return nil
}

// getUpsertQuery returns the UPSERT query for the backend.
func (cs *CheckpointStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(cs.tableName, cs.backend)
	switch cs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (sha, fingerprint, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after, saved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE fingerprint = new.fingerprint, repo = new.repo,
				mi_before = new.mi_before, mi_after = new.mi_after,
				cc_before = new.cc_before, cc_after = new.cc_after,
				loc_before = new.loc_before, loc_after = new.loc_after,
				files_before = new.files_before, files_after = new.files_after,
				saved_at = new.saved_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (sha, fingerprint, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after, saved_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (sha) DO UPDATE SET fingerprint = EXCLUDED.fingerprint, repo = EXCLUDED.repo,
				mi_before = EXCLUDED.mi_before, mi_after = EXCLUDED.mi_after,
				cc_before = EXCLUDED.cc_before, cc_after = EXCLUDED.cc_after,
				loc_before = EXCLUDED.loc_before, loc_after = EXCLUDED.loc_after,
				files_before = EXCLUDED.files_before, files_after = EXCLUDED.files_after,
				saved_at = EXCLUDED.saved_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (sha, fingerprint, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after, saved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
	}
}

// All returns every stored row matching the fingerprint. An empty
// fingerprint matches every row.
func (cs *CheckpointStoreImpl) All(fingerprint string) ([]schema.CommitMetricRow, error) {
	// Return no rows for NoneBackend
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(cs.tableName, cs.backend)

	var rows *sql.Rows
	var err error
	if fingerprint == "" {
		query := fmt.Sprintf(`SELECT sha, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after
			FROM %s ORDER BY sha`, quotedTableName)
		rows, err = cs.db.Query(query)
	} else {
		var query string
		switch cs.backend {
		case schema.PostgreSQLBackend:
			query = fmt.Sprintf(`SELECT sha, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after
				FROM %s WHERE fingerprint = $1 ORDER BY sha`, quotedTableName)
		default: // SQLite and MySQL
			query = fmt.Sprintf(`SELECT sha, repo, mi_before, mi_after, cc_before, cc_after, loc_before, loc_after, files_before, files_after
				FROM %s WHERE fingerprint = ? ORDER BY sha`, quotedTableName)
		}
		rows, err = cs.db.Query(query, fingerprint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CommitMetricRow
	for rows.Next() {
		var row schema.CommitMetricRow
		if err := rows.Scan(
			&row.SHA, &row.Repo,
			&row.MIBefore, &row.MIAfter,
			&row.CCBefore, &row.CCAfter,
			&row.LOCBefore, &row.LOCAfter,
			&row.FilesBefore, &row.FilesAfter,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoint rows: %w", err)
	}

	return results, nil
}

// Clear removes all stored rows.
func (cs *CheckpointStoreImpl) Clear() error {
	// Skip for NoneBackend
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(cs.tableName, cs.backend)
	query := fmt.Sprintf("DELETE FROM %s", quotedTableName)
	if _, err := cs.db.Exec(query); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (cs *CheckpointStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the checkpoint store.
func (cs *CheckpointStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Name:    "checkpoints",
		Backend: cs.backend,
	}

	if cs.backend == schema.NoneBackend || cs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(cs.tableName, cs.backend)

	// Get total rows
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := cs.db.QueryRow(countQuery).Scan(&status.Rows); err != nil {
		return status, fmt.Errorf("failed to get checkpoint count: %w", err)
	}

	if status.Rows > 0 {
		// saved_at is stored as unix seconds on every backend
		var oldestTs, newestTs int64
		rangeQuery := fmt.Sprintf("SELECT MIN(saved_at), MAX(saved_at) FROM %s", quotedTableName)
		if err := cs.db.QueryRow(rangeQuery).Scan(&oldestTs, &newestTs); err != nil {
			return status, fmt.Errorf("failed to get checkpoint time range: %w", err)
		}
		status.Oldest = time.Unix(oldestTs, 0)
		status.Newest = time.Unix(newestTs, 0)
	}

	status.SizeBytes, status.SizeKnown = tableSizeBytes(cs.db, cs.backend, cs.connStr, cs.tableName)

	return status, nil
}
