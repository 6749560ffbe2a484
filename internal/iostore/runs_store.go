package iostore

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.StoreBackend
	connStr string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend. The
// schema is brought to the latest migration version on open.
func NewRunStore(backend schema.StoreBackend, connStr string) (contract.RunStore, error) {
	// Return a no-op store for disabled tracking
	if backend == schema.NoneBackend {
		return &RunStoreImpl{
			db:      nil,
			backend: backend,
		}, nil
	}

	db, _, err := openStoreDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	// Apply pending migrations
	if err := migrateRunsUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate run store: %w", err)
	}

	return &RunStoreImpl{
		db:      db,
		backend: backend,
		connStr: connStr,
	}, nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(start time.Time, workers int, notes string) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	var err error
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (started_at, workers, notes) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, start, workers, notes).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (started_at, workers, notes) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(start, rs.backend), workers, notes)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(id int64, end time.Time, summary schema.CollectSummary) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	durationMS := summary.Duration.Milliseconds()

	var query string
	var args []any
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET finished_at = $1, duration_ms = $2, sampled = $3, succeeded = $4, resumed = $5,
			skipped_fetch = $6, skipped_parse = $7, skipped_empty = $8 WHERE run_id = $9`, quotedTableName)
		args = []any{
			end, durationMS, summary.Sampled, summary.Succeeded, summary.Resumed,
			summary.Skipped[schema.SkipFetchFailure], summary.Skipped[schema.SkipParseFailure], summary.Skipped[schema.SkipEmptyPair], id,
		}
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET finished_at = ?, duration_ms = ?, sampled = ?, succeeded = ?, resumed = ?,
			skipped_fetch = ?, skipped_parse = ?, skipped_empty = ? WHERE run_id = ?`, quotedTableName)
		args = []any{
			formatTime(end, rs.backend), durationMS, summary.Sampled, summary.Succeeded, summary.Resumed,
			summary.Skipped[schema.SkipFetchFailure], summary.Skipped[schema.SkipParseFailure], summary.Skipped[schema.SkipEmptyPair], id,
		}
	}

	if _, err := rs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update run %d: %w", id, err)
	}

	return nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns all runs.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT run_id, started_at, finished_at, duration_ms, sampled, succeeded, resumed,
		skipped_fetch, skipped_parse, skipped_empty, workers, notes FROM %s ORDER BY run_id DESC`, quotedTableName)
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		record, err := rs.scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// scanRun decodes one run row, handling the per-backend time storage.
func (rs *RunStoreImpl) scanRun(rows *sql.Rows) (schema.RunRecord, error) {
	var record schema.RunRecord
	var durationMS, sampled, succeeded, resumed sql.NullInt64
	var skippedFetch, skippedParse, skippedEmpty sql.NullInt64
	var notes sql.NullString

	switch rs.backend {
	case schema.SQLiteBackend:
		var startedStr string
		var finishedStr sql.NullString
		if err := rows.Scan(&record.ID, &startedStr, &finishedStr, &durationMS, &sampled, &succeeded, &resumed,
			&skippedFetch, &skippedParse, &skippedEmpty, &record.Workers, &notes); err != nil {
			return record, fmt.Errorf("failed to scan run: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedStr)
		if err != nil {
			return record, fmt.Errorf("failed to parse started_at: %w", err)
		}
		record.StartedAt = started
		if finishedStr.Valid {
			finished, err := time.Parse(time.RFC3339Nano, finishedStr.String)
			if err != nil {
				return record, fmt.Errorf("failed to parse finished_at: %w", err)
			}
			record.FinishedAt = finished
		}
	default: // MySQL and PostgreSQL store as native datetime
		var finished sql.NullTime
		if err := rows.Scan(&record.ID, &record.StartedAt, &finished, &durationMS, &sampled, &succeeded, &resumed,
			&skippedFetch, &skippedParse, &skippedEmpty, &record.Workers, &notes); err != nil {
			return record, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			record.FinishedAt = finished.Time
		}
	}

	record.DurationMS = durationMS.Int64
	record.Sampled = int(sampled.Int64)
	record.Succeeded = int(succeeded.Int64)
	record.Resumed = int(resumed.Int64)
	record.SkippedFetch = int(skippedFetch.Int64)
	record.SkippedParse = int(skippedParse.Int64)
	record.SkippedEmpty = int(skippedEmpty.Int64)
	record.Notes = notes.String

	return record, nil
}

// Clear removes all stored runs.
func (rs *RunStoreImpl) Clear() error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf("DELETE FROM %s", quotedTableName)
	if _, err := rs.db.Exec(query); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Name:    "runs",
		Backend: rs.backend,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// Get total runs
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := rs.db.QueryRow(countQuery).Scan(&status.Rows); err != nil {
		return status, fmt.Errorf("failed to get run count: %w", err)
	}

	if status.Rows > 0 {
		// run_id is monotonic, so the id order gives the time range
		oldest, err := rs.startedAtByOrder("ASC")
		if err != nil {
			return status, err
		}
		newest, err := rs.startedAtByOrder("DESC")
		if err != nil {
			return status, err
		}
		status.Oldest = oldest
		status.Newest = newest
	}

	status.SizeBytes, status.SizeKnown = tableSizeBytes(rs.db, rs.backend, rs.connStr, runsTable)

	return status, nil
}

// startedAtByOrder returns the start time of the first run under the
// given run_id ordering.
func (rs *RunStoreImpl) startedAtByOrder(order string) (time.Time, error) {
	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf("SELECT started_at FROM %s ORDER BY run_id %s LIMIT 1", quotedTableName, order)
	row := rs.db.QueryRow(query)

	switch rs.backend {
	case schema.SQLiteBackend:
		var startedStr string
		if err := row.Scan(&startedStr); err != nil {
			return time.Time{}, fmt.Errorf("failed to get run time range: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse started_at: %w", err)
		}
		return started, nil
	default: // MySQL and PostgreSQL store as native datetime
		var started time.Time
		if err := row.Scan(&started); err != nil {
			return time.Time{}, fmt.Errorf("failed to get run time range: %w", err)
		}
		return started, nil
	}
}
