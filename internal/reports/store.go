package reports

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id           INTEGER PRIMARY KEY,
	generated_at TEXT NOT NULL,
	description  TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	status       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS anomalies (
	id              INTEGER PRIMARY KEY,
	report_id       INTEGER NOT NULL,
	latitude        REAL NOT NULL,
	longitude       REAL NOT NULL,
	detected_minute INTEGER NOT NULL,
	status          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS anomalies_report_id ON anomalies (report_id);
`

// Store manages SQLite storage for reports and their anomalies. Both cascade
// paths (report deletion removing its anomalies, the last pending anomaly
// resolving its report) run inside a single immediate transaction.
type Store struct {
	pool *sqlitex.Pool
}

// OpenStore opens (and if needed creates) the reports database.
func OpenStore(path string) (*Store, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: 4,
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reports: opening db %q: %w", path, err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// ListReports returns all reports ordered by id.
func (s *Store) ListReports(ctx context.Context) ([]Report, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: list: %w", err)
	}
	defer s.pool.Put(conn)

	var out []Report
	err = sqlitex.Execute(conn,
		"SELECT id, generated_at, description, file_name, latitude, longitude, status FROM reports ORDER BY id",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, scanReport(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("reports: list: %w", err)
	}
	return out, nil
}

// GetReport returns one report by id; the second return is false when the
// id is unknown.
func (s *Store) GetReport(ctx context.Context, id int64) (Report, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Report{}, false, fmt.Errorf("reports: get %d: %w", id, err)
	}
	defer s.pool.Put(conn)

	var rep Report
	found := false
	err = sqlitex.Execute(conn,
		"SELECT id, generated_at, description, file_name, latitude, longitude, status FROM reports WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				rep = scanReport(stmt)
				return nil
			},
		})
	if err != nil {
		return Report{}, false, fmt.Errorf("reports: get %d: %w", id, err)
	}
	return rep, found, nil
}

// CreateReport inserts a report and returns its id. An empty status defaults
// to pending.
func (s *Store) CreateReport(ctx context.Context, rep Report) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("reports: create: %w", err)
	}
	defer s.pool.Put(conn)

	if rep.Status == "" {
		rep.Status = StatusPending
	}
	err = sqlitex.Execute(conn,
		"INSERT INTO reports (generated_at, description, file_name, latitude, longitude, status) VALUES (?, ?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{rep.GeneratedAt, rep.Description, rep.FileName, rep.Latitude, rep.Longitude, rep.Status},
		})
	if err != nil {
		return 0, fmt.Errorf("reports: create: %w", err)
	}
	return conn.LastInsertRowID(), nil
}

// UpdateReport replaces all mutable fields of a report. The second return is
// false when the id is unknown.
func (s *Store) UpdateReport(ctx context.Context, id int64, rep Report) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("reports: update %d: %w", id, err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"UPDATE reports SET generated_at = ?, description = ?, file_name = ?, latitude = ?, longitude = ?, status = ? WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{rep.GeneratedAt, rep.Description, rep.FileName, rep.Latitude, rep.Longitude, rep.Status, id},
		})
	if err != nil {
		return false, fmt.Errorf("reports: update %d: %w", id, err)
	}
	return conn.Changes() > 0, nil
}

// DeleteReport removes a report and, in the same transaction, every anomaly
// that belongs to it. Deleting an unknown id is a no-op.
func (s *Store) DeleteReport(ctx context.Context, id int64) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("reports: delete %d: %w", id, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("reports: delete %d: begin: %w", id, err)
	}
	defer endTransaction(&err)

	if err = sqlitex.Execute(conn, "DELETE FROM anomalies WHERE report_id = ?",
		&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return fmt.Errorf("reports: delete %d anomalies: %w", id, err)
	}
	if err = sqlitex.Execute(conn, "DELETE FROM reports WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return fmt.Errorf("reports: delete %d: %w", id, err)
	}
	return nil
}

// ListAnomalies returns all anomalies ordered by id.
func (s *Store) ListAnomalies(ctx context.Context) ([]Anomaly, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("reports: list anomalies: %w", err)
	}
	defer s.pool.Put(conn)

	var out []Anomaly
	err = sqlitex.Execute(conn,
		"SELECT id, report_id, latitude, longitude, detected_minute, status FROM anomalies ORDER BY id",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, scanAnomaly(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("reports: list anomalies: %w", err)
	}
	return out, nil
}

// CreateAnomaly inserts an anomaly and returns its id. An empty status
// defaults to pending.
func (s *Store) CreateAnomaly(ctx context.Context, a Anomaly) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("reports: create anomaly: %w", err)
	}
	defer s.pool.Put(conn)

	if a.Status == "" {
		a.Status = StatusPending
	}
	err = sqlitex.Execute(conn,
		"INSERT INTO anomalies (report_id, latitude, longitude, detected_minute, status) VALUES (?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{a.ReportID, a.Latitude, a.Longitude, a.DetectedMinute, a.Status},
		})
	if err != nil {
		return 0, fmt.Errorf("reports: create anomaly: %w", err)
	}
	return conn.LastInsertRowID(), nil
}

// UpdateAnomaly replaces all mutable fields of an anomaly. When the update
// resolves the report's last pending anomaly, the report itself transitions
// to resolved in the same transaction. The second return is false when the
// id is unknown.
func (s *Store) UpdateAnomaly(ctx context.Context, id int64, a Anomaly) (found bool, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("reports: update anomaly %d: %w", id, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return false, fmt.Errorf("reports: update anomaly %d: begin: %w", id, err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn,
		"UPDATE anomalies SET report_id = ?, latitude = ?, longitude = ?, detected_minute = ?, status = ? WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{a.ReportID, a.Latitude, a.Longitude, a.DetectedMinute, a.Status, id},
		})
	if err != nil {
		return false, fmt.Errorf("reports: update anomaly %d: %w", id, err)
	}
	if conn.Changes() == 0 {
		return false, nil
	}

	if a.Status == StatusResolved {
		if err = s.resolveReportIfDone(conn, a.ReportID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// DeleteAnomaly removes one anomaly. Deleting an unknown id is a no-op.
func (s *Store) DeleteAnomaly(ctx context.Context, id int64) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("reports: delete anomaly %d: %w", id, err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM anomalies WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return fmt.Errorf("reports: delete anomaly %d: %w", id, err)
	}
	return nil
}

// resolveReportIfDone marks the report resolved once it has no pending
// anomalies left. Caller must hold an open transaction.
func (s *Store) resolveReportIfDone(conn *sqlite.Conn, reportID int64) error {
	pending := 0
	err := sqlitex.Execute(conn,
		"SELECT COUNT(*) FROM anomalies WHERE report_id = ? AND status = ?",
		&sqlitex.ExecOptions{
			Args: []any{reportID, StatusPending},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				pending = stmt.ColumnInt(0)
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("reports: counting pending anomalies for %d: %w", reportID, err)
	}
	if pending > 0 {
		return nil
	}

	if err := sqlitex.Execute(conn,
		"UPDATE reports SET status = ? WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{StatusResolved, reportID}}); err != nil {
		return fmt.Errorf("reports: resolving report %d: %w", reportID, err)
	}
	return nil
}

func scanReport(stmt *sqlite.Stmt) Report {
	return Report{
		ID:          stmt.ColumnInt64(0),
		GeneratedAt: stmt.ColumnText(1),
		Description: stmt.ColumnText(2),
		FileName:    stmt.ColumnText(3),
		Latitude:    stmt.ColumnFloat(4),
		Longitude:   stmt.ColumnFloat(5),
		Status:      stmt.ColumnText(6),
	}
}

func scanAnomaly(stmt *sqlite.Stmt) Anomaly {
	return Anomaly{
		ID:             stmt.ColumnInt64(0),
		ReportID:       stmt.ColumnInt64(1),
		Latitude:       stmt.ColumnFloat(2),
		Longitude:      stmt.ColumnFloat(3),
		DetectedMinute: stmt.ColumnInt(4),
		Status:         stmt.ColumnText(5),
	}
}
