package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database and runs migrations.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		db.Close()
		s.db = nil
		return err
	}

	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Run operations ---

// CreateRun creates a new run in running state.
func (s *SQLiteStore) CreateRun(projectDir string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:         generateID(),
		ProjectDir: projectDir,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, project_dir, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.ProjectDir, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// CompleteRun marks a run as completed with the given status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, project_dir, status, started_at, completed_at, error FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.ProjectDir, &run.Status, &run.StartedAt, &completedAt, &errMsg)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return run, nil
}

// ListRuns retrieves the most recent runs up to the given limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, project_dir, status, started_at, completed_at, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var completedAt sql.NullTime
		var errMsg sql.NullString

		if err := rows.Scan(&run.ID, &run.ProjectDir, &run.Status, &run.StartedAt, &completedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// --- Resolution operations ---

// RecordResolution records the outcome of resolving one definition file.
func (s *SQLiteStore) RecordResolution(res *Resolution) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if res.ID == "" {
		res.ID = generateID()
	}
	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = time.Now().UTC()
	}

	var errorPtr *string
	if res.Error != "" {
		errorPtr = &res.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO resolutions (id, run_id, resolver, definition_file, status, packages, edges, error, duration_ms, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.RunID, res.Resolver, res.DefinitionFile, res.Status, res.Packages, res.Edges, errorPtr, res.DurationMS, res.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record resolution: %w", err)
	}

	return nil
}

// GetResolutionsForRun retrieves all resolutions for a given run.
func (s *SQLiteStore) GetResolutionsForRun(runID string) ([]*Resolution, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, resolver, definition_file, status, packages, edges, error, duration_ms, resolved_at
		 FROM resolutions WHERE run_id = ? ORDER BY resolved_at, definition_file`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolutions: %w", err)
	}
	defer rows.Close()

	var resolutions []*Resolution
	for rows.Next() {
		res := &Resolution{}
		var errMsg sql.NullString

		err := rows.Scan(&res.ID, &res.RunID, &res.Resolver, &res.DefinitionFile, &res.Status,
			&res.Packages, &res.Edges, &errMsg, &res.DurationMS, &res.ResolvedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resolution: %w", err)
		}

		if errMsg.Valid {
			res.Error = errMsg.String
		}
		resolutions = append(resolutions, res)
	}

	return resolutions, rows.Err()
}

// Ensure SQLiteStore implements the Store interface.
var _ Store = (*SQLiteStore)(nil)
