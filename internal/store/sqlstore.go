package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mlem2/internal/logging"
)

const currentSchemaVersion = schemaVersionV2

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.New("store").Debug("history opened", "path", path, "schema", currentSchemaVersion)
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch v {
	case currentSchemaVersion:
		return nil
	case schemaVersionV1:
		return s.migrateV1ToV2()
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

func (s *SqlStore) freshInstall() error {
	if _, err := s.db.Exec(schemaV2); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

func (s *SqlStore) migrateV1ToV2() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrationV1ToV2); err != nil {
		return fmt.Errorf("v1→v2 migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	logging.New("store").Info("history migrated", "from", schemaVersionV1, "to", schemaVersionV2)
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and its rules in one transaction.
func (s *SqlStore) SaveRun(run *Run) (int64, error) {
	if run == nil {
		return 0, errors.New("run is nil")
	}
	if run.CreatedAt == "" {
		run.CreatedAt = nowUTC()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO runs(dataset, ruleset, cases, incomplete, elapsed_ms, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		run.Dataset, run.RuleSet, run.Cases, boolInt(run.Incomplete), run.Elapsed.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	for i, r := range run.Rules {
		covered, err := json.Marshal(r.Covered)
		if err != nil {
			return 0, fmt.Errorf("encode covered cases: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO rules(run_id, position, text, covered) VALUES(?, ?, ?, ?)",
			id, i, r.Text, string(covered),
		); err != nil {
			return 0, fmt.Errorf("insert rule: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save tx: %w", err)
	}
	run.ID = id
	return id, nil
}

// GetRun returns the run by id with its rules in induction order.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	var (
		r          Run
		incomplete int
		elapsedMS  int64
	)
	err := s.db.QueryRow(
		`SELECT id, dataset, ruleset, cases, incomplete, elapsed_ms, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Dataset, &r.RuleSet, &r.Cases, &incomplete, &elapsedMS, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	r.Incomplete = incomplete == 1
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	rows, err := s.db.Query("SELECT text, covered FROM rules WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()
	r.Rules = []Rule{}
	for rows.Next() {
		var (
			rule    Rule
			covered string
		)
		if err := rows.Scan(&rule.Text, &covered); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(covered), &rule.Covered); err != nil {
			return nil, fmt.Errorf("decode covered cases: %w", err)
		}
		r.Rules = append(r.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return &r, nil
}

// ListRuns returns all runs, newest first.
func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, dataset, ruleset, cases, incomplete, elapsed_ms, created_at
		 FROM runs ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var list []*Run
	for rows.Next() {
		var (
			r          Run
			incomplete int
			elapsedMS  int64
		)
		if err := rows.Scan(&r.ID, &r.Dataset, &r.RuleSet, &r.Cases, &incomplete, &elapsedMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Incomplete = incomplete == 1
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		list = append(list, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return list, nil
}

// DeleteRun removes a run and its rules. Deleting a missing run is not an error.
func (s *SqlStore) DeleteRun(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec("DELETE FROM rules WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("delete rules: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
