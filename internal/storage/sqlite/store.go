// Package sqlite archives scenarios and security marks in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	sqlitemigrate "github.com/neetkit/cardforge/internal/platform/storage/sqlitemigrate"
	"github.com/neetkit/cardforge/internal/platform/timeouts"
	"github.com/neetkit/cardforge/internal/storage"
	"github.com/neetkit/cardforge/internal/storage/sqlite/migrations"
)

// Store provides SQLite-backed persistence for the scenario archive.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Archive = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an archive SQLite store at the provided path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL&_pragma=foreign_keys(ON)",
		cleanPath, timeouts.SQLiteBusy.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func ensureForeignKeysEnabled(ctx context.Context, db *sql.DB) error {
	var enabled int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutScenario archives a scenario run, replacing any earlier run with the
// same name. Names are stored exactly as given since the derived seed depends
// on every byte. A missing run id is filled with a fresh UUID.
func (s *Store) PutScenario(ctx context.Context, record storage.ScenarioRecord) (storage.ScenarioRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ScenarioRecord{}, err
	}
	if strings.TrimSpace(record.Name) == "" {
		return storage.ScenarioRecord{}, fmt.Errorf("scenario name is required")
	}
	if strings.TrimSpace(record.RunID) == "" {
		record.RunID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = fromMillis(toMillis(record.CreatedAt))

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.ScenarioRecord{}, fmt.Errorf("begin scenario write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback scenario write: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, record.Name); err != nil {
		return storage.ScenarioRecord{}, rollbackWith(fmt.Errorf("replace scenario: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO scenarios (name, run_id, derived_seed, aggregate_hash, step_count, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, record.Name, record.RunID, int64(record.DerivedSeed), record.AggregateHash, record.StepCount, toMillis(record.CreatedAt)); err != nil {
		return storage.ScenarioRecord{}, rollbackWith(fmt.Errorf("insert scenario: %w", err))
	}
	for _, obj := range record.Objects {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scenario_objects (run_id, position, object_id, name, description, object_type, attributes_json, security_tag)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, record.RunID, obj.Position, obj.ID, obj.Name, obj.Description, obj.ObjectType, obj.AttributesJSON, obj.SecurityTag); err != nil {
			return storage.ScenarioRecord{}, rollbackWith(fmt.Errorf("insert scenario object %d: %w", obj.Position, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return storage.ScenarioRecord{}, fmt.Errorf("commit scenario write: %w", err)
	}
	return record, nil
}

// GetScenario loads the latest archived run of name with its objects.
func (s *Store) GetScenario(ctx context.Context, name string) (storage.ScenarioRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ScenarioRecord{}, err
	}
	if strings.TrimSpace(name) == "" {
		return storage.ScenarioRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT name, run_id, derived_seed, aggregate_hash, step_count, created_at
FROM scenarios
WHERE name = ?
`, name)
	record, err := scanScenario(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ScenarioRecord{}, storage.ErrNotFound
		}
		return storage.ScenarioRecord{}, fmt.Errorf("get scenario: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT position, object_id, name, description, object_type, attributes_json, security_tag
FROM scenario_objects
WHERE run_id = ?
ORDER BY position
`, record.RunID)
	if err != nil {
		return storage.ScenarioRecord{}, fmt.Errorf("list scenario objects: %w", err)
	}
	defer rows.Close()

	record.Objects = []storage.ObjectRecord{}
	for rows.Next() {
		var obj storage.ObjectRecord
		if err := rows.Scan(&obj.Position, &obj.ID, &obj.Name, &obj.Description, &obj.ObjectType, &obj.AttributesJSON, &obj.SecurityTag); err != nil {
			return storage.ScenarioRecord{}, fmt.Errorf("scan scenario object: %w", err)
		}
		record.Objects = append(record.Objects, obj)
	}
	if err := rows.Err(); err != nil {
		return storage.ScenarioRecord{}, fmt.Errorf("iterate scenario objects: %w", err)
	}
	return record, nil
}

// ListScenarios lists archived scenario headers ordered by name.
func (s *Store) ListScenarios(ctx context.Context) ([]storage.ScenarioRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, run_id, derived_seed, aggregate_hash, step_count, created_at
FROM scenarios
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var records []storage.ScenarioRecord
	for rows.Next() {
		record, err := scanScenario(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return records, nil
}

// PutMark archives a security mark, replacing any earlier one.
func (s *Store) PutMark(ctx context.Context, record storage.MarkRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.SubjectID) == "" {
		return fmt.Errorf("subject id is required")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO security_marks (subject_id, integrity_digest, perception_tag, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(subject_id) DO UPDATE SET
    integrity_digest = excluded.integrity_digest,
    perception_tag = excluded.perception_tag,
    updated_at = excluded.updated_at
`, record.SubjectID, record.IntegrityDigest, record.Perception, toMillis(record.UpdatedAt)); err != nil {
		return fmt.Errorf("put security mark: %w", err)
	}
	return nil
}

// GetMark loads one archived security mark.
func (s *Store) GetMark(ctx context.Context, subjectID string) (storage.MarkRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.MarkRecord{}, err
	}
	if strings.TrimSpace(subjectID) == "" {
		return storage.MarkRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT subject_id, integrity_digest, perception_tag, updated_at
FROM security_marks
WHERE subject_id = ?
`, subjectID)
	record, err := scanMark(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MarkRecord{}, storage.ErrNotFound
		}
		return storage.MarkRecord{}, fmt.Errorf("get security mark: %w", err)
	}
	return record, nil
}

// ListMarks lists archived security marks ordered by subject id.
func (s *Store) ListMarks(ctx context.Context) ([]storage.MarkRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT subject_id, integrity_digest, perception_tag, updated_at
FROM security_marks
ORDER BY subject_id
`)
	if err != nil {
		return nil, fmt.Errorf("list security marks: %w", err)
	}
	defer rows.Close()

	var records []storage.MarkRecord
	for rows.Next() {
		record, err := scanMark(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan security mark: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security marks: %w", err)
	}
	return records, nil
}

func scanScenario(scan func(dest ...any) error) (storage.ScenarioRecord, error) {
	var (
		record      storage.ScenarioRecord
		derivedSeed int64
		createdAt   int64
	)
	if err := scan(&record.Name, &record.RunID, &derivedSeed, &record.AggregateHash, &record.StepCount, &createdAt); err != nil {
		return storage.ScenarioRecord{}, err
	}
	record.DerivedSeed = uint32(derivedSeed)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func scanMark(scan func(dest ...any) error) (storage.MarkRecord, error) {
	var (
		record    storage.MarkRecord
		updatedAt int64
	)
	if err := scan(&record.SubjectID, &record.IntegrityDigest, &record.Perception, &updatedAt); err != nil {
		return storage.MarkRecord{}, err
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
