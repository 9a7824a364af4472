// Package sqlite is an embedded roster store for running without Postgres.
// It implements the same repositories as the postgres package on a single
// SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS students (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id INTEGER NOT NULL UNIQUE CHECK (id > 0),
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    age INTEGER NOT NULL DEFAULT 0,
    field TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_students_location ON students(location);

CREATE TABLE IF NOT EXISTS grades (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id INTEGER NOT NULL,
    grade TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tag_maps (
    name TEXT PRIMARY KEY,
    entries TEXT NOT NULL
);
`

// Store implements roster.Repository and roster.TagRepository with SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ roster.Repository    = (*Store)(nil)
	_ roster.TagRepository = (*Store)(nil)
)

// Open opens or creates a SQLite database at path and applies the schema.
// The parent directory is created if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case v != schemaVersion:
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements the health checker contract.
func (s *Store) Name() string { return "sqlite" }

// Check implements the health checker contract.
func (s *Store) Check(ctx context.Context) error { return s.db.PingContext(ctx) }

// Students returns every student in insertion order.
func (s *Store) Students(ctx context.Context) (roster.Roster, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, age, field, location FROM students ORDER BY seq`)
	if err != nil {
		return nil, cannotLoad("Students", err)
	}
	defer rows.Close()

	students := roster.Roster{}
	for rows.Next() {
		var r roster.StudentRecord
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Age, &r.Field, &r.Location); err != nil {
			return nil, cannotLoad("Students", err)
		}
		students = append(students, r)
	}
	if err := rows.Err(); err != nil {
		return nil, cannotLoad("Students", err)
	}
	return students, nil
}

// Grades returns every grade entry in insertion order.
func (s *Store) Grades(ctx context.Context) (roster.GradeBook, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT student_id, grade FROM grades ORDER BY seq`)
	if err != nil {
		return nil, cannotLoad("Grades", err)
	}
	defer rows.Close()

	grades := roster.GradeBook{}
	for rows.Next() {
		var g roster.GradeEntry
		if err := rows.Scan(&g.StudentID, &g.Grade); err != nil {
			return nil, cannotLoad("Grades", err)
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, cannotLoad("Grades", err)
	}
	return grades, nil
}

// SaveStudents upserts all records in one transaction. An existing ID keeps
// its position in the roster.
func (s *Store) SaveStudents(ctx context.Context, students roster.Roster) error {
	for _, st := range students {
		if err := st.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO students (id, first_name, last_name, age, field, location)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			age = excluded.age,
			field = excluded.field,
			location = excluded.location`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, st := range students {
		if _, err := stmt.ExecContext(ctx, st.ID, st.FirstName, st.LastName, st.Age, st.Field, st.Location); err != nil {
			return fmt.Errorf("save student %d: %w", st.ID, err)
		}
	}

	return tx.Commit()
}

// RecordGrade appends a grade entry.
func (s *Store) RecordGrade(ctx context.Context, entry roster.GradeEntry) error {
	if entry.Grade == "" {
		return shared.NewDomainError("sqlite", "RecordGrade", shared.ErrEmptyValue, "grade is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grades (student_id, grade) VALUES (?, ?)`, entry.StudentID, entry.Grade)
	if err != nil {
		return fmt.Errorf("record grade: %w", err)
	}
	return nil
}

// LoadTags returns the tag map stored under name.
func (s *Store) LoadTags(ctx context.Context, name string) (*roster.TagMap, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("sqlite", "LoadTags", shared.ErrEmptyValue, "tag map name is required")
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT entries FROM tag_maps WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrTagMapNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tag map %q: %w", name, err)
	}

	tags := roster.NewTagMap()
	if err := tags.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("stored tag map %q is corrupt: %w", name, err)
	}
	return tags, nil
}

// SaveTags replaces the tag map stored under name.
func (s *Store) SaveTags(ctx context.Context, name string, tags *roster.TagMap) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("sqlite", "SaveTags", shared.ErrEmptyValue, "tag map name is required")
	}
	if tags == nil {
		return shared.NewDomainError("sqlite", "SaveTags", shared.ErrInvalidInput, "tag map is nil")
	}

	data, err := tags.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode tag map %q: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tag_maps (name, entries) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET entries = excluded.entries`, name, string(data))
	if err != nil {
		return fmt.Errorf("save tag map %q: %w", name, err)
	}
	return nil
}

func cannotLoad(op string, err error) error {
	return shared.WrapError("sqlite", op, roster.ErrCannotLoadDatabase, "Cannot load the database", err)
}
