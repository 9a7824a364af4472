package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements roster.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

var _ roster.Repository = (*StudentRepository)(nil)

const selectStudents = `
	SELECT id, first_name, last_name, age, field, location
	FROM students
	ORDER BY seq
`

const upsertStudent = `
	INSERT INTO students (id, first_name, last_name, age, field, location)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		age = EXCLUDED.age,
		field = EXCLUDED.field,
		location = EXCLUDED.location,
		updated_at = NOW()
`

// Students returns every student in insertion order.
func (r *StudentRepository) Students(ctx context.Context) (roster.Roster, error) {
	rows, err := r.conn.Query(ctx, selectStudents)
	if err != nil {
		return nil, cannotLoad("Students", err)
	}
	defer rows.Close()

	students, err := scanStudents(rows)
	if err != nil {
		return nil, cannotLoad("Students", err)
	}
	return students, nil
}

// Grades returns every grade entry in insertion order. An empty table yields
// an empty, non-nil GradeBook.
func (r *StudentRepository) Grades(ctx context.Context) (roster.GradeBook, error) {
	rows, err := r.conn.Query(ctx, `SELECT student_id, grade FROM grades ORDER BY seq`)
	if err != nil {
		return nil, cannotLoad("Grades", err)
	}
	defer rows.Close()

	grades := roster.GradeBook{}
	for rows.Next() {
		var g roster.GradeEntry
		if err := rows.Scan(&g.StudentID, &g.Grade); err != nil {
			return nil, cannotLoad("Grades", fmt.Errorf("failed to scan grade: %w", err))
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, cannotLoad("Grades", fmt.Errorf("rows iteration error: %w", err))
	}
	return grades, nil
}

// SaveStudents upserts all records in one transaction. Invalid records
// abort the whole batch.
func (r *StudentRepository) SaveStudents(ctx context.Context, students roster.Roster) error {
	for _, s := range students {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range students {
			batch.Queue(upsertStudent, s.ID, s.FirstName, s.LastName, s.Age, s.Field, s.Location)
		}

		br := tx.SendBatch(ctx, batch)
		for _, s := range students {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to save student %d: %w", s.ID, err)
			}
		}
		return br.Close()
	})
}

// RecordGrade appends a grade entry.
func (r *StudentRepository) RecordGrade(ctx context.Context, entry roster.GradeEntry) error {
	if entry.Grade == "" {
		return shared.NewDomainError("postgres", "RecordGrade", shared.ErrEmptyValue, "grade is required")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO grades (student_id, grade) VALUES ($1, $2)`,
		entry.StudentID, entry.Grade,
	)
	if err != nil {
		if IsNotNullViolation(err) {
			return shared.WrapError("postgres", "RecordGrade", shared.ErrValidation, "incomplete grade entry", err)
		}
		return fmt.Errorf("failed to record grade: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func scanStudents(rows pgx.Rows) (roster.Roster, error) {
	students := roster.Roster{}

	for rows.Next() {
		var s roster.StudentRecord
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Age, &s.Field, &s.Location); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return students, nil
}

func cannotLoad(op string, err error) error {
	return shared.WrapError("postgres", op, roster.ErrCannotLoadDatabase, "Cannot load the database", err)
}
