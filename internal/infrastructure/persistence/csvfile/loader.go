// Package csvfile reads the roster "database": a CSV file with a header row.
//
// Recognised columns (case-insensitive, any order):
//
//	id, firstname, lastname, age, field, location
//
// Rows without an id column are numbered from 1 in file order. Blank lines
// are skipped. A grades file holds studentId,grade rows.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
)

// Source loads students and grades from CSV files on every call, so edits to
// the files are picked up without a restart.
type Source struct {
	studentsPath string
	gradesPath   string
}

// NewSource creates a Source. gradesPath may be empty.
func NewSource(studentsPath, gradesPath string) *Source {
	return &Source{studentsPath: studentsPath, gradesPath: gradesPath}
}

var (
	_ roster.Source      = (*Source)(nil)
	_ roster.GradeSource = (*Source)(nil)
)

// Students reads the students file. Any failure to open or parse it is
// reported as roster.ErrCannotLoadDatabase.
func (s *Source) Students(ctx context.Context) (roster.Roster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.studentsPath)
	if err != nil {
		return nil, cannotLoad("Students", err)
	}
	defer f.Close()

	students, err := ReadStudents(f)
	if err != nil {
		return nil, cannotLoad("Students", fmt.Errorf("%s: %w", s.studentsPath, err))
	}
	return students, nil
}

// Grades reads the grades file. Without a configured file it returns a nil
// GradeBook.
func (s *Source) Grades(ctx context.Context) (roster.GradeBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.gradesPath == "" {
		return nil, nil
	}

	f, err := os.Open(s.gradesPath)
	if err != nil {
		return nil, cannotLoad("Grades", err)
	}
	defer f.Close()

	grades, err := ReadGrades(f)
	if err != nil {
		return nil, cannotLoad("Grades", fmt.Errorf("%s: %w", s.gradesPath, err))
	}
	return grades, nil
}

// ErrMissingHeader is returned when the first line has no usable columns.
var ErrMissingHeader = errors.New("csvfile: missing header row")

// ReadStudents parses a students CSV stream.
func ReadStudents(r io.Reader) (roster.Roster, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if _, ok := header["firstname"]; !ok {
		return nil, fmt.Errorf("%w: no firstname column", ErrMissingHeader)
	}

	students := make(roster.Roster, 0, len(rows))
	for i, row := range rows {
		rec := roster.StudentRecord{
			ID:        i + 1,
			FirstName: column(row, header, "firstname"),
			LastName:  column(row, header, "lastname"),
			Field:     column(row, header, "field"),
			Location:  column(row, header, "location"),
		}

		if v := column(row, header, "id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid id %q", i+2, v)
			}
			rec.ID = id
		}
		if v := column(row, header, "age"); v != "" {
			age, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid age %q", i+2, v)
			}
			rec.Age = age
		}

		students = append(students, rec)
	}
	return students, nil
}

// ReadGrades parses a grades CSV stream with studentId and grade columns.
func ReadGrades(r io.Reader) (roster.GradeBook, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"studentid", "grade"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: no %s column", ErrMissingHeader, col)
		}
	}

	grades := make(roster.GradeBook, 0, len(rows))
	for i, row := range rows {
		v := column(row, header, "studentid")
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid studentId %q", i+2, v)
		}
		grades = append(grades, roster.GradeEntry{StudentID: id, Grade: column(row, header, "grade")})
	}
	return grades, nil
}

// readTable returns the non-blank data rows and a lower-cased header index.
func readTable(r io.Reader) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	var header map[string]int
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if header == nil {
			header = make(map[string]int, len(rec))
			for i, name := range rec {
				header[strings.ToLower(strings.TrimSpace(name))] = i
			}
			continue
		}
		rows = append(rows, rec)
	}

	if header == nil {
		return nil, nil, ErrMissingHeader
	}
	return rows, header, nil
}

func column(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func cannotLoad(op string, err error) error {
	return shared.WrapError("csvfile", op, roster.ErrCannotLoadDatabase, "Cannot load the database", err)
}
