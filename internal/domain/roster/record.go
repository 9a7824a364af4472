package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NoGrade is the grade assigned to a student without a matching grade entry.
const NoGrade = "N/A"

// StudentRecord is a single student. Identity is ID.
// An empty Grade means the record carries no grade.
type StudentRecord struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	Location  string `json:"location"`
	Grade     string `json:"grade,omitempty"`

	// Columns carried over from the CSV database.
	LastName string `json:"lastName,omitempty"`
	Age      int    `json:"age,omitempty"`
	Field    string `json:"field,omitempty"`
}

// Validate checks the record before it is persisted.
func (s StudentRecord) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidStudent, s.ID)
	}
	if strings.TrimSpace(s.FirstName) == "" {
		return fmt.Errorf("%w: student %d has no first name", ErrInvalidStudent, s.ID)
	}
	return nil
}

// GradeEntry associates a grade with a student ID.
type GradeEntry struct {
	StudentID int    `json:"studentId"`
	Grade     string `json:"grade"`
}

// GradeBook is a collection of grade entries. A nil GradeBook means no grade
// collection was supplied.
type GradeBook []GradeEntry

// Lookup returns the grade of the first entry matching studentID.
func (g GradeBook) Lookup(studentID int) (string, bool) {
	for _, e := range g {
		if e.StudentID == studentID {
			return e.Grade, true
		}
	}
	return "", false
}

// Roster is an ordered sequence of student records. Duplicates are kept.
type Roster []StudentRecord

// Clone returns a copy of the roster that shares no backing array with r.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// BOUNDARY ARGUMENTS
// ══════════════════════════════════════════════════════════════════════════════

// RosterArg is a roster argument as received from an untyped boundary.
// It is either a Roster or Malformed.
type RosterArg interface {
	rosterArg()
}

func (Roster) rosterArg() {}

// Malformed is a roster argument that was not a sequence of student records.
type Malformed struct {
	Raw json.RawMessage
}

func (Malformed) rosterArg() {}

// DecodeRosterArg classifies raw JSON as a Roster (a JSON array of records)
// or Malformed (anything else, including null).
func DecodeRosterArg(data []byte) RosterArg {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Malformed{Raw: append(json.RawMessage(nil), trimmed...)}
	}

	var r Roster
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return Malformed{Raw: append(json.RawMessage(nil), trimmed...)}
	}
	if r == nil {
		r = Roster{}
	}
	return r
}

// DecodeGradeBook decodes an optional grade collection. Anything that is not
// a JSON array of grade entries is treated as absent.
func DecodeGradeBook(data []byte) GradeBook {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var g GradeBook
	if err := json.Unmarshal(trimmed, &g); err != nil {
		return nil
	}
	if g == nil {
		g = GradeBook{}
	}
	return g
}
