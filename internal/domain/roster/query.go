package roster

import (
	"iter"
	"slices"
)

// ExtractIDs returns a lazy sequence of student IDs in roster order.
func ExtractIDs(r Roster) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, s := range r {
			if !yield(s.ID) {
				return
			}
		}
	}
}

// ListIDs collects ExtractIDs into a slice. An empty roster yields an empty,
// non-nil slice.
func ListIDs(r Roster) []int {
	ids := slices.Collect(ExtractIDs(r))
	if ids == nil {
		ids = []int{}
	}
	return ids
}

// FilterAndGradeByLocation keeps the records whose Location equals location
// and returns graded copies of them. The grade of each copy is taken from the
// first entry in grades with a matching StudentID, or NoGrade when there is
// none or grades is nil.
//
// A nil or Malformed roster argument yields an empty roster. Inputs are never
// modified.
func FilterAndGradeByLocation(arg RosterArg, location string, grades GradeBook) Roster {
	students, ok := arg.(Roster)
	if !ok {
		return Roster{}
	}

	out := Roster{}
	for _, s := range students {
		if s.Location != location {
			continue
		}
		graded := s
		if g, found := grades.Lookup(s.ID); found {
			graded.Grade = g
		} else {
			graded.Grade = NoGrade
		}
		out = append(out, graded)
	}
	return out
}
