// Package roster contains the student roster model and the pure query/update
// operations over it.
//
// The package defines:
//
//   - Entities: StudentRecord, GradeEntry, Roster, GradeBook
//   - TagMap: an insertion-ordered key/value map whose values form a sealed
//     tagged union (Number, Text, Flag, Null, Raw)
//   - Boundary arguments: RosterArg and TagArg, produced by DecodeRosterArg
//     and DecodeTagArg from untyped input (HTTP bodies, files)
//   - Census: per-field head counts of a roster
//   - Repository interfaces implemented in infrastructure/persistence
//
// # Operations
//
// All operations are synchronous and single pass:
//
//	ids := roster.ListIDs(students)                                  // [1 2 3]
//	sf := roster.FilterAndGradeByLocation(students, "SF", grades)    // copies with Grade set
//	m, err := roster.NormalizeNumericEntries(tags)                   // doubles Number entries in place
//
// FilterAndGradeByLocation is total: a Malformed or nil roster argument
// yields an empty roster rather than an error. NormalizeNumericEntries is the
// only operation that reports a failure (ErrTypeProcessing) and the only one
// that mutates its argument.
//
// This package only depends on the standard library and domain/shared.
package roster
