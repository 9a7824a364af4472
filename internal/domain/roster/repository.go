package roster

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Source provides the roster.
type Source interface {
	// Students returns all students in storage order.
	// Returns ErrCannotLoadDatabase when the backing store cannot be read.
	Students(ctx context.Context) (Roster, error)
}

// GradeSource provides the grade collection.
type GradeSource interface {
	// Grades returns all grade entries in insertion order. A nil GradeBook
	// means no grade collection is configured.
	Grades(ctx context.Context) (GradeBook, error)
}

// Repository is a writable roster store.
type Repository interface {
	Source
	GradeSource

	// SaveStudents inserts or updates the given records by ID.
	SaveStudents(ctx context.Context, students Roster) error

	// RecordGrade appends a grade entry.
	RecordGrade(ctx context.Context, entry GradeEntry) error
}

// TagRepository stores named tag maps.
type TagRepository interface {
	// LoadTags returns ErrTagMapNotFound when no map is stored under name.
	LoadTags(ctx context.Context, name string) (*TagMap, error)

	// SaveTags replaces the map stored under name.
	SaveTags(ctx context.Context, name string, tags *TagMap) error
}

// Cache holds graded rosters per location.
type Cache interface {
	// GetGraded returns an error on a miss.
	GetGraded(ctx context.Context, location string) (Roster, error)
	SetGraded(ctx context.Context, location string, graded Roster, ttl time.Duration) error
	// Invalidate drops every cached graded roster.
	Invalidate(ctx context.Context) error
}
