package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_StudentsRoundTripInOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	in := roster.Roster{
		{ID: 2, FirstName: "Guillaume", LastName: "Salou", Age: 30, Field: "SWE", Location: "NY"},
		{ID: 1, FirstName: "Johann", LastName: "Kerbrou", Age: 30, Field: "CS", Location: "SF"},
	}
	require.NoError(t, s.SaveStudents(ctx, in))

	// Updating an existing ID keeps its place.
	require.NoError(t, s.SaveStudents(ctx, roster.Roster{{ID: 2, FirstName: "Guillaume", Location: "SF"}}))

	got, err := s.Students(ctx)
	require.NoError(t, err)

	want := roster.Roster{
		{ID: 2, FirstName: "Guillaume", Location: "SF"},
		{ID: 1, FirstName: "Johann", LastName: "Kerbrou", Age: 30, Field: "CS", Location: "SF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Students mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveStudentsIsAtomic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.SaveStudents(ctx, roster.Roster{{ID: 1, FirstName: "Ann"}, {ID: -1, FirstName: "Bad"}})
	assert.ErrorIs(t, err, roster.ErrInvalidStudent)

	got, err := s.Students(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStore_GradesKeepDuplicatesInOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordGrade(ctx, roster.GradeEntry{StudentID: 1, Grade: "A"}))
	require.NoError(t, s.RecordGrade(ctx, roster.GradeEntry{StudentID: 1, Grade: "C"}))
	assert.Error(t, s.RecordGrade(ctx, roster.GradeEntry{StudentID: 1}))

	grades, err := s.Grades(ctx)
	require.NoError(t, err)
	assert.Equal(t, roster.GradeBook{{StudentID: 1, Grade: "A"}, {StudentID: 1, Grade: "C"}}, grades)

	g, ok := grades.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "A", g)
}

func TestStore_TagsRoundTripPreservesOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.LoadTags(ctx, "scores")
	assert.ErrorIs(t, err, roster.ErrTagMapNotFound)

	tags := roster.NewTagMap()
	tags.Set("zeta", roster.Number(2))
	tags.Set("alpha", roster.Text("x"))
	tags.Set("mid", roster.Number(1.5))
	require.NoError(t, s.SaveTags(ctx, "scores", tags))

	loaded, err := s.LoadTags(ctx, "scores")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, loaded.Keys())

	_, err = roster.NormalizeNumericEntries(loaded)
	require.NoError(t, err)
	require.NoError(t, s.SaveTags(ctx, "scores", loaded))

	again, err := s.LoadTags(ctx, "scores")
	require.NoError(t, err)
	v, _ := again.Get("zeta")
	assert.Equal(t, roster.Number(4), v)
	v, _ = again.Get("mid")
	assert.Equal(t, roster.Number(3), v)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveStudents(ctx, roster.Roster{{ID: 7, FirstName: "Ann"}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, roster.Roster{{ID: 7, FirstName: "Ann"}}, got)
	assert.NoError(t, s.Check(ctx))
}
