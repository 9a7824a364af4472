package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
)

type memTags struct {
	maps    map[string]*roster.TagMap
	saves   int
	saveErr error
}

func (m *memTags) LoadTags(_ context.Context, name string) (*roster.TagMap, error) {
	t, ok := m.maps[name]
	if !ok {
		return nil, roster.ErrTagMapNotFound
	}
	return t, nil
}

func (m *memTags) SaveTags(_ context.Context, name string, tags *roster.TagMap) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.maps[name] = tags
	m.saves++
	return nil
}

type memRepo struct {
	students roster.Roster
	grades   roster.GradeBook
	err      error
}

func (r *memRepo) Students(context.Context) (roster.Roster, error) { return r.students, r.err }
func (r *memRepo) Grades(context.Context) (roster.GradeBook, error) { return r.grades, r.err }

func (r *memRepo) SaveStudents(_ context.Context, students roster.Roster) error {
	if r.err != nil {
		return r.err
	}
	r.students = append(r.students, students...)
	return nil
}

func (r *memRepo) RecordGrade(_ context.Context, e roster.GradeEntry) error {
	if r.err != nil {
		return r.err
	}
	r.grades = append(r.grades, e)
	return nil
}

type countingCache struct {
	invalidations int
}

func (c *countingCache) GetGraded(context.Context, string) (roster.Roster, error) {
	return nil, errors.New("miss")
}

func (c *countingCache) SetGraded(context.Context, string, roster.Roster, time.Duration) error {
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

func TestNormalizeTagsHandler_Stored(t *testing.T) {
	tags := roster.NewTagMap()
	tags.Set("bob", roster.Number(2))
	tags.Set("name", roster.Text("x"))
	repo := &memTags{maps: map[string]*roster.TagMap{"scores": tags}}
	h := NewNormalizeTagsHandler(repo, nil)

	got, err := h.Handle(context.Background(), NormalizeStoredTagsCommand{Name: "scores"})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.saves)
	v, _ := got.Get("bob")
	assert.Equal(t, roster.Number(4), v)
	v, _ = got.Get("name")
	assert.Equal(t, roster.Text("x"), v)
}

func TestNormalizeTagsHandler_StoredErrors(t *testing.T) {
	repo := &memTags{maps: map[string]*roster.TagMap{}}
	h := NewNormalizeTagsHandler(repo, nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, NormalizeStoredTagsCommand{Name: " "})
	assert.Error(t, err)

	_, err = h.Handle(ctx, NormalizeStoredTagsCommand{Name: "missing"})
	assert.ErrorIs(t, err, roster.ErrTagMapNotFound)
	assert.Zero(t, repo.saves)

	_, err = NewNormalizeTagsHandler(nil, nil).Handle(ctx, NormalizeStoredTagsCommand{Name: "scores"})
	assert.ErrorIs(t, err, ErrNoTagRepository)
}

func TestNormalizeTagsHandler_FailedSaveKeepsStoredMap(t *testing.T) {
	tags := roster.NewTagMap()
	tags.Set("score", roster.Number(10))
	saveErr := errors.New("disk full")
	repo := &memTags{maps: map[string]*roster.TagMap{"scores": tags}, saveErr: saveErr}
	h := NewNormalizeTagsHandler(repo, nil)

	_, err := h.Handle(context.Background(), NormalizeStoredTagsCommand{Name: "scores"})

	require.ErrorIs(t, err, saveErr)
	v, _ := repo.maps["scores"].Get("score")
	assert.Equal(t, roster.Number(10), v)

	repo.saveErr = nil
	got, err := h.Handle(context.Background(), NormalizeStoredTagsCommand{Name: "scores"})
	require.NoError(t, err)
	v, _ = got.Get("score")
	assert.Equal(t, roster.Number(20), v)
}

func TestNormalizeTagsHandler_Inline(t *testing.T) {
	h := NewNormalizeTagsHandler(nil, nil)

	_, err := h.NormalizeInline(roster.NotAMap{})
	assert.ErrorIs(t, err, roster.ErrTypeProcessing)

	got, err := h.NormalizeInline(roster.DecodeTagArg([]byte(`{"a":1.5}`)))
	require.NoError(t, err)
	v, _ := got.Get("a")
	assert.Equal(t, roster.Number(3), v)
}

func TestRosterWriteHandler_ImportInvalidates(t *testing.T) {
	repo := &memRepo{}
	cache := &countingCache{}
	h := NewRosterWriteHandler(repo, cache, nil)

	res, err := h.ImportRoster(context.Background(), ImportRosterCommand{
		Students: roster.Roster{{ID: 1, FirstName: "Ann"}, {ID: 2, FirstName: "Bob"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, repo.students, 2)
	assert.Equal(t, 1, cache.invalidations)
}

func TestRosterWriteHandler_ImportRejectsInvalidBatch(t *testing.T) {
	repo := &memRepo{}
	cache := &countingCache{}
	h := NewRosterWriteHandler(repo, cache, nil)

	_, err := h.ImportRoster(context.Background(), ImportRosterCommand{
		Students: roster.Roster{{ID: 1, FirstName: "Ann"}, {ID: 0, FirstName: "Bad"}},
	})

	assert.ErrorIs(t, err, roster.ErrInvalidStudent)
	assert.Empty(t, repo.students)
	assert.Zero(t, cache.invalidations)
}

func TestRosterWriteHandler_RecordGrade(t *testing.T) {
	repo := &memRepo{}
	cache := &countingCache{}
	h := NewRosterWriteHandler(repo, cache, nil)
	ctx := context.Background()

	require.NoError(t, h.RecordGrade(ctx, RecordGradeCommand{StudentID: 3, Grade: "B"}))
	assert.Equal(t, roster.GradeBook{{StudentID: 3, Grade: "B"}}, repo.grades)
	assert.Equal(t, 1, cache.invalidations)

	assert.Error(t, h.RecordGrade(ctx, RecordGradeCommand{StudentID: 3}))
	assert.Error(t, h.RecordGrade(ctx, RecordGradeCommand{Grade: "A"}))

	repo.err = errors.New("disk full")
	assert.Error(t, h.RecordGrade(ctx, RecordGradeCommand{StudentID: 3, Grade: "C"}))
	assert.Equal(t, 1, cache.invalidations)
}

func TestRosterWriteHandler_NilCache(t *testing.T) {
	h := NewRosterWriteHandler(&memRepo{}, nil, nil)

	assert.NoError(t, h.RecordGrade(context.Background(), RecordGradeCommand{StudentID: 1, Grade: "A"}))
}
