package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roupies/holbertonschool-web-back-end/config"
	"github.com/Roupies/holbertonschool-web-back-end/internal/application/command"
	"github.com/Roupies/holbertonschool-web-back-end/internal/application/query"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/interface/http/handlers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testKey = "s3cret-key"

// memStore is an in-memory roster.Repository and roster.TagRepository.
type memStore struct {
	students roster.Roster
	grades   roster.GradeBook
	tags     map[string]*roster.TagMap
	err      error
}

func (m *memStore) Students(context.Context) (roster.Roster, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.students, nil
}

func (m *memStore) Grades(context.Context) (roster.GradeBook, error) { return m.grades, nil }

func (m *memStore) SaveStudents(_ context.Context, s roster.Roster) error {
	m.students = append(m.students, s...)
	return nil
}

func (m *memStore) RecordGrade(_ context.Context, e roster.GradeEntry) error {
	m.grades = append(m.grades, e)
	return nil
}

func (m *memStore) LoadTags(_ context.Context, name string) (*roster.TagMap, error) {
	t, ok := m.tags[name]
	if !ok {
		return nil, roster.ErrTagMapNotFound
	}
	return t, nil
}

func (m *memStore) SaveTags(_ context.Context, name string, t *roster.TagMap) error {
	m.tags[name] = t
	return nil
}

func newStore() *memStore {
	return &memStore{
		students: roster.Roster{
			{ID: 1, FirstName: "Johann", Location: "SF", Field: "CS"},
			{ID: 2, FirstName: "Guillaume", Location: "NY", Field: "SWE"},
			{ID: 3, FirstName: "Arielle", Location: "SF", Field: "CS"},
		},
		grades: roster.GradeBook{{StudentID: 3, Grade: "A"}},
		tags:   map[string]*roster.TagMap{},
	}
}

func newTestServer(t *testing.T, store *memStore, mutate func(*Config, *Dependencies)) *Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testKey), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.APIKeyHashes = []string{string(hash)}

	deps := Dependencies{
		ListStudentIDs:      query.NewListStudentIDsHandler(store),
		GetGradedByLocation: query.NewGetGradedByLocationHandler(store, store),
		PageStudents:        query.NewPageStudentsHandler(store, 2),
		CountStudents:       query.NewCountStudentsHandler(store),
		NormalizeTags:       command.NewNormalizeTagsHandler(store, nil),
		RosterWrites:        command.NewRosterWriteHandler(store, nil, nil),
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}

	s := NewServer(cfg, deps)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (JSONResponse, json.RawMessage) {
	t.Helper()
	var envelope struct {
		JSONResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.JSONResponse, envelope.Data
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello Holberton School!", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nope", "").Code)
}

func TestStudentsText(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodGet, "/students", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"This is the list of our students\n"+
			"Number of students: 3\n"+
			"Number of students in CS: 2. List: Johann, Arielle\n"+
			"Number of students in SWE: 1. List: Guillaume",
		rec.Body.String())
}

func TestStudentsText_CannotLoad(t *testing.T) {
	store := newStore()
	store.err = roster.ErrCannotLoadDatabase
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodGet, "/students", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Cannot load the database", rec.Body.String())
}

func TestCensusJSON(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodGet, "/api/v1/students/census", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp, data := decode(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalCount)
	assert.JSONEq(t, `{"total":3,"groups":[
		{"field":"CS","names":["Johann","Arielle"]},
		{"field":"SWE","names":["Guillaume"]}
	]}`, string(data))
}

func TestListIDs(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodGet, "/api/v1/students/ids", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp, data := decode(t, rec)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"ids":[1,2,3],"total":3}`, string(data))
}

func TestGradedByLocation(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodGet, "/api/v1/students?location=SF", "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, data := decode(t, rec)
	var result query.GetGradedByLocationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Students, 2)
	assert.Equal(t, roster.NoGrade, result.Students[0].Grade)
	assert.Equal(t, "A", result.Students[1].Grade)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/students", "").Code)
}

func TestGradedByLocation_CannotLoad(t *testing.T) {
	store := newStore()
	store.err = roster.ErrCannotLoadDatabase
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/students?location=SF", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp, _ := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "cannot_load_database", resp.Error.Code)
}

func TestGradeRoster(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	body := `{"students":[{"id":1,"firstName":"Guillaume","location":"SF"},{"id":5,"firstName":"Serena","location":"SF"}],
		"location":"SF","grades":[{"studentId":5,"grade":"97"}]}`
	rec := do(t, s, http.MethodPost, "/api/v1/roster/grade", body)
	require.Equal(t, http.StatusOK, rec.Code)

	_, data := decode(t, rec)
	var result query.GetGradedByLocationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, []string{roster.NoGrade, "97"}, []string{result.Students[0].Grade, result.Students[1].Grade})

	rec = do(t, s, http.MethodPost, "/api/v1/roster/grade", `{"students":"oops","location":"SF"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decode(t, rec)
	assert.JSONEq(t, `{"location":"SF","students":[],"count":0,"cached":false}`, string(data))

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/roster/grade", `[`).Code)
}

func TestPagination(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodGet, "/api/v1/students/page?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decode(t, rec)
	var rows []roster.StudentRecord
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].ID)

	rec = do(t, s, http.MethodGet, "/api/v1/students/hyper?page=1&page_size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decode(t, rec)
	var hyper struct {
		NextPage   *int `json:"next_page"`
		PrevPage   *int `json:"prev_page"`
		TotalPages int  `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(data, &hyper))
	assert.Equal(t, 2, hyper.TotalPages)
	require.NotNil(t, hyper.NextPage)
	assert.Equal(t, 2, *hyper.NextPage)
	assert.Nil(t, hyper.PrevPage)

	rec = do(t, s, http.MethodGet, "/api/v1/students/hyper-index?index=1&page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decode(t, rec)
	var idx struct {
		NextIndex int `json:"next_index"`
		PageSize  int `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(data, &idx))
	assert.Equal(t, 2, idx.PageSize)
	assert.Equal(t, 3, idx.NextIndex)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/students/page?page=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/students/page?page=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/students/hyper-index?index=99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/students/page?page=4611686018427387905&page_size=2", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/students/hyper?page=4611686018427387905&page_size=2", "").Code)
}

func TestNormalizeTags(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodPost, "/api/v1/tags/normalize", `{"bob":2,"name":"x","alice":1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decode(t, rec)
	assert.Equal(t, `{"bob":4,"name":"x","alice":3}`, string(data))

	for _, body := range []string{`[1,2]`, `"text"`, `null`, ``} {
		rec := do(t, s, http.MethodPost, "/api/v1/tags/normalize", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		resp, _ := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "cannot_process", resp.Error.Code)
		assert.Equal(t, "Cannot process", resp.Error.Message)
	}
}

func TestNormalizeTags_OverflowEncodesNull(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodPost, "/api/v1/tags/normalize", `{"a":1e308}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp, data := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, `{"a":null}`, string(data))
}

func TestWriteJSON_EncodeFailureIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeJSON(rec, req, http.StatusOK, map[string]any{"ch": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp, _ := decode(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal_error", resp.Error.Code)
}

func TestNormalizeStoredTags_FeatureAndAuth(t *testing.T) {
	store := newStore()
	tags := roster.NewTagMap()
	tags.Set("score", roster.Number(10))
	store.tags["scores"] = tags

	flags := config.LoadFeatureFlags()
	s := newTestServer(t, store, func(_ *Config, d *Dependencies) { d.Features = flags })

	// Disabled by default.
	rec := do(t, s, http.MethodPost, "/api/v1/tags/scores/normalize", "", "X-API-Key", testKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, flags.EnableFeature(config.FeatureTagWrites))

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodPost, "/api/v1/tags/scores/normalize", "").Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(t, s, http.MethodPost, "/api/v1/tags/scores/normalize", "", "X-API-Key", "wrong").Code)

	rec = do(t, s, http.MethodPost, "/api/v1/tags/scores/normalize", "", "Authorization", "Bearer "+testKey)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decode(t, rec)
	assert.JSONEq(t, `{"score":20}`, string(data))

	rec = do(t, s, http.MethodPost, "/api/v1/tags/missing/normalize", "", "X-API-Key", testKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRosterWrites(t *testing.T) {
	store := newStore()
	s := newTestServer(t, store, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/students", `{"students":[{"id":9,"firstName":"Zoe","location":"SF"}]}`,
		"X-API-Key", testKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.students, 4)

	rec = do(t, s, http.MethodPost, "/api/v1/students", `{"students":[{"id":0,"firstName":"Bad"}]}`, "X-API-Key", testKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/grades", `{"studentId":9,"grade":"B"}`, "X-API-Key", testKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, roster.GradeEntry{StudentID: 9, Grade: "B"}, store.grades[len(store.grades)-1])

	rec = do(t, s, http.MethodPost, "/api/v1/grades", `{"studentId":9}`, "X-API-Key", testKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/grades", `{"studentId":9,"grade":"B"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeatureDisabledPagination(t *testing.T) {
	flags := config.LoadFeatureFlags()
	require.NoError(t, flags.DisableFeature(config.FeaturePagination))
	s := newTestServer(t, newStore(), func(_ *Config, d *Dependencies) { d.Features = flags })

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/students/page", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/students/ids", "").Code)
}

func TestNotConfigured(t *testing.T) {
	s := newTestServer(t, newStore(), func(_ *Config, d *Dependencies) { *d = Dependencies{} })

	assert.Equal(t, http.StatusNotImplemented, do(t, s, http.MethodGet, "/api/v1/students/ids", "").Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, s, http.MethodGet, "/students", "").Code)
}

func TestHealth(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	healthy := true
	checker.AddCheck("store", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})
	s := newTestServer(t, newStore(), func(_ *Config, d *Dependencies) { d.HealthChecker = checker })

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/ready", "").Code)

	healthy = false
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/live", "").Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, newStore(), func(c *Config, _ *Dependencies) { c.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/live", "", "X-Forwarded-For", "10.0.0.1").Code)
	}
	rec := do(t, s, http.MethodGet, "/live", "", "X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/live", "", "X-Forwarded-For", "10.0.0.2").Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, newStore(), nil)

	rec := do(t, s, http.MethodOptions, "/api/v1/students/ids", "", "Origin", "https://example.org")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t, newStore(), nil)
	h := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, newStore(), nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	require.Eventually(t, s.IsRunning, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	require.NoError(t, <-errCh)
	assert.False(t, s.IsRunning())

	http.DefaultClient.CloseIdleConnections()
}
