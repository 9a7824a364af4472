package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Roupies/holbertonschool-web-back-end/internal/application/command"
	"github.com/Roupies/holbertonschool-web-back-end/internal/application/query"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/pagination"
)

const (
	greeting      = "Hello Holberton School!"
	studentsTitle = "This is the list of our students\n"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, greeting)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	status.Version = s.config.Version
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// CENSUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleStudentsText handles GET /students
func (s *Server) handleStudentsText(w http.ResponseWriter, r *http.Request) {
	if s.deps.CountStudents == nil {
		writeText(w, http.StatusNotImplemented, "Not implemented")
		return
	}

	var report strings.Builder
	if err := s.deps.CountStudents.Report(r.Context(), &report); err != nil {
		logger.FromContext(r.Context()).Warn("failed to load roster", logger.Err(err))
		writeText(w, http.StatusInternalServerError, roster.ErrCannotLoadDatabase.Message)
		return
	}

	writeText(w, http.StatusOK, studentsTitle+strings.TrimSpace(report.String()))
}

// handleCensus handles GET /api/v1/students/census
func (s *Server) handleCensus(w http.ResponseWriter, r *http.Request) {
	if s.deps.CountStudents == nil {
		writeNotConfigured(w, "Census")
		return
	}

	census, err := s.deps.CountStudents.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, "census", err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, census, &ResponseMeta{TotalCount: census.Total})
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER QUERY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListIDs handles GET /api/v1/students/ids
func (s *Server) handleListIDs(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListStudentIDs == nil {
		writeNotConfigured(w, "Student ID")
		return
	}

	result, err := s.deps.ListStudentIDs.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, "list student ids", err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: result.Total})
}

// handleGradedByLocation handles GET /api/v1/students?location=
func (s *Server) handleGradedByLocation(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetGradedByLocation == nil {
		writeNotConfigured(w, "Graded roster")
		return
	}

	params := r.URL.Query()
	if !params.Has("location") {
		writeJSONError(w, http.StatusBadRequest, "missing_location", "Query parameter location is required")
		return
	}

	result, err := s.deps.GetGradedByLocation.Handle(r.Context(), query.GetGradedByLocationQuery{
		Location: params.Get("location"),
	})
	if err != nil {
		s.writeDomainError(w, r, "get graded by location", err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: result.Count})
}

// handlePage handles GET /api/v1/students/page
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q, ok := s.pageQuery(w, r)
	if !ok {
		return
	}

	rows, err := s.deps.PageStudents.Page(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, "page students", err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

// handleHyper handles GET /api/v1/students/hyper
func (s *Server) handleHyper(w http.ResponseWriter, r *http.Request) {
	q, ok := s.pageQuery(w, r)
	if !ok {
		return
	}

	hyper, err := s.deps.PageStudents.Hyper(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, "page students", err)
		return
	}
	writeJSON(w, r, http.StatusOK, hyper)
}

// handleHyperIndex handles GET /api/v1/students/hyper-index
func (s *Server) handleHyperIndex(w http.ResponseWriter, r *http.Request) {
	if s.deps.PageStudents == nil {
		writeNotConfigured(w, "Pagination")
		return
	}

	index, err := getQueryParamInt(r, "index", 0)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	pageSize, err := getQueryParamInt(r, "page_size", 0)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	page, err := s.deps.PageStudents.HyperIndex(r.Context(), query.IndexStudentsQuery{Index: index, PageSize: pageSize})
	if err != nil {
		s.writeDomainError(w, r, "page students", err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) pageQuery(w http.ResponseWriter, r *http.Request) (query.PageStudentsQuery, bool) {
	if s.deps.PageStudents == nil {
		writeNotConfigured(w, "Pagination")
		return query.PageStudentsQuery{}, false
	}

	page, err := getQueryParamInt(r, "page", 1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return query.PageStudentsQuery{}, false
	}
	pageSize, err := getQueryParamInt(r, "page_size", 0)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return query.PageStudentsQuery{}, false
	}
	return query.PageStudentsQuery{Page: page, PageSize: pageSize}, true
}

// gradeRosterRequest is the body of POST /api/v1/roster/grade. Students and
// grades are kept raw so that malformed values degrade instead of failing.
type gradeRosterRequest struct {
	Students json.RawMessage `json:"students"`
	Location string          `json:"location"`
	Grades   json.RawMessage `json:"grades"`
}

// handleGradeRoster handles POST /api/v1/roster/grade
func (s *Server) handleGradeRoster(w http.ResponseWriter, r *http.Request) {
	var req gradeRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object", err.Error())
		return
	}

	result := query.GradeRoster(query.GradeRosterQuery{
		Students: roster.DecodeRosterArg(req.Students),
		Location: req.Location,
		Grades:   roster.DecodeGradeBook(req.Grades),
	})
	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: result.Count})
}

// ══════════════════════════════════════════════════════════════════════════════
// TAG MAP HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleNormalizeTags handles POST /api/v1/tags/normalize
func (s *Server) handleNormalizeTags(w http.ResponseWriter, r *http.Request) {
	if s.deps.NormalizeTags == nil {
		writeNotConfigured(w, "Tag normalization")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return
	}

	tags, err := s.deps.NormalizeTags.NormalizeInline(roster.DecodeTagArg(body))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "cannot_process", roster.ErrTypeProcessing.Message)
		return
	}
	writeJSON(w, r, http.StatusOK, tags)
}

// handleNormalizeStoredTags handles POST /api/v1/tags/{name}/normalize
func (s *Server) handleNormalizeStoredTags(w http.ResponseWriter, r *http.Request) {
	if s.deps.NormalizeTags == nil {
		writeNotConfigured(w, "Tag normalization")
		return
	}

	tags, err := s.deps.NormalizeTags.Handle(r.Context(), command.NormalizeStoredTagsCommand{
		Name: r.PathValue("name"),
	})
	if err != nil {
		s.writeDomainError(w, r, "normalize stored tags", err)
		return
	}
	writeJSON(w, r, http.StatusOK, tags)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER COMMAND HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type importRosterRequest struct {
	Students roster.Roster `json:"students"`
}

// handleImportRoster handles POST /api/v1/students
func (s *Server) handleImportRoster(w http.ResponseWriter, r *http.Request) {
	if s.deps.RosterWrites == nil {
		writeNotConfigured(w, "Roster import")
		return
	}

	var req importRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object", err.Error())
		return
	}

	result, err := s.deps.RosterWrites.ImportRoster(r.Context(), command.ImportRosterCommand{Students: req.Students})
	if err != nil {
		s.writeDomainError(w, r, "import roster", err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleRecordGrade handles POST /api/v1/grades
func (s *Server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	if s.deps.RosterWrites == nil {
		writeNotConfigured(w, "Grade recording")
		return
	}

	var entry roster.GradeEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object", err.Error())
		return
	}

	err := s.deps.RosterWrites.RecordGrade(r.Context(), command.RecordGradeCommand{
		StudentID: entry.StudentID,
		Grade:     entry.Grade,
	})
	if err != nil {
		s.writeDomainError(w, r, "record grade", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, entry)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps application errors to HTTP responses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, command.ErrNoTagRepository):
		writeNotConfigured(w, "Tag storage")
	case errors.Is(err, roster.ErrCannotLoadDatabase):
		logger.FromContext(r.Context()).Warn(op+" failed", logger.Err(err))
		writeJSONError(w, http.StatusServiceUnavailable, "cannot_load_database", roster.ErrCannotLoadDatabase.Message)
	case errors.Is(err, pagination.ErrInvalidPage), errors.Is(err, pagination.ErrIndexOutOfRange):
		writeJSONError(w, http.StatusBadRequest, "invalid_page", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrEmptyValue), errors.Is(err, shared.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		logger.FromContext(r.Context()).Error(op+" failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to "+op)
	}
}

func writeNotConfigured(w http.ResponseWriter, what string) {
	writeJSONError(w, http.StatusNotImplemented, "not_implemented", what+" handler not configured")
}
