// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GRADED BY LOCATION QUERY
// Filters the stored roster by location and attaches each student's grade.
// Results are cached per location when a cache is configured.
// ══════════════════════════════════════════════════════════════════════════════

// maxLocationLength bounds the location accepted from callers.
const maxLocationLength = 256

// GetGradedByLocationQuery selects the students of one location.
type GetGradedByLocationQuery struct {
	// Location is matched exactly, case-sensitive. An empty location selects
	// students with no location.
	Location string
}

// Validate checks the query.
func (q GetGradedByLocationQuery) Validate() error {
	if len(q.Location) > maxLocationLength {
		return fmt.Errorf("location must be at most %d bytes", maxLocationLength)
	}
	return nil
}

// GetGradedByLocationResult is the graded roster for a location.
type GetGradedByLocationResult struct {
	Location string        `json:"location"`
	Students roster.Roster `json:"students"`
	Count    int           `json:"count"`
	Cached   bool          `json:"cached"`
}

// GetGradedByLocationHandler serves graded rosters.
type GetGradedByLocationHandler struct {
	source   roster.Source
	grades   roster.GradeSource
	cache    roster.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// GradedOption configures a GetGradedByLocationHandler.
type GradedOption func(*GetGradedByLocationHandler)

// WithGradedCache enables cache-aside reads through cache.
func WithGradedCache(cache roster.Cache, ttl time.Duration) GradedOption {
	return func(h *GetGradedByLocationHandler) {
		h.cache = cache
		h.cacheTTL = ttl
	}
}

// WithGradedLogger sets the handler's logger.
func WithGradedLogger(log *logger.Logger) GradedOption {
	return func(h *GetGradedByLocationHandler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewGetGradedByLocationHandler creates a handler. grades may be nil, in
// which case every student is reported with roster.NoGrade.
func NewGetGradedByLocationHandler(
	source roster.Source,
	grades roster.GradeSource,
	opts ...GradedOption,
) *GetGradedByLocationHandler {
	h := &GetGradedByLocationHandler{
		source: source,
		grades: grades,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs the query.
func (h *GetGradedByLocationHandler) Handle(ctx context.Context, q GetGradedByLocationQuery) (*GetGradedByLocationResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetGradedByLocation", shared.ErrValidation, err.Error(), err)
	}

	if cached, ok := h.tryGetFromCache(ctx, q.Location); ok {
		return &GetGradedByLocationResult{
			Location: q.Location,
			Students: cached,
			Count:    len(cached),
			Cached:   true,
		}, nil
	}

	students, err := h.source.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("get graded by location: %w", err)
	}

	var grades roster.GradeBook
	if h.grades != nil {
		grades, err = h.grades.Grades(ctx)
		if err != nil {
			return nil, fmt.Errorf("get graded by location: %w", err)
		}
	}

	graded := roster.FilterAndGradeByLocation(students, q.Location, grades)

	if h.cache != nil {
		if err := h.cache.SetGraded(ctx, q.Location, graded, h.cacheTTL); err != nil {
			// A failed cache write only costs the next request a reload.
			h.log.Warn("failed to cache graded roster", logger.Location(q.Location), logger.Err(err))
		}
	}

	return &GetGradedByLocationResult{
		Location: q.Location,
		Students: graded,
		Count:    len(graded),
	}, nil
}

func (h *GetGradedByLocationHandler) tryGetFromCache(ctx context.Context, location string) (roster.Roster, bool) {
	if h.cache == nil {
		return nil, false
	}

	cached, err := h.cache.GetGraded(ctx, location)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.log.Debug("graded cache miss", logger.Location(location), logger.Err(err))
		}
		return nil, false
	}
	return cached, true
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE ROSTER QUERY
// Same filter over a roster supplied by the caller instead of storage.
// ══════════════════════════════════════════════════════════════════════════════

// GradeRosterQuery carries a caller-supplied roster.
type GradeRosterQuery struct {
	Students roster.RosterArg
	Location string
	Grades   roster.GradeBook
}

// GradeRoster filters and grades a caller-supplied roster. A malformed
// roster yields an empty result.
func GradeRoster(q GradeRosterQuery) *GetGradedByLocationResult {
	graded := roster.FilterAndGradeByLocation(q.Students, q.Location, q.Grades)
	return &GetGradedByLocationResult{
		Location: q.Location,
		Students: graded,
		Count:    len(graded),
	}
}
