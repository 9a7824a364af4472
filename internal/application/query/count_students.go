// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"io"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
)

// ══════════════════════════════════════════════════════════════════════════════
// COUNT STUDENTS QUERY
// Head count of the roster grouped by field.
// ══════════════════════════════════════════════════════════════════════════════

// CountStudentsHandler produces the roster census.
type CountStudentsHandler struct {
	source roster.Source
}

// NewCountStudentsHandler creates a CountStudentsHandler.
func NewCountStudentsHandler(source roster.Source) *CountStudentsHandler {
	return &CountStudentsHandler{source: source}
}

// Handle loads the roster and takes its census.
func (h *CountStudentsHandler) Handle(ctx context.Context) (roster.Census, error) {
	students, err := h.source.Students(ctx)
	if err != nil {
		return roster.Census{}, fmt.Errorf("count students: %w", err)
	}
	return roster.TakeCensus(students), nil
}

// Report writes the census report to w. Nothing is written when the roster
// cannot be loaded.
func (h *CountStudentsHandler) Report(ctx context.Context, w io.Writer) error {
	census, err := h.Handle(ctx)
	if err != nil {
		return err
	}
	_, err = census.WriteTo(w)
	return err
}
