// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"fmt"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENT IDS QUERY
// Returns the IDs of every student in roster order.
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentIDsResult is the result of a ListStudentIDs query.
type ListStudentIDsResult struct {
	IDs   []int `json:"ids"`
	Total int   `json:"total"`
}

// ListStudentIDsHandler serves the student ID listing.
type ListStudentIDsHandler struct {
	source roster.Source
}

// NewListStudentIDsHandler creates a ListStudentIDsHandler.
func NewListStudentIDsHandler(source roster.Source) *ListStudentIDsHandler {
	return &ListStudentIDsHandler{source: source}
}

// Handle loads the roster and extracts its IDs.
func (h *ListStudentIDsHandler) Handle(ctx context.Context) (*ListStudentIDsResult, error) {
	students, err := h.source.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("list student ids: %w", err)
	}

	ids := roster.ListIDs(students)
	return &ListStudentIDsResult{IDs: ids, Total: len(ids)}, nil
}
