// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/pagination"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAGE STUDENTS QUERY
// Pages through the stored roster in the three supported styles.
// ══════════════════════════════════════════════════════════════════════════════

// PageStudentsQuery selects a 1-based page of students.
type PageStudentsQuery struct {
	Page     int
	PageSize int
}

// withDefaults fills an unset page size. Invalid pages are left for the
// pagination package to reject.
func (q PageStudentsQuery) withDefaults(defaultPageSize int) PageStudentsQuery {
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}
	return q
}

// IndexStudentsQuery selects up to PageSize students starting at Index.
type IndexStudentsQuery struct {
	Index    int
	PageSize int
}

// PageStudentsHandler serves paged views of the roster.
type PageStudentsHandler struct {
	source          roster.Source
	defaultPageSize int
}

// NewPageStudentsHandler creates a PageStudentsHandler.
func NewPageStudentsHandler(source roster.Source, defaultPageSize int) *PageStudentsHandler {
	if defaultPageSize < 1 {
		defaultPageSize = 10
	}
	return &PageStudentsHandler{source: source, defaultPageSize: defaultPageSize}
}

// Page returns a plain page of students.
func (h *PageStudentsHandler) Page(ctx context.Context, q PageStudentsQuery) ([]roster.StudentRecord, error) {
	students, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	q = q.withDefaults(h.defaultPageSize)
	return pagination.GetPage(students, q.Page, q.PageSize)
}

// Hyper returns a page of students with navigation metadata.
func (h *PageStudentsHandler) Hyper(ctx context.Context, q PageStudentsQuery) (pagination.Hyper[roster.StudentRecord], error) {
	students, err := h.load(ctx)
	if err != nil {
		return pagination.Hyper[roster.StudentRecord]{}, err
	}
	q = q.withDefaults(h.defaultPageSize)
	return pagination.GetHyper(students, q.Page, q.PageSize)
}

// HyperIndex returns up to PageSize students starting at position Index.
// Each call indexes the roster as the source returns it. Stores only append
// students, so a position keeps naming the same student between calls and
// NextIndex stays valid as the roster grows. Deletion-tolerant paging needs a
// long-lived pagination.Indexed owned by the caller.
func (h *PageStudentsHandler) HyperIndex(ctx context.Context, q IndexStudentsQuery) (pagination.IndexPage[roster.StudentRecord], error) {
	students, err := h.load(ctx)
	if err != nil {
		return pagination.IndexPage[roster.StudentRecord]{}, err
	}
	if q.PageSize == 0 {
		q.PageSize = h.defaultPageSize
	}
	return pagination.NewIndexed(students).GetHyperIndex(q.Index, q.PageSize)
}

func (h *PageStudentsHandler) load(ctx context.Context) (roster.Roster, error) {
	students, err := h.source.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("page students: %w", err)
	}
	return students, nil
}
