// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT ROSTER / RECORD GRADE COMMANDS
// Writes to the roster store. Every successful write drops cached graded
// rosters, since any of them may now be stale.
// ══════════════════════════════════════════════════════════════════════════════

// ImportRosterCommand carries the students to upsert.
type ImportRosterCommand struct {
	Students roster.Roster
}

// ImportRosterResult reports the outcome of an import.
type ImportRosterResult struct {
	Imported int `json:"imported"`
}

// RecordGradeCommand carries one grade entry.
type RecordGradeCommand struct {
	StudentID int
	Grade     string
}

// Validate validates the command.
func (c RecordGradeCommand) Validate() error {
	if c.StudentID <= 0 {
		return errors.New("record_grade: student_id must be positive")
	}
	if c.Grade == "" {
		return errors.New("record_grade: grade is required")
	}
	return nil
}

// RosterWriteHandler handles roster write commands.
type RosterWriteHandler struct {
	repo  roster.Repository
	cache roster.Cache
	log   *logger.Logger
}

// NewRosterWriteHandler creates a RosterWriteHandler. cache may be nil.
func NewRosterWriteHandler(repo roster.Repository, cache roster.Cache, log *logger.Logger) *RosterWriteHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RosterWriteHandler{repo: repo, cache: cache, log: log}
}

// ImportRoster upserts the students. The whole batch is rejected when any
// record is invalid.
func (h *RosterWriteHandler) ImportRoster(ctx context.Context, cmd ImportRosterCommand) (*ImportRosterResult, error) {
	for _, s := range cmd.Students {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	if err := h.repo.SaveStudents(ctx, cmd.Students); err != nil {
		return nil, fmt.Errorf("import_roster: %w", err)
	}

	h.invalidate(ctx)
	h.log.Info("roster imported", logger.Int("students", len(cmd.Students)))
	return &ImportRosterResult{Imported: len(cmd.Students)}, nil
}

// RecordGrade appends a grade entry.
func (h *RosterWriteHandler) RecordGrade(ctx context.Context, cmd RecordGradeCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("command", "RecordGrade", shared.ErrValidation, err.Error(), err)
	}

	entry := roster.GradeEntry{StudentID: cmd.StudentID, Grade: cmd.Grade}
	if err := h.repo.RecordGrade(ctx, entry); err != nil {
		return fmt.Errorf("record_grade: %w", err)
	}

	h.invalidate(ctx)
	h.log.Info("grade recorded", logger.StudentID(cmd.StudentID))
	return nil
}

func (h *RosterWriteHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.log.Warn("failed to invalidate graded cache", logger.Err(err))
	}
}
