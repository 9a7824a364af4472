// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// NORMALIZE TAGS COMMAND
// Doubles the numeric entries of a tag map. The stored variant loads the map,
// normalizes it and writes it back.
// ══════════════════════════════════════════════════════════════════════════════

// ErrNoTagRepository is returned by Handle when the handler was built
// without a tag repository.
var ErrNoTagRepository = errors.New("normalize_tags: no tag repository configured")

// NormalizeStoredTagsCommand names the stored tag map to normalize.
type NormalizeStoredTagsCommand struct {
	Name string
}

// Validate validates the command.
func (c NormalizeStoredTagsCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("normalize_tags: name is required")
	}
	return nil
}

// NormalizeTagsHandler normalizes tag maps.
type NormalizeTagsHandler struct {
	tags roster.TagRepository
	log  *logger.Logger
}

// NewNormalizeTagsHandler creates a NormalizeTagsHandler. tags may be nil
// when only inline maps are normalized.
func NewNormalizeTagsHandler(tags roster.TagRepository, log *logger.Logger) *NormalizeTagsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &NormalizeTagsHandler{tags: tags, log: log}
}

// NormalizeInline normalizes a caller-supplied argument. It returns
// roster.ErrTypeProcessing when arg is not a map.
func (h *NormalizeTagsHandler) NormalizeInline(arg roster.TagArg) (*roster.TagMap, error) {
	return roster.NormalizeNumericEntries(arg)
}

// Handle normalizes the stored map and saves the result.
func (h *NormalizeTagsHandler) Handle(ctx context.Context, cmd NormalizeStoredTagsCommand) (*roster.TagMap, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "NormalizeStoredTags", shared.ErrValidation, err.Error(), err)
	}
	if h.tags == nil {
		return nil, ErrNoTagRepository
	}

	tags, err := h.tags.LoadTags(ctx, cmd.Name)
	if err != nil {
		return nil, fmt.Errorf("normalize_tags: load %q: %w", cmd.Name, err)
	}

	// Normalize a copy so a failed save leaves the loaded map untouched.
	tags, err = roster.NormalizeNumericEntries(tags.Clone())
	if err != nil {
		return nil, err
	}

	if err := h.tags.SaveTags(ctx, cmd.Name, tags); err != nil {
		return nil, fmt.Errorf("normalize_tags: save %q: %w", cmd.Name, err)
	}

	h.log.Info("tag map normalized", logger.TagMap(cmd.Name), logger.Int("entries", tags.Len()))
	return tags, nil
}
