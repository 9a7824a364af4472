package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"
)

// TagRepository implements roster.TagRepository for PostgreSQL.
// Entries are stored as JSON text so key order survives a round trip.
type TagRepository struct {
	conn *Connection
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(conn *Connection) *TagRepository {
	return &TagRepository{conn: conn}
}

var _ roster.TagRepository = (*TagRepository)(nil)

// LoadTags returns the tag map stored under name.
func (r *TagRepository) LoadTags(ctx context.Context, name string) (*roster.TagMap, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	var raw string
	err := r.conn.QueryRow(ctx, `SELECT entries::text FROM tag_maps WHERE name = $1`, name).Scan(&raw)
	if IsNoRows(err) {
		return nil, roster.ErrTagMapNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tag map %q: %w", name, err)
	}

	tags := roster.NewTagMap()
	if err := tags.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("stored tag map %q is corrupt: %w", name, err)
	}
	return tags, nil
}

// SaveTags replaces the tag map stored under name.
func (r *TagRepository) SaveTags(ctx context.Context, name string, tags *roster.TagMap) error {
	if err := validateTagName(name); err != nil {
		return err
	}
	if tags == nil {
		return shared.NewDomainError("postgres", "SaveTags", shared.ErrInvalidInput, "tag map is nil")
	}

	data, err := tags.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode tag map %q: %w", name, err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO tag_maps (name, entries) VALUES ($1, $2::json)
		ON CONFLICT (name) DO UPDATE SET entries = EXCLUDED.entries, updated_at = NOW()
	`, name, string(data))
	if err != nil {
		return fmt.Errorf("failed to save tag map %q: %w", name, err)
	}
	return nil
}

func validateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("postgres", "TagRepository", shared.ErrEmptyValue, "tag map name is required")
	}
	return nil
}
