package roster

import "github.com/Roupies/holbertonschool-web-back-end/internal/domain/shared"

// Roster domain errors.
var (
	// ErrTypeProcessing is returned by NormalizeNumericEntries when its
	// argument is not a key/value map.
	ErrTypeProcessing = shared.NewDomainError("roster", "NormalizeNumericEntries", shared.ErrInvalidInput, "Cannot process")

	ErrInvalidStudent     = shared.NewDomainError("roster", "Validate", shared.ErrValidation, "invalid student record")
	ErrTagMapNotFound     = shared.NewDomainError("roster", "LoadTags", shared.ErrNotFound, "tag map not found")
	ErrCannotLoadDatabase = shared.NewDomainError("roster", "Load", shared.ErrServiceUnavailable, "Cannot load the database")
)
