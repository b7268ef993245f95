package interfaces

import (
	"context"

	"prompt-server/internal/models"
)

// PromptRepository defines versioned prompt template storage operations.
type PromptRepository interface {
	// Create stores version 0 unless the prompt already has any version. Returns true if it wrote.
	Create(ctx context.Context, promptID int, template string) (bool, error)

	// ListVersions returns a lazy iterator over every stored version. No ordering guarantee.
	ListVersions(ctx context.Context, promptID int) VersionIterator

	// AppendVersion stores template under max(existing)+1 and returns the new version.
	AppendVersion(ctx context.Context, promptID int, template string) (models.PromptVersion, error)

	// GetVersion retrieves a single version's template text.
	GetVersion(ctx context.Context, promptID, version int) (string, bool, error)

	// LatestVersion retrieves the version with the highest number.
	LatestVersion(ctx context.Context, promptID int) (models.PromptVersion, bool, error)

	// Exists reports whether the prompt has any stored version.
	Exists(ctx context.Context, promptID int) (bool, error)
}

// VersionIterator lazily walks prompt versions.
type VersionIterator interface {
	Next(ctx context.Context) bool
	Version() models.PromptVersion
	Err() error
}
