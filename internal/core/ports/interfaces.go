package ports

import (
	"context"

	"persona-agent/internal/core/domain"
)

// ActivitySource supplies at most limit recent posts and limit recent comments.
// Implementations pace their own requests and return *domain.FetchError.
type ActivitySource interface {
	Fetch(ctx context.Context, username string, limit int) (domain.UserActivity, error)
}

// Brain turns a prompt into raw model text. Failures are *domain.GenerationError.
type Brain interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PersonaSink persists a document, replacing any earlier one for the username.
type PersonaSink interface {
	Save(ctx context.Context, doc domain.PersonaDocument, username string) error
}

// Reporter receives the outcome of every processed input.
type Reporter interface {
	Report(ctx context.Context, outcome domain.Outcome) error
}
