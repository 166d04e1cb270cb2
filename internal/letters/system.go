package letters

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/pkg/pagination"
)

// System defines the public contract for letter operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Letter], error)
	Find(ctx context.Context, id uuid.UUID) (*Letter, error)
	Create(ctx context.Context, cmd CreateCommand) (*Letter, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Analyze classifies a new or analyzed letter and stores the outcome.
	// Model failure still stores the fallback outcome.
	Analyze(ctx context.Context, id uuid.UUID) (*Analysis, error)
	// AnalyzePending analyzes every letter with status new.
	AnalyzePending(ctx context.Context) (*BatchSummary, error)
	FindAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, cmd StatusCommand) (*Letter, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
