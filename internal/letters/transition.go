package letters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/pkg/repository"
)

// analyzable lists the statuses Analyze accepts.
var analyzable = []Status{StatusNew, StatusAnalyzed}

// SetStatus moves letter id to next when its current status is one of from.
// It returns ErrInvalidTransition when no row matched, so callers sharing e's
// transaction can roll back.
func SetStatus(ctx context.Context, e repository.Executor, id uuid.UUID, next Status, from ...Status) error {
	if len(from) == 0 {
		return fmt.Errorf("%w: no source status for %s", ErrInvalidTransition, next)
	}
	for _, s := range from {
		if !s.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
		}
	}

	guard, args := inClause(3, from)
	q := fmt.Sprintf(
		"UPDATE letters SET status = $1, updated_at = NOW() WHERE id = $2 AND status IN (%s)",
		guard,
	)

	err := repository.ExecExpectOne(ctx, e, q, append([]any{string(next), id}, args...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: letter %s cannot become %s", ErrInvalidTransition, id, next)
	}
	return err
}

func inClause(start int, ss []Status) (string, []any) {
	placeholders := make([]string, len(ss))
	args := make([]any, len(ss))
	for i, s := range ss {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = string(s)
	}
	return strings.Join(placeholders, ", "), args
}
