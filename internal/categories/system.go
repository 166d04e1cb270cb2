package categories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/JaimeStill/clerk/pkg/cache"
)

const activeKey = "categories:active"

// System is the category registry.
type System interface {
	Handler() *Handler

	// Active returns a copy of the active set ordered by number.
	Active(ctx context.Context) ([]Category, error)
	Choices(ctx context.Context) ([]Choice, error)
	// Replace validates cats and swaps them in as the active set. Nothing
	// changes when validation fails. When Replace returns, no caller can
	// observe the previous set.
	Replace(ctx context.Context, cats []Category) ([]Category, error)
	ResetDefaults(ctx context.Context) ([]Category, error)
	History(ctx context.Context) ([]RetiredSet, error)
}

type registry struct {
	mu     sync.RWMutex
	store  store
	cache  cache.System
	logger *slog.Logger
}

func New(db *sql.DB, c cache.System, logger *slog.Logger) System {
	return newRegistry(&sqlStore{db: db}, c, logger)
}

func newRegistry(s store, c cache.System, logger *slog.Logger) *registry {
	return &registry{
		store:  s,
		cache:  c,
		logger: logger.With("system", "categories"),
	}
}

func (r *registry) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *registry) Active(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cats, ok := r.cached(ctx); ok {
		return cats, nil
	}

	cats, err := r.store.active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, ErrNoActiveSet
	}

	if b, err := json.Marshal(cats); err == nil {
		if err := r.cache.Set(ctx, activeKey, b); err != nil {
			r.logger.Warn("category cache write failed", "error", err)
		}
	}
	return slices.Clone(cats), nil
}

func (r *registry) cached(ctx context.Context) ([]Category, bool) {
	b, ok, err := r.cache.Get(ctx, activeKey)
	if err != nil {
		r.logger.Warn("category cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var cats []Category
	if err := json.Unmarshal(b, &cats); err != nil || len(cats) == 0 {
		return nil, false
	}
	return cats, true
}

func (r *registry) Choices(ctx context.Context) ([]Choice, error) {
	cats, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}
	return ChoicesOf(cats), nil
}

func (r *registry) Replace(ctx context.Context, cats []Category) ([]Category, error) {
	if err := Validate(cats); err != nil {
		return nil, err
	}

	next := normalized(cats)

	r.mu.Lock()
	defer r.mu.Unlock()

	version, err := r.store.replace(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("replace categories: %w", err)
	}

	if err := r.cache.Delete(ctx, activeKey); err != nil {
		r.logger.Error("category cache invalidation failed", "error", err)
	}

	r.logger.Info("categories replaced", "version", version, "count", len(next))
	return slices.Clone(next), nil
}

func (r *registry) ResetDefaults(ctx context.Context) ([]Category, error) {
	return r.Replace(ctx, Defaults())
}

func (r *registry) History(ctx context.Context) ([]RetiredSet, error) {
	sets, err := r.store.history(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category history: %w", err)
	}
	return sets, nil
}

// normalized returns a trimmed copy of cats ordered by number.
func normalized(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{
			Number:      c.Number,
			Name:        trim(c.Name),
			Description: trim(c.Description),
		}
	}
	slices.SortFunc(out, func(a, b Category) int { return a.Number - b.Number })
	return out
}
