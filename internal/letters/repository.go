package letters

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/retrieval"
	"github.com/JaimeStill/clerk/pkg/pagination"
	"github.com/JaimeStill/clerk/pkg/query"
	"github.com/JaimeStill/clerk/pkg/repository"
)

type repo struct {
	db         *sql.DB
	analyzer   *analyzer
	categories categories.System
	retrieval  retrieval.System
	metrics    *Metrics
	now        func() time.Time
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a letter repository implementing System.
func New(
	db *sql.DB,
	cats categories.System,
	gw gateway.System,
	retriever retrieval.System,
	metrics *Metrics,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	logger = logger.With("system", "letters")
	return &repo{
		db:         db,
		analyzer:   newAnalyzer(cats, gw, analysis.NewNormalizer(time.Now), logger),
		categories: cats,
		retrieval:  retriever,
		metrics:    metrics,
		now:        time.Now,
		logger:     logger,
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Letter], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Sender", "Subject", "Summary")

	filters.Apply(qb, r.now())

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count letters: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLetter)
	if err != nil {
		return nil, fmt.Errorf("query letters: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Letter, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLetter)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Letter, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO letters AS l (sender, subject, body, status)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, columns())

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Letter, error) {
		return repository.QueryOne(ctx, tx, q,
			[]any{cmd.Sender, cmd.Subject, cmd.Body, string(StatusNew)},
			scanLetter,
		)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("letter registered", "id", l.ID, "sender", l.Sender)
	return &l, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM letters WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("letter deleted", "id", id)
	return nil
}

func (r *repo) FindAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	a, err := repository.QueryOne(ctx, r.db,
		"SELECT "+analysisColumns+" FROM analysis_results WHERE letter_id = $1",
		[]any{id}, scanAnalysis,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrAnalysisNotFound, ErrDuplicate)
	}

	if cats, err := r.categories.Active(ctx); err == nil {
		a.ClassificationName = categories.NameOf(cats, a.Outcome.Classification)
	}
	return &a, nil
}

// UpdateStatus applies a manual status change. Only archiving is accepted;
// every other transition belongs to analysis and reply operations.
func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, cmd StatusCommand) (*Letter, error) {
	if !cmd.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if cmd.Status != StatusArchived {
		return nil, ErrManualStatus
	}

	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(StatusArchived) {
		return nil, fmt.Errorf("%w: letter is %s", ErrInvalidTransition, current.Status)
	}

	if _, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, SetStatus(ctx, tx, id, StatusArchived, current.Status)
	}); err != nil {
		return nil, err
	}

	r.logger.Info("letter archived", "id", id, "from", current.Status)
	return r.Find(ctx, id)
}

func (r *repo) Statistics(ctx context.Context) (*Statistics, error) {
	byStatus, err := countBy[Status](ctx, r.db, "status")
	if err != nil {
		return nil, err
	}
	byClassification, err := countBy[int](ctx, r.db, "classification")
	if err != nil {
		return nil, err
	}
	byCriticality, err := countBy[int](ctx, r.db, "criticality_level")
	if err != nil {
		return nil, err
	}

	c := counts{
		status:         byStatus,
		classification: byClassification,
		criticality:    byCriticality,
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM letters
		 WHERE sla_deadline < $1 AND status NOT IN ($2, $3)`,
		r.now(), string(StatusDone), string(StatusArchived),
	).Scan(&c.overdue); err != nil {
		return nil, fmt.Errorf("count overdue letters: %w", err)
	}

	cats, err := r.categories.Active(ctx)
	if err != nil {
		return nil, err
	}

	stats := buildStatistics(c, cats)
	return &stats, nil
}

// countBy groups letters by column. The column name is never user input.
func countBy[K comparable](ctx context.Context, db *sql.DB, column string) (map[K]int, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM letters WHERE %[1]s IS NOT NULL GROUP BY %[1]s", column),
	)
	if err != nil {
		return nil, fmt.Errorf("count letters by %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[K]int)
	for rows.Next() {
		var (
			key K
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

func columns() string {
	return projection.Columns()
}
