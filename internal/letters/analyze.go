package letters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/retrieval"
	"github.com/JaimeStill/clerk/pkg/repository"
)

// analyzer turns a letter into an Outcome over one category snapshot.
type analyzer struct {
	categories categories.System
	gateway    gateway.System
	normalizer *analysis.Normalizer
	logger     *slog.Logger
}

func newAnalyzer(cats categories.System, gw gateway.System, n *analysis.Normalizer, logger *slog.Logger) *analyzer {
	return &analyzer{categories: cats, gateway: gw, normalizer: n, logger: logger}
}

type verdict struct {
	outcome analysis.Outcome
	source  analysis.Source
	cats    []categories.Category
}

// run always yields an Outcome unless the category set is unavailable or
// ctx is cancelled. A gateway failure yields the fallback record.
func (a *analyzer) run(ctx context.Context, l *Letter) (verdict, error) {
	cats, err := a.categories.Active(ctx)
	if err != nil {
		return verdict{}, fmt.Errorf("load categories: %w", err)
	}

	raw, err := a.gateway.Analyze(ctx, l.AnalysisInput(), cats)
	if err != nil {
		if ctx.Err() != nil {
			return verdict{}, ctx.Err()
		}
		a.logger.Warn("model analysis unavailable, using fallback", "letter_id", l.ID, "error", err)
	}

	source := analysis.SourceModel
	if raw.IsAbsent() {
		source = analysis.SourceFallback
	}

	return verdict{
		outcome: a.normalizer.Normalize(raw, cats),
		source:  source,
		cats:    cats,
	}, nil
}

func (r *repo) Analyze(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	l, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(analyzable, l.Status) {
		return nil, fmt.Errorf("%w: letter is %s", ErrInvalidTransition, l.Status)
	}

	v, a, err := r.analyzeOnce(ctx, l)
	if errors.Is(err, ErrStaleCategories) {
		r.logger.Warn("category set replaced during analysis, retrying", "id", l.ID)
		v, a, err = r.analyzeOnce(ctx, l)
	}
	if err != nil {
		return nil, err
	}
	a.ClassificationName = categories.NameOf(v.cats, v.outcome.Classification)

	r.metrics.outcome(v.source)
	r.logger.Info("letter analyzed",
		"id", l.ID,
		"source", v.source,
		"classification", v.outcome.Classification,
		"criticality", v.outcome.CriticalityLevel,
	)

	if v.source == analysis.SourceModel {
		r.index(ctx, l, a)
	}
	return a, nil
}

func (r *repo) analyzeOnce(ctx context.Context, l *Letter) (verdict, *Analysis, error) {
	v, err := r.analyzer.run(ctx, l)
	if err != nil {
		return verdict{}, nil, err
	}
	a, err := r.persist(ctx, l.ID, v)
	if err != nil {
		return verdict{}, nil, err
	}
	return v, a, nil
}

const lockCategories = "LOCK TABLE categories IN SHARE MODE"

// guardSnapshot holds off category replacement until the transaction ends,
// then fails with ErrStaleCategories if the active set differs from held.
func guardSnapshot(
	ctx context.Context,
	e repository.Executor,
	held []categories.Category,
	current func() ([]categories.Category, error),
) error {
	if _, err := e.ExecContext(ctx, lockCategories); err != nil {
		return fmt.Errorf("lock categories: %w", err)
	}

	active, err := current()
	if err != nil {
		return fmt.Errorf("read active categories: %w", err)
	}
	if !slices.Equal(held, active) {
		return ErrStaleCategories
	}
	return nil
}

// persist writes the Outcome to analysis_results and the letter's analysis
// fields, then advances the status, all in one transaction. The transaction
// fails if the category set the Outcome was computed against is no longer
// active.
func (r *repo) persist(ctx context.Context, id uuid.UUID, v verdict) (*Analysis, error) {
	outcomeJSON, err := json.Marshal(v.outcome)
	if err != nil {
		return nil, fmt.Errorf("marshal outcome: %w", err)
	}

	deadline, ok := analysis.ParseDeadline(v.outcome.SLADeadline)
	if !ok {
		deadline = r.now().UTC().Add(time.Duration(v.outcome.ProcessingTimeHours) * time.Hour)
	}

	upsertQ := `
		INSERT INTO analysis_results (letter_id, outcome, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (letter_id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			source = EXCLUDED.source,
			analyzed_at = NOW()
		RETURNING ` + analysisColumns

	updateQ := `
		UPDATE letters SET
			summary = $1,
			classification = $2,
			criticality_level = $3,
			response_style = $4,
			processing_time_hours = $5,
			sla_deadline = $6
		WHERE id = $7`

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Analysis, error) {
		err := guardSnapshot(ctx, tx, v.cats, func() ([]categories.Category, error) {
			return categories.ActiveIn(ctx, tx)
		})
		if err != nil {
			return Analysis{}, err
		}

		a, err := repository.QueryOne(ctx, tx, upsertQ,
			[]any{id, outcomeJSON, string(v.source)},
			scanAnalysis,
		)
		if err != nil {
			return Analysis{}, fmt.Errorf("upsert analysis: %w", err)
		}

		if err := repository.ExecExpectOne(ctx, tx, updateQ,
			v.outcome.Summary,
			v.outcome.Classification,
			int(v.outcome.CriticalityLevel),
			int(v.outcome.ResponseStyle),
			v.outcome.ProcessingTimeHours,
			deadline,
			id,
		); err != nil {
			return Analysis{}, fmt.Errorf("update letter analysis: %w", err)
		}

		if err := SetStatus(ctx, tx, id, StatusAnalyzed, analyzable...); err != nil {
			return Analysis{}, err
		}
		return a, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) index(ctx context.Context, l *Letter, a *Analysis) {
	err := r.retrieval.Index(ctx, retrieval.Document{
		LetterID:       l.ID.String(),
		Subject:        l.Subject,
		Body:           l.Body,
		Summary:        a.Outcome.Summary,
		Classification: a.ClassificationName,
	})
	if err != nil {
		r.logger.Warn("letter indexing failed", "id", l.ID, "error", err)
	}
}

func (r *repo) AnalyzePending(ctx context.Context) (*BatchSummary, error) {
	ids, err := repository.QueryMany(ctx, r.db,
		"SELECT id FROM letters WHERE status = $1 ORDER BY uploaded_at",
		[]any{string(StatusNew)},
		func(s repository.Scanner) (uuid.UUID, error) {
			var id uuid.UUID
			err := s.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("query pending letters: %w", err)
	}

	results := make([]BatchResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(ids)))

	for i, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			results[i] = BatchResult{LetterID: id}
			a, err := r.Analyze(gctx, id)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				results[i].Error = err.Error()
				return nil
			}
			results[i].Source = a.Source
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze pending letters: %w", err)
	}

	summary := summarize(results)
	r.logger.Info("pending letters analyzed",
		"total", summary.Total,
		"analyzed", summary.Analyzed,
		"failed", summary.Failed,
	)
	return &summary, nil
}

func summarize(results []BatchResult) BatchSummary {
	s := BatchSummary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
		} else {
			s.Analyzed++
		}
	}
	return s
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
