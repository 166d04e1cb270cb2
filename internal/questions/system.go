package questions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/internal/prompts"
	"github.com/JaimeStill/clerk/pkg/repository"
)

type System interface {
	Handler() *Handler

	// Ask answers cmd about the letter and records the exchange. Model
	// failure records a fixed answer with Fallback set.
	Ask(ctx context.Context, letterID uuid.UUID, cmd AskCommand) (*Question, error)
	History(ctx context.Context, letterID uuid.UUID) ([]Question, error)
}

const columns = "id, letter_id, question, answer, fallback, asked_at"

type repo struct {
	db      *sql.DB
	letters letters.System
	gateway gateway.System
	logger  *slog.Logger
}

func New(db *sql.DB, ls letters.System, gw gateway.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		letters: ls,
		gateway: gw,
		logger:  logger.With("system", "questions"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Ask(ctx context.Context, letterID uuid.UUID, cmd AskCommand) (*Question, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	l, err := r.letters.Find(ctx, letterID)
	if err != nil {
		return nil, err
	}

	text, fallback, err := answer(ctx, r.gateway, l.Body, cmd.Question)
	if err != nil {
		return nil, err
	}
	if fallback {
		r.logger.Warn("question answer unavailable", "letter_id", letterID)
	}

	q, err := repository.QueryOne(ctx, r.db,
		`INSERT INTO questions (letter_id, question, answer, fallback)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+columns,
		[]any{letterID, cmd.Question, text, fallback},
		scanQuestion,
	)
	if repository.IsForeignKeyViolation(err) {
		return nil, letters.ErrNotFound
	}
	if err != nil {
		return nil, repository.MapError(err, letters.ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("question answered", "id", q.ID, "letter_id", letterID, "fallback", fallback)
	return &q, nil
}

func (r *repo) History(ctx context.Context, letterID uuid.UUID) ([]Question, error) {
	if _, err := r.letters.Find(ctx, letterID); err != nil {
		return nil, err
	}

	items, err := repository.QueryMany(ctx, r.db,
		"SELECT "+columns+" FROM questions WHERE letter_id = $1 ORDER BY asked_at DESC",
		[]any{letterID}, scanQuestion,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return items, nil
}

// answer asks gw and substitutes the unavailable answer on failure. Only a
// cancelled ctx is returned as an error.
func answer(ctx context.Context, gw gateway.System, original, question string) (string, bool, error) {
	text, err := gw.Answer(ctx, original, question)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return prompts.UnavailableAnswer, true, nil
	}
	return text, false, nil
}

func scanQuestion(s repository.Scanner) (Question, error) {
	var q Question
	err := s.Scan(&q.ID, &q.LetterID, &q.Question, &q.Answer, &q.Fallback, &q.AskedAt)
	return q, err
}
