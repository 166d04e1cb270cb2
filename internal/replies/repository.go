package replies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/pkg/repository"
	"github.com/JaimeStill/clerk/pkg/storage"
)

const archiveContentType = "text/plain; charset=utf-8"

type repo struct {
	db      *sql.DB
	letters letters.System
	drafter *drafter
	storage storage.System
	logger  *slog.Logger
}

func New(
	db *sql.DB,
	ls letters.System,
	cats categories.System,
	gw gateway.System,
	store storage.System,
	logger *slog.Logger,
) System {
	logger = logger.With("system", "replies")
	return &repo{
		db:      db,
		letters: ls,
		drafter: &drafter{categories: cats, gateway: gw, logger: logger},
		storage: store,
		logger:  logger,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context, letterID uuid.UUID) ([]Reply, error) {
	if _, err := r.letters.Find(ctx, letterID); err != nil {
		return nil, err
	}

	items, err := repository.QueryMany(ctx, r.db,
		"SELECT "+columns+" FROM generated_replies WHERE letter_id = $1 ORDER BY generated_at DESC",
		[]any{letterID}, scanReply,
	)
	if err != nil {
		return nil, fmt.Errorf("query replies: %w", err)
	}
	return items, nil
}

func (r *repo) Generate(ctx context.Context, letterID uuid.UUID, cmd GenerateCommand) (*Reply, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	l, err := r.letters.Find(ctx, letterID)
	if err != nil {
		return nil, err
	}

	sources := letters.From(letters.StatusResponseGenerated)
	if l.Status == letters.StatusNew {
		return nil, ErrNotAnalyzed
	}
	if !slices.Contains(sources, l.Status) {
		return nil, fmt.Errorf("%w: letter is %s", letters.ErrInvalidTransition, l.Status)
	}

	d, err := r.drafter.run(ctx, l, cmd)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO generated_replies (letter_id, style, text, fallback)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns

	reply, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Reply, error) {
		reply, err := repository.QueryOne(ctx, tx, q,
			[]any{letterID, int(d.style), d.text, d.fallback},
			scanReply,
		)
		if err != nil {
			return Reply{}, fmt.Errorf("insert reply: %w", err)
		}

		if err := letters.SetStatus(ctx, tx, letterID, letters.StatusResponseGenerated, sources...); err != nil {
			return Reply{}, err
		}
		return reply, nil
	})
	switch {
	case repository.IsForeignKeyViolation(err):
		return nil, letters.ErrNotFound
	case repository.IsCheckViolation(err):
		return nil, ErrInvalidStyle
	case err != nil:
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reply generated",
		"id", reply.ID,
		"letter_id", letterID,
		"style", int(reply.Style),
		"fallback", reply.Fallback,
	)
	return &reply, nil
}

const deselectQ = "UPDATE generated_replies SET selected = false WHERE letter_id = $1 AND selected"

// deselect clears the letter's current selection. A letter has at most one
// selected reply: idx_generated_replies_selected rejects a second one, so
// deselect must run before a reply is marked selected in the same transaction.
func deselect(ctx context.Context, e repository.Executor, letterID uuid.UUID) error {
	if _, err := repository.ExecAffected(ctx, e, deselectQ, letterID); err != nil {
		return fmt.Errorf("deselect replies: %w", err)
	}
	return nil
}

func (r *repo) Select(ctx context.Context, letterID, replyID uuid.UUID) (*Reply, error) {
	selectQ := `
		UPDATE generated_replies SET selected = true
		WHERE id = $1 AND letter_id = $2
		RETURNING ` + columns

	reply, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Reply, error) {
		if err := deselect(ctx, tx, letterID); err != nil {
			return Reply{}, err
		}

		reply, err := repository.QueryOne(ctx, tx, selectQ, []any{replyID, letterID}, scanReply)
		if err != nil {
			return Reply{}, err
		}

		if _, err := repository.ExecAffected(ctx, tx,
			"UPDATE letters SET final_response = $1, response_style = $2 WHERE id = $3",
			reply.Text, int(reply.Style), letterID,
		); err != nil {
			return Reply{}, fmt.Errorf("store final response: %w", err)
		}

		if err := letters.SetStatus(ctx, tx, letterID, letters.StatusDone, letters.StatusResponseGenerated); err != nil {
			return Reply{}, err
		}
		return reply, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reply selected", "id", reply.ID, "letter_id", letterID)
	r.archive(ctx, reply)
	return &reply, nil
}

// archive stores the selected text. Failure leaves the selection in place.
func (r *repo) archive(ctx context.Context, reply Reply) {
	key := ArchiveKey(reply.LetterID, reply.ID)
	if err := r.storage.Upload(ctx, key, strings.NewReader(reply.Text), archiveContentType); err != nil {
		r.logger.Warn("reply archive failed", "id", reply.ID, "key", key, "error", err)
		return
	}
	r.logger.Info("reply archived", "id", reply.ID, "key", key)
}

func (r *repo) Reset(ctx context.Context, letterID uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := deselect(ctx, tx, letterID); err != nil {
			return struct{}{}, err
		}

		if err := repository.ExecExpectOne(ctx, tx,
			"UPDATE letters SET final_response = NULL WHERE id = $1",
			letterID,
		); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, letters.SetStatus(ctx, tx, letterID, letters.StatusAnalyzed,
			letters.StatusResponseGenerated, letters.StatusDone,
		)
	})
	if err != nil {
		return repository.MapError(err, letters.ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("replies reset", "letter_id", letterID)
	return nil
}

func (r *repo) Archive(ctx context.Context, letterID, replyID uuid.UUID) (io.ReadCloser, error) {
	var selected bool
	err := r.db.QueryRowContext(ctx,
		"SELECT selected FROM generated_replies WHERE id = $1 AND letter_id = $2",
		replyID, letterID,
	).Scan(&selected)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	if !selected {
		return nil, ErrArchiveNotFound
	}

	rc, err := r.storage.Download(ctx, ArchiveKey(letterID, replyID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrArchiveNotFound
	}
	return rc, err
}
