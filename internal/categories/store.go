package categories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JaimeStill/clerk/pkg/repository"
)

// store is the persistence boundary of the registry.
type store interface {
	active(ctx context.Context) ([]Category, error)
	replace(ctx context.Context, cats []Category) (int, error)
	history(ctx context.Context) ([]RetiredSet, error)
}

type sqlStore struct {
	db *sql.DB
}

func scanCategory(s repository.Scanner) (Category, error) {
	var c Category
	err := s.Scan(&c.Number, &c.Name, &c.Description)
	return c, err
}

func (s *sqlStore) active(ctx context.Context) ([]Category, error) {
	return ActiveIn(ctx, s.db)
}

// ActiveIn reads the active set through q, bypassing the cache. Inside a
// transaction it sees the set as of that transaction.
func ActiveIn(ctx context.Context, q repository.Querier) ([]Category, error) {
	return repository.QueryMany(ctx, q,
		"SELECT number, name, description FROM categories WHERE is_active ORDER BY number",
		nil, scanCategory,
	)
}

// replace swaps the active set and invalidates dependent analysis in one
// transaction. It returns the new set version.
func (s *sqlStore) replace(ctx context.Context, cats []Category) (int, error) {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(ctx, "LOCK TABLE categories IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return 0, fmt.Errorf("lock categories: %w", err)
		}

		var version int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(set_version), 0) + 1 FROM categories",
		).Scan(&version); err != nil {
			return 0, fmt.Errorf("next set version: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE categories SET is_active = FALSE, retired_at = NOW() WHERE is_active",
		); err != nil {
			return 0, fmt.Errorf("retire categories: %w", err)
		}

		for _, c := range cats {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (number, name, description, set_version, is_active)
				 VALUES ($1, $2, $3, $4, TRUE)`,
				c.Number, c.Name, c.Description, version,
			); err != nil {
				return 0, fmt.Errorf("insert category %d: %w", c.Number, repository.MapError(err, sql.ErrNoRows, ErrDuplicateName))
			}
		}

		for _, stmt := range invalidations {
			if _, err := tx.ExecContext(ctx, stmt.sql); err != nil {
				return 0, fmt.Errorf("%s: %w", stmt.name, err)
			}
		}

		return version, nil
	})
}

var invalidations = []struct {
	name string
	sql  string
}{
	{
		name: "delete analysis results",
		sql: `DELETE FROM analysis_results
			  WHERE letter_id IN (SELECT id FROM letters WHERE status <> 'archived')`,
	},
	{
		name: "deselect replies",
		sql: `UPDATE generated_replies SET selected = FALSE
			  WHERE selected AND letter_id IN (SELECT id FROM letters WHERE status <> 'archived')`,
	},
	{
		name: "reset letters",
		sql: `UPDATE letters SET
				status = 'new',
				summary = NULL,
				classification = NULL,
				criticality_level = NULL,
				response_style = NULL,
				processing_time_hours = NULL,
				sla_deadline = NULL,
				final_response = NULL,
				updated_at = NOW()
			  WHERE status <> 'archived'`,
	},
}

func (s *sqlStore) history(ctx context.Context) ([]RetiredSet, error) {
	type row struct {
		version   int
		retiredAt time.Time
		cat       Category
	}

	rows, err := repository.QueryMany(ctx, s.db,
		`SELECT set_version, retired_at, number, name, description
		 FROM categories WHERE NOT is_active
		 ORDER BY set_version DESC, number`,
		nil,
		func(sc repository.Scanner) (row, error) {
			var r row
			err := sc.Scan(&r.version, &r.retiredAt, &r.cat.Number, &r.cat.Name, &r.cat.Description)
			return r, err
		},
	)
	if err != nil {
		return nil, err
	}

	sets := make([]RetiredSet, 0)
	for _, r := range rows {
		if n := len(sets); n == 0 || sets[n-1].Version != r.version {
			sets = append(sets, RetiredSet{Version: r.version, RetiredAt: r.retiredAt})
		}
		last := &sets[len(sets)-1]
		last.Categories = append(last.Categories, r.cat)
	}
	return sets, nil
}
