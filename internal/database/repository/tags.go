package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
)

// TagRepo handles tags. Tags come into existence the first time a new tag
// string is used.
type TagRepo struct {
	q database.DBTX
}

func NewTagRepo(q database.DBTX) *TagRepo { return &TagRepo{q: q} }

// Ensure returns the tags for the given names, creating any that don't
// exist yet.
func (r *TagRepo) Ensure(ctx context.Context, names []string) ([]ledger.Tag, error) {
	out := make([]ledger.Tag, 0, len(names))
	for _, name := range names {
		var tg ledger.Tag
		err := r.q.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).
			Scan(&tg.ID, &tg.Name)
		if errors.Is(err, sql.ErrNoRows) {
			res, insErr := r.q.ExecContext(ctx, `INSERT INTO tags(name) VALUES(?)`, name)
			if insErr != nil {
				return nil, persistErr("insert tag", insErr)
			}
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return nil, persistErr("insert tag", idErr)
			}
			tg = ledger.Tag{ID: id, Name: name}
		} else if err != nil {
			return nil, persistErr("load tag", err)
		}
		out = append(out, tg)
	}
	return out, nil
}

// List returns all known tags ordered by creation.
func (r *TagRepo) List(ctx context.Context) ([]ledger.Tag, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id ASC`)
	if err != nil {
		return nil, persistErr("list tags", err)
	}
	defer rows.Close()

	var out []ledger.Tag
	for rows.Next() {
		var tg ledger.Tag
		if err := rows.Scan(&tg.ID, &tg.Name); err != nil {
			return nil, persistErr("scan tag", err)
		}
		out = append(out, tg)
	}
	return out, rows.Err()
}

// Names returns all known tag names.
func (r *TagRepo) Names(ctx context.Context) ([]string, error) {
	tags, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tags))
	for i, tg := range tags {
		out[i] = tg.Name
	}
	return out, nil
}
