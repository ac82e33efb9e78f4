package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
)

// MethodRepo handles methods. Methods can be created, renamed, and
// repositioned; there is no delete.
type MethodRepo struct {
	q database.DBTX
}

func NewMethodRepo(q database.DBTX) *MethodRepo { return &MethodRepo{q: q} }

// Create appends a method at the end of the display order.
func (r *MethodRepo) Create(ctx context.Context, name string) (ledger.Method, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ledger.Method{}, persistErr("create method", errors.New("empty name"))
	}
	var pos sql.NullInt64
	if err := r.q.QueryRowContext(ctx, `SELECT MAX(position) FROM methods`).Scan(&pos); err != nil {
		return ledger.Method{}, persistErr("create method", err)
	}
	next := int(pos.Int64) + 1
	res, err := r.q.ExecContext(ctx, `INSERT INTO methods(name, position) VALUES(?, ?)`, name, next)
	if err != nil {
		return ledger.Method{}, persistErr("create method", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Method{}, persistErr("create method", err)
	}
	return ledger.Method{ID: id, Name: name, Position: next}, nil
}

// List returns all methods in display order.
func (r *MethodRepo) List(ctx context.Context) ([]ledger.Method, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, position FROM methods ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, persistErr("list methods", err)
	}
	defer rows.Close()

	var out []ledger.Method
	for rows.Next() {
		var m ledger.Method
		if err := rows.Scan(&m.ID, &m.Name, &m.Position); err != nil {
			return nil, persistErr("scan method", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ByName looks a method up case-insensitively.
func (r *MethodRepo) ByName(ctx context.Context, name string) (ledger.Method, error) {
	var m ledger.Method
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, position FROM methods WHERE name = ? COLLATE NOCASE`, name).
		Scan(&m.ID, &m.Name, &m.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Method{}, fmt.Errorf("method %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return ledger.Method{}, persistErr("load method", err)
	}
	return m, nil
}

// ByID loads a method by id.
func (r *MethodRepo) ByID(ctx context.Context, id int64) (ledger.Method, error) {
	var m ledger.Method
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, position FROM methods WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Method{}, fmt.Errorf("method %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ledger.Method{}, persistErr("load method", err)
	}
	return m, nil
}

// Rename changes a method's display name. References stay valid because
// transactions and snapshots point at the stable id, never the name.
func (r *MethodRepo) Rename(ctx context.Context, id int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return persistErr("rename method", errors.New("empty name"))
	}
	res, err := r.q.ExecContext(ctx, `UPDATE methods SET name = ? WHERE id = ?`, newName, id)
	if err != nil {
		return persistErr("rename method", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("method %d: %w", id, ErrNotFound)
	}
	return nil
}

// Reposition moves a method to a new slot in the display order, shifting
// the methods in between.
func (r *MethodRepo) Reposition(ctx context.Context, id int64, newPos int) error {
	m, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if newPos == m.Position {
		return nil
	}
	if newPos < m.Position {
		_, err = r.q.ExecContext(ctx,
			`UPDATE methods SET position = position + 1 WHERE position >= ? AND position < ?`,
			newPos, m.Position)
	} else {
		_, err = r.q.ExecContext(ctx,
			`UPDATE methods SET position = position - 1 WHERE position > ? AND position <= ?`,
			m.Position, newPos)
	}
	if err != nil {
		return persistErr("reposition method", err)
	}
	if _, err := r.q.ExecContext(ctx, `UPDATE methods SET position = ? WHERE id = ?`, newPos, id); err != nil {
		return persistErr("reposition method", err)
	}
	return nil
}

// Names returns the method names in display order.
func (r *MethodRepo) Names(ctx context.Context) ([]string, error) {
	methods, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.Name
	}
	return out, nil
}
