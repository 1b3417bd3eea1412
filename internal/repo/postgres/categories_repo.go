package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stocktrack/stationery/internal/domain/category"
	"github.com/stocktrack/stationery/internal/observability"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) List(ctx context.Context) (cats []category.Category, err error) {
	var rows pgx.Rows

	err = r.observe("categories.list", func() error {
		rows, err = r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	cats = make([]category.Category, 0)

	for rows.Next() {
		var c category.Category

		e := rows.Scan(&c.ID, &c.Name)

		if e != nil {
			err = e
			return
		}
		cats = append(cats, c)
	}

	err = rows.Err()

	return
}

func (r *CategoriesRepo) Create(ctx context.Context, name string) (category.Category, error) {
	c := category.Category{
		ID:   category.NewID(),
		Name: name,
	}

	err := r.observe("categories.create", func() error {
		_, e := r.pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return category.Category{}, category.ErrNameTaken
		}

		return category.Category{}, err
	}

	return c, nil
}

// Delete detaches every item pointing at the category and removes the
// row, both inside one transaction so an item can never be left
// referencing a deleted category.
func (r *CategoriesRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("categories.delete.detach_items", func() error {
		_, e := tx.Exec(ctx, `UPDATE items SET category_id = NULL WHERE category_id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	var tag pgconn.CommandTag

	err = r.observe("categories.delete.delete_row", func() error {
		var e error
		tag, e = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = category.ErrNotFound
		return
	}

	err = tx.Commit(ctx)

	return
}
