package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stocktrack/stationery/internal/domain/item"
	"github.com/stocktrack/stationery/internal/observability"
)

type ItemsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewItemsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ItemsRepo {
	return &ItemsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ItemsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ItemsRepo) List(ctx context.Context) (items []item.Item, err error) {
	var rows pgx.Rows

	err = r.observe("items.list", func() error {
		rows, err = r.pool.Query(ctx, `
			SELECT id, name, department, issued_date, category_id, dynamic_attributes
			FROM items
			ORDER BY name ASC, id ASC
		`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	items = make([]item.Item, 0)

	for rows.Next() {
		var it item.Item

		e := rows.Scan(&it.ID, &it.Name, &it.Department, &it.IssuedDate, &it.CategoryID, &it.Attrs)

		if e != nil {
			err = e
			return
		}
		items = append(items, it)
	}

	err = rows.Err()

	return
}

func (r *ItemsRepo) GetByID(ctx context.Context, id string) (item.Item, error) {
	var it item.Item

	err := r.observe("items.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, name, department, issued_date, category_id, dynamic_attributes
			FROM items
			WHERE id = $1
		`, id).Scan(&it.ID, &it.Name, &it.Department, &it.IssuedDate, &it.CategoryID, &it.Attrs)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item.Item{}, item.ErrNotFound
		}

		return item.Item{}, err
	}

	return it, nil
}

func (r *ItemsRepo) Create(ctx context.Context, it item.Item) (item.Item, error) {
	err := r.observe("items.create", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO items (id, name, department, issued_date, category_id, dynamic_attributes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, it.ID, it.Name, it.Department, it.IssuedDate, it.CategoryID, it.Attrs)
		return e
	})

	if err != nil {
		return item.Item{}, err
	}

	return it, nil
}

// Update reads the row under a lock, overlays the payload and writes
// the whole row back, all in one transaction. The row lock keeps two
// concurrent updates from interleaving their read-modify-write.
func (r *ItemsRepo) Update(ctx context.Context, id string, p item.Payload) (it item.Item, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("items.update.lock_row", func() error {
		return tx.QueryRow(ctx, `
			SELECT id, name, department, issued_date, category_id, dynamic_attributes
			FROM items
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(&it.ID, &it.Name, &it.Department, &it.IssuedDate, &it.CategoryID, &it.Attrs)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = item.ErrNotFound
		}

		it = item.Item{}
		return
	}

	it.Apply(p)

	err = r.observe("items.update.write", func() error {
		_, e := tx.Exec(ctx, `
			UPDATE items
			SET name = $2,
				department = $3,
				issued_date = $4,
				category_id = $5,
				dynamic_attributes = $6
			WHERE id = $1
		`, it.ID, it.Name, it.Department, it.IssuedDate, it.CategoryID, it.Attrs)
		return e
	})

	if err != nil {
		it = item.Item{}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		it = item.Item{}
		return
	}

	return
}

func (r *ItemsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("items.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return item.ErrNotFound
	}

	return nil
}
