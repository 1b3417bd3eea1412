package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stocktrack/stationery/internal/domain/user"
	"github.com/stocktrack/stationery/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_username", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, password, role FROM users WHERE username = $1`,
			username,
		).Scan(&u.ID, &u.Username, &u.Password, &u.Role)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create inserts a new user. The admin existence check gives the
// common case a clean ErrAdminExists; the partial unique index on
// role = 'admin' is what actually rules out two concurrent admin
// registrations, since at read committed both could pass the check.
func (r *UsersRepo) Create(ctx context.Context, username, passwordHash, role string) (u user.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if role == user.RoleAdmin {
		var adminExists bool

		err = r.observe("users.create.admin_check", func() error {
			return tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, user.RoleAdmin).Scan(&adminExists)
		})

		if err != nil {
			return
		}

		if adminExists {
			err = user.ErrAdminExists
			return
		}
	}

	u = user.User{Username: username, Password: passwordHash, Role: role}

	err = r.observe("users.create.insert", func() error {
		return tx.QueryRow(ctx,
			`INSERT INTO users (username, password, role) VALUES ($1, $2, $3) RETURNING id`,
			username, passwordHash, role,
		).Scan(&u.ID)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_single_admin_idx" {
				err = user.ErrAdminExists
			} else {
				err = user.ErrUsernameTaken
			}
		}

		u = user.User{}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		u = user.User{}
		return
	}

	return
}

func (r *UsersRepo) AdminExists(ctx context.Context) (bool, error) {
	var exists bool

	err := r.observe("users.admin_exists", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, user.RoleAdmin).Scan(&exists)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}

// UpdatePassword rewrites a stored credential, used by the one-way
// plaintext-to-hash migration during login.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	var tag pgconn.CommandTag

	err := r.observe("users.update_password", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, passwordHash)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
