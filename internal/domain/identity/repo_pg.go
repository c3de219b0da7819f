package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medledger/medledger/internal/platform/ledger"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type UserRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepoPG(pool *pgxpool.Pool) *UserRepoPG {
	return &UserRepoPG{pool: pool}
}

func (r *UserRepoPG) conn(ctx context.Context) queryable {
	if tx := ledger.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `address, name, contact_info, role, registered, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.Address, &u.Name, &u.ContactInfo, &u.Role, &u.Registered, &u.CreatedAt)
	return &u, err
}

func (r *UserRepoPG) Create(ctx context.Context, u *User) error {
	row := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO users (address, name, contact_info, role, registered)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING created_at`,
		u.Address, u.Name, u.ContactInfo, u.Role)
	if err := row.Scan(&u.CreatedAt); err != nil {
		if ledger.IsConstraintViolation(err, "users_pkey") {
			return ErrDuplicateAddress
		}
		return ledger.ClassifyError(err)
	}
	u.Registered = true
	return nil
}

func (r *UserRepoPG) GetByAddress(ctx context.Context, address string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE address = $1`, address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ledger.ClassifyError(err)
	}
	return u, nil
}

func (r *UserRepoPG) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, ledger.ClassifyError(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users WHERE role = $1 ORDER BY created_at, address LIMIT $2 OFFSET $3`,
		role, limit, offset)
	if err != nil {
		return nil, 0, ledger.ClassifyError(err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, ledger.ClassifyError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, ledger.ClassifyError(err)
	}
	return users, total, nil
}
