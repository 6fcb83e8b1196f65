package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newID() string {
	return uuid.NewString()
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func (a *App) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.DB.Ping(ctx)
}

// ---- businesses ----

const businessColumns = `id, name, slug, COALESCE(phone,''), COALESCE(address,''), created_at`

func scanBusiness(row pgx.Row) (*Business, error) {
	var b Business
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Phone, &b.Address, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func insertBusiness(ctx context.Context, q querier, b *Business) error {
	b.ID = newID()
	err := q.QueryRow(ctx,
		`INSERT INTO businesses (id, name, slug, phone, address)
		 VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''))
		 RETURNING created_at`,
		b.ID, b.Name, b.Slug, b.Phone, b.Address,
	).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

func (a *App) GetBusiness(ctx context.Context, id string) (*Business, error) {
	b, err := scanBusiness(a.DB.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

func (a *App) GetBusinessBySlug(ctx context.Context, slug string) (*Business, error) {
	b, err := scanBusiness(a.DB.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE slug=$1`, slug))
	if err != nil {
		return nil, fmt.Errorf("get business by slug: %w", err)
	}
	return b, nil
}

func (a *App) ListBusinesses(ctx context.Context) ([]Business, error) {
	rows, err := a.DB.Query(ctx, `SELECT `+businessColumns+` FROM businesses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	out := []Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (a *App) UpdateBusiness(ctx context.Context, b *Business) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE businesses SET name=$1, slug=$2, phone=NULLIF($3,''), address=NULLIF($4,'') WHERE id=$5`,
		b.Name, b.Slug, b.Phone, b.Address, b.ID)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- users ----

const userColumns = `id, business_id, role, full_name, email, COALESCE(phone,''), COALESCE(photo_url,''), password_hash, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.BusinessID, &u.Role, &u.FullName, &u.Email,
		&u.Phone, &u.PhotoURL, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func insertUser(ctx context.Context, q querier, u *User) error {
	u.ID = newID()
	err := q.QueryRow(ctx,
		`INSERT INTO users (id, business_id, role, full_name, email, phone, password_hash)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), $7)
		 RETURNING created_at`,
		u.ID, u.BusinessID, u.Role, u.FullName, u.Email, u.Phone, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (a *App) CreateUser(ctx context.Context, u *User) error {
	return insertUser(ctx, a.DB, u)
}

func (a *App) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(a.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (a *App) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(a.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (a *App) UpdateUserProfile(ctx context.Context, id, fullName, phone string) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE users SET full_name=$1, phone=NULLIF($2,'') WHERE id=$3`, fullName, phone, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *App) UpdateUserPassword(ctx context.Context, id, hash string) error {
	_, err := a.DB.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (a *App) ListEmployees(ctx context.Context, businessID string) ([]User, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE business_id=$1 AND role='employee' ORDER BY full_name`,
		businessID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (a *App) GetEmployee(ctx context.Context, businessID, id string) (*User, error) {
	u, err := scanUser(a.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1 AND business_id=$2 AND role='employee'`,
		id, businessID))
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return u, nil
}

func (a *App) UpdateEmployee(ctx context.Context, u *User) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE users SET full_name=$1, email=$2, phone=NULLIF($3,'')
		 WHERE id=$4 AND business_id=$5 AND role='employee'`,
		u.FullName, u.Email, u.Phone, u.ID, u.BusinessID)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *App) DeleteEmployee(ctx context.Context, businessID, id string) error {
	tag, err := a.DB.Exec(ctx,
		`DELETE FROM users WHERE id=$1 AND business_id=$2 AND role='employee'`, id, businessID)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
