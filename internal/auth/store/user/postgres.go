package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/willian-mayer/listify/internal/auth/models"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL. Email uniqueness is enforced
// by the users_email_key constraint; the store surfaces violations as
// sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	q := tx.QuerierFrom(ctx, s.db)
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (name, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, user.Name, user.Email, user.HashedPassword, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var user models.User
	err := q.QueryRowContext(ctx, `
		SELECT id, name, email, hashed_password, created_at, updated_at
		FROM users `+where,
		arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Delete removes the user row. Owned lists and their items go with it via
// ON DELETE CASCADE on lists.user_id and items.list_id.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
