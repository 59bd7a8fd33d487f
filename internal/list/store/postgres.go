package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/platform/tx"
)

// PostgresStore persists lists and items in PostgreSQL. Items cascade from
// lists (and lists from users) via ON DELETE CASCADE, so a single DELETE
// removes the whole subtree in one transaction. Share-token uniqueness is a
// partial unique index on lists.share_token.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const listColumns = `id, title, description, user_id, share_token, is_shared, created_at, updated_at`

func scanList(row *sql.Row) (*models.List, error) {
	var list models.List
	err := row.Scan(&list.ID, &list.Title, &list.Description, &list.UserID,
		&list.ShareToken, &list.IsShared, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan list: %w", err)
	}
	return &list, nil
}

func (s *PostgresStore) CreateList(ctx context.Context, list *models.List) error {
	q := tx.QuerierFrom(ctx, s.db)
	err := q.QueryRowContext(ctx, `
		INSERT INTO lists (title, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, list.Title, list.Description, list.UserID, list.CreatedAt).Scan(&list.ID)
	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindListByID(ctx context.Context, id int64) (*models.List, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanList(q.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = $1`, id))
}

// FindOwnership fetches only the tuple access control needs.
func (s *PostgresStore) FindOwnership(ctx context.Context, listID int64) (models.Ownership, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var own models.Ownership
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, is_shared FROM lists WHERE id = $1`, listID,
	).Scan(&own.ListID, &own.OwnerID, &own.IsShared)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ownership{}, sentinel.ErrNotFound
		}
		return models.Ownership{}, fmt.Errorf("find ownership: %w", err)
	}
	return own, nil
}

func (s *PostgresStore) ListsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]models.List, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT `+listColumns+`
		FROM lists
		WHERE user_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		var list models.List
		if err := rows.Scan(&list.ID, &list.Title, &list.Description, &list.UserID,
			&list.ShareToken, &list.IsShared, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// UpdateList writes title/description/updated_at. Share state changes go
// through ClaimShareToken/DisableShare so the token/flag pair stays atomic.
func (s *PostgresStore) UpdateList(ctx context.Context, list *models.List) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE lists SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`, list.ID, list.Title, list.Description, list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	return requireRow(res, "update list")
}

func (s *PostgresStore) DeleteList(ctx context.Context, id int64) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return requireRow(res, "delete list")
}

// FindListByShareToken is an exact-match lookup on the unique token column.
func (s *PostgresStore) FindListByShareToken(ctx context.Context, token string) (*models.List, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanList(q.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE share_token = $1`, token))
}

// ClaimShareToken sets the token iff none is present, in one statement, so
// two concurrent enables cannot both install a token. A token collision with
// another list surfaces as sentinel.ErrConflict for the caller to retry.
func (s *PostgresStore) ClaimShareToken(ctx context.Context, listID int64, token string) (bool, error) {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE lists SET share_token = $2, is_shared = TRUE, updated_at = now()
		WHERE id = $1 AND share_token IS NULL
	`, listID, token)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return false, sentinel.ErrConflict
		}
		return false, fmt.Errorf("claim share token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim share token: %w", err)
	}
	if affected == 1 {
		return true, nil
	}
	// Row untouched: either the list is gone or a token is already set.
	if _, err := s.FindOwnership(ctx, listID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *PostgresStore) DisableShare(ctx context.Context, listID int64) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE lists SET share_token = NULL, is_shared = FALSE, updated_at = now()
		WHERE id = $1
	`, listID)
	if err != nil {
		return fmt.Errorf("disable share: %w", err)
	}
	return requireRow(res, "disable share")
}

func (s *PostgresStore) CreateItem(ctx context.Context, item *models.Item) error {
	q := tx.QuerierFrom(ctx, s.db)
	err := q.QueryRowContext(ctx, `
		INSERT INTO items (name, checked, list_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, item.Name, item.Checked, item.ListID, item.CreatedAt).Scan(&item.ID)
	if err != nil {
		// The parent list vanished between the access check and the insert.
		if pgCode(err) == foreignKeyViolation {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindItemByID(ctx context.Context, id int64) (*models.Item, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var item models.Item
	err := q.QueryRowContext(ctx, `
		SELECT id, name, checked, list_id, created_at, updated_at
		FROM items WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Checked, &item.ListID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) ItemsByList(ctx context.Context, listID int64) ([]models.Item, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, checked, list_id, created_at, updated_at
		FROM items WHERE list_id = $1 ORDER BY id
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Checked, &item.ListID,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) UpdateItem(ctx context.Context, item *models.Item) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE items SET name = $2, checked = $3, updated_at = $4
		WHERE id = $1
	`, item.ID, item.Name, item.Checked, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireRow(res, "update item")
}

func (s *PostgresStore) DeleteItem(ctx context.Context, id int64) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRow(res, "delete item")
}

func requireRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
