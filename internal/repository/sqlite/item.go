package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/shopcart/internal/domain"
)

// ItemRepository implements domain.ItemRepository using SQLite.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new SQLite-backed ItemRepository.
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db.SqlDB}
}

const itemColumns = `id, name, description, price, category, image_key, image_type, stock, created_at, updated_at`

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO items (name, description, price, category, image_key, image_type, stock, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Price, item.Category,
		item.ImageKey, item.ImageType, item.Stock, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
}

func (r *ItemRepository) GetByName(ctx context.Context, name string) (*domain.Item, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE name = ?`, name))
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, price = ?, category = ?,
		        image_key = ?, image_type = ?, stock = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.Description, item.Price, item.Category,
		item.ImageKey, item.ImageType, item.Stock, now, item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("update item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	item.UpdatedAt = now
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) List(ctx context.Context, filter domain.ItemFilter, limit, offset int) ([]domain.Item, error) {
	where, args := buildItemFilter(filter)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
			&item.Category, &item.ImageKey, &item.ImageType, &item.Stock,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Count(ctx context.Context, filter domain.ItemFilter) (int, error) {
	where, args := buildItemFilter(filter)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func buildItemFilter(filter domain.ItemFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Category != "" && filter.Category != "All" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.Search != "" {
		clauses = append(clauses, "name LIKE ? ESCAPE '\\' COLLATE NOCASE")
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func (r *ItemRepository) scanOne(row *sql.Row) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.ImageKey, &item.ImageType, &item.Stock,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}
