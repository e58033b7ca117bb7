package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/catalog-service/internal/core/domain"
)

var ErrNoRowsAffected = errors.New("no rows affected")

const itemColumns = "id, name, category, price, stock, description, size, color, image_ref, created_at, updated_at"

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// buildWhere assembles the WHERE clause for an item filter. Name
// matching is a case-insensitive substring match; category is an
// exact match against the stored (lowercase) value.
func buildWhere(f domain.ItemFilter) (string, []any) {
	var conds []string
	var args []any

	if f.NameContains != "" {
		conds = append(conds, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.NameContains)+"%")
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (m *MySQLAdapter) FindAll(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	where, args := buildWhere(f)
	query := "SELECT " + itemColumns + " FROM items" + where

	switch {
	case f.NewestFirst:
		query += " ORDER BY created_at DESC"
	case f.Sort == domain.SortAsc:
		query += " ORDER BY price ASC"
	case f.Sort == domain.SortDesc:
		query += " ORDER BY price DESC"
	}

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Skip > 0 {
			query += " OFFSET ?"
			args = append(args, f.Skip)
		}
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) Count(ctx context.Context, f domain.ItemFilter) (int, error) {
	where, args := buildWhere(f)

	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func (m *MySQLAdapter) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT DISTINCT category FROM items ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (m *MySQLAdapter) Create(ctx context.Context, item *domain.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO items (id, name, category, price, stock, description, size, color, image_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Category, item.Price, item.Stock,
		item.Description, string(item.Size), item.Color, item.ImageRef,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Save(ctx context.Context, item domain.Item) error {
	item.UpdatedAt = time.Now().UTC()

	_, err := m.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, category = ?, price = ?, stock = ?, description = ?, size = ?, color = ?, image_ref = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Category, item.Price, item.Stock,
		item.Description, string(item.Size), item.Color, item.ImageRef,
		item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, id string) error {
	result, err := m.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete item %s: %w", id, ErrNoRowsAffected)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var item domain.Item
	var size string
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Price, &item.Stock,
		&item.Description, &size, &item.Color, &item.ImageRef,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, err
	}
	item.Size = domain.ParseSize(size)
	return item, nil
}
