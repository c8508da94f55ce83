package repository

import (
	"context"
	"database/sql"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// Create inserts a new category
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, create_time, create_by)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.CreateTime, category.CreateBy,
	)
	return mapError(err)
}

// GetByID retrieves a category with its article count
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT c.id, c.name, c.create_time, c.create_by, COUNT(a.id)
		FROM categories c
		LEFT JOIN articles a ON a.category = c.id
		WHERE c.id = $1
		GROUP BY c.id
	`

	var category models.Category
	var createBy sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID, &category.Name, &category.CreateTime, &createBy, &category.ArticleCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if createBy.Valid {
		category.CreateBy = &createBy.String
	}
	return &category, nil
}

// List retrieves all categories with article counts. The order key is
// mapped to a fixed column expression, never interpolated from input.
func (r *categoryRepo) List(ctx context.Context, orderKey string, desc bool) ([]*models.Category, error) {
	orderColumn := map[string]string{
		models.CategoryOrderCreateTime:   "c.create_time",
		models.CategoryOrderName:         "c.name",
		models.CategoryOrderArticleCount: "COUNT(a.id)",
	}[orderKey]
	if orderColumn == "" {
		orderColumn = "c.create_time"
	}

	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	query := `
		SELECT c.id, c.name, c.create_time, c.create_by, COUNT(a.id)
		FROM categories c
		LEFT JOIN articles a ON a.category = c.id
		GROUP BY c.id
		ORDER BY ` + orderColumn + ` ` + direction

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var category models.Category
		var createBy sql.NullString

		if err := rows.Scan(
			&category.ID, &category.Name, &category.CreateTime, &createBy, &category.ArticleCount,
		); err != nil {
			return nil, err
		}

		if createBy.Valid {
			category.CreateBy = &createBy.String
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

// Rename changes a category's name
func (r *categoryRepo) Rename(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE categories SET name = $1 WHERE id = $2", name, id)
	return mapError(err)
}

// Delete removes a category; referencing articles keep a NULL category
func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

// Exists checks if a category with the given ID exists
func (r *categoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// NameExists checks if a category with the given name exists
func (r *categoryRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)", name).Scan(&exists)
	return exists, err
}
