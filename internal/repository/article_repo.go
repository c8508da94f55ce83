package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `
	a.id, a.is_commentable, a.title, a.text_type, a.source_text, a.content,
	a.read_count, a.post_time, a.update_time, a.public, a.category, a.author,
	COALESCE(c.name, ''), COALESCE(u.name, '')
`

const articleJoins = `
	FROM articles a
	LEFT JOIN categories c ON c.id = a.category
	LEFT JOIN users u ON u.id = a.author
`

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, is_commentable, title, text_type, source_text, content,
			read_count, post_time, update_time, public, category, author)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.IsCommentable, article.Title, article.TextType,
		article.SourceText, article.Content, article.ReadCount,
		article.PostTime, article.UpdateTime, article.Public,
		article.CategoryID, article.AuthorID,
	)
	return mapError(err)
}

// GetByID retrieves an article with joined author and category names
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := "SELECT " + articleColumns + articleJoins + " WHERE a.id = $1"

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// List retrieves articles matching the filter. Order keys are mapped
// through models.ArticleOrderKeys, never interpolated from input.
func (r *articleRepo) List(ctx context.Context, filter ArticleFilter) ([]*models.Article, error) {
	orderColumn, ok := models.ArticleOrderKeys[filter.OrderKey]
	if !ok {
		orderColumn = models.ArticleOrderDefault
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}

	query := "SELECT " + articleColumns + articleJoins
	args := []interface{}{}
	where := ""

	if filter.PublicOnly {
		where = " WHERE a.public = TRUE"
	}
	if filter.Category != "" {
		if where == "" {
			where = " WHERE"
		} else {
			where += " AND"
		}
		args = append(args, filter.Category)
		where += fmt.Sprintf(" a.category = $%d", len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += where + fmt.Sprintf(" ORDER BY a.%s %s LIMIT $%d OFFSET $%d",
		orderColumn, direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Update persists mutable article fields; id, title and post_time are
// immutable after creation
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles SET is_commentable = $1, text_type = $2, source_text = $3,
			content = $4, update_time = $5, public = $6, category = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		article.IsCommentable, article.TextType, article.SourceText,
		article.Content, article.UpdateTime, article.Public,
		article.CategoryID, article.ID,
	)
	return mapError(err)
}

// Delete removes an article; its comments cascade
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	return err
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// IncrementReadCount bumps the view counter atomically in the database
func (r *articleRepo) IncrementReadCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE articles SET read_count = read_count + 1 WHERE id = $1", id)
	return err
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var content sql.NullString
	var category, author sql.NullString

	err := row.Scan(
		&article.ID, &article.IsCommentable, &article.Title, &article.TextType,
		&article.SourceText, &content, &article.ReadCount,
		&article.PostTime, &article.UpdateTime, &article.Public,
		&category, &author, &article.CategoryName, &article.AuthorName,
	)
	if err != nil {
		return nil, err
	}

	article.Content = content.String
	if category.Valid {
		article.CategoryID = &category.String
	}
	if author.Valid {
		article.AuthorID = &author.String
	}
	return &article, nil
}
