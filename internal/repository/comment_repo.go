package repository

import (
	"context"
	"database/sql"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `
	id, content, nickname, reviewed, create_time, ip_address, is_author,
	article, "user", refer_to
`

// Create inserts a new comment and fills in the generated ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (content, nickname, reviewed, create_time, ip_address,
			is_author, article, "user", refer_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		comment.Content, comment.Nickname, comment.Reviewed, comment.CreateTime,
		comment.IPAddress, comment.IsAuthor, comment.ArticleID,
		comment.UserID, comment.ReferTo,
	).Scan(&comment.ID)
}

// GetByID retrieves a comment scoped to its article
func (r *commentRepo) GetByID(ctx context.Context, articleID string, id int64) (*models.Comment, error) {
	query := "SELECT " + commentColumns + ` FROM comments WHERE id = $1 AND article = $2`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id, articleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByArticle retrieves comments on an article in creation order.
// With reviewedOnly set, unreviewed comments are filtered out.
func (r *commentRepo) ListByArticle(ctx context.Context, articleID string, reviewedOnly bool, limit, offset int) ([]*models.Comment, error) {
	query := "SELECT " + commentColumns + ` FROM comments WHERE article = $1`
	if reviewedOnly {
		query += " AND reviewed = TRUE"
	}
	query += " ORDER BY create_time LIMIT $2 OFFSET $3"

	rows, err := r.db.QueryContext(ctx, query, articleID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// MarkReviewed flips the moderation flag to true
func (r *commentRepo) MarkReviewed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE comments SET reviewed = TRUE WHERE id = $1", id)
	return err
}

// Delete removes a comment; replies cascade
func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	return err
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var nickname, ipAddress, userID sql.NullString
	var referTo sql.NullInt64

	err := row.Scan(
		&comment.ID, &comment.Content, &nickname, &comment.Reviewed,
		&comment.CreateTime, &ipAddress, &comment.IsAuthor,
		&comment.ArticleID, &userID, &referTo,
	)
	if err != nil {
		return nil, err
	}

	comment.Nickname = nickname.String
	comment.IPAddress = ipAddress.String
	if userID.Valid {
		comment.UserID = &userID.String
	}
	if referTo.Valid {
		comment.ReferTo = &referTo.Int64
	}
	return &comment, nil
}
