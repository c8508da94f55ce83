package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
)

// sessionRepo is the concrete implementation of SessionRepository
type sessionRepo struct {
	db *database.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *database.DB) SessionRepository {
	return &sessionRepo{db: db}
}

// Create inserts a new session
func (r *sessionRepo) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by token
func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := "SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1"

	var session models.Session
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session by token
func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	return err
}

// DeleteByUser removes all sessions belonging to a user
func (r *sessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	return err
}

// DeleteExpired removes sessions that expired before the given time
func (r *sessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
