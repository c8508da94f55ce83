package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, password_hash, permission, expired, last_login, create_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.PasswordHash, int64(user.Permission),
		user.Expired, user.LastLogin, user.CreateTime,
	)
	return mapError(err)
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, password_hash, permission, expired, last_login, create_time
		FROM users WHERE id = $1
	`

	var user models.User
	var permission int64
	var lastLogin sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.PasswordHash, &permission,
		&user.Expired, &lastLogin, &user.CreateTime,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Permission = models.Permission(permission)
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

// List retrieves users ordered by creation time
func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT id, name, password_hash, permission, expired, last_login, create_time
		FROM users ORDER BY create_time LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var permission int64
		var lastLogin sql.NullTime

		if err := rows.Scan(
			&user.ID, &user.Name, &user.PasswordHash, &permission,
			&user.Expired, &lastLogin, &user.CreateTime,
		); err != nil {
			return nil, err
		}

		user.Permission = models.Permission(permission)
		if lastLogin.Valid {
			user.LastLogin = &lastLogin.Time
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Update persists mutable user fields (name, password, permission, expired)
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET name = $1, password_hash = $2, permission = $3, expired = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		user.Name, user.PasswordHash, int64(user.Permission), user.Expired, user.ID,
	)
	return mapError(err)
}

// UpdateLastLogin stamps the user's last successful login
func (r *userRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = $1 WHERE id = $2", at, id)
	return err
}

// Delete removes a user; articles and categories keep a NULL owner,
// comments and events cascade
func (r *userRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

// Exists checks if a user with the given ID exists
func (r *userRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// NameExists checks if a user with the given name exists
func (r *userRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)", name).Scan(&exists)
	return exists, err
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
