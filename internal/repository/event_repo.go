package repository

import (
	"context"
	"database/sql"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
)

// eventRepo is the concrete implementation of EventRepository. Events
// are append-only: the interface exposes no update or delete.
type eventRepo struct {
	db *database.DB
}

// NewEventRepo creates a new event repository
func NewEventRepo(db *database.DB) EventRepository {
	return &eventRepo{db: db}
}

// Create appends an audit record
func (r *eventRepo) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, type, description, ip_address, endpoint, request, create_time, "user")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Type, event.Description, event.IPAddress,
		event.Endpoint, event.Request, event.CreateTime, event.UserID,
	)
	return err
}

// List retrieves events newest first
func (r *eventRepo) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	query := `
		SELECT id, type, description, ip_address, endpoint, request, create_time, "user"
		FROM events ORDER BY create_time DESC LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var event models.Event
		var ipAddress, endpoint, request, userID sql.NullString

		if err := rows.Scan(
			&event.ID, &event.Type, &event.Description, &ipAddress,
			&endpoint, &request, &event.CreateTime, &userID,
		); err != nil {
			return nil, err
		}

		event.IPAddress = ipAddress.String
		event.Endpoint = endpoint.String
		event.Request = request.String
		if userID.Valid {
			event.UserID = &userID.String
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

// Count returns the total number of events
func (r *eventRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	return count, err
}
