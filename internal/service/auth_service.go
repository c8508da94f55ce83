package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles login sessions
type AuthService interface {
	Login(ctx context.Context, id, password string, remember bool, meta EventMeta) (*models.User, *models.Session, error)
	Logout(ctx context.Context, token string, meta EventMeta) error
	UserFromSession(ctx context.Context, token string) (*models.User, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)
	// StartSessionSweep periodically deletes expired sessions until the
	// context is cancelled.
	StartSessionSweep(ctx context.Context, interval time.Duration)
}

// authService is the concrete implementation of AuthService
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	events      EventService
	cfg         *config.AuthConfig
	log         zerolog.Logger
}

// newAuthService creates an AuthService
func newAuthService(repos *repository.Repositories, events EventService, cfg *config.AuthConfig, log zerolog.Logger) *authService {
	return &authService{
		userRepo:    repos.User,
		sessionRepo: repos.Session,
		events:      events,
		cfg:         cfg,
		log:         log.With().Str("service", "auth").Logger(),
	}
}

// Login verifies credentials and opens a session. Failed attempts are
// recorded in the audit log.
func (s *authService) Login(ctx context.Context, id, password string, remember bool, meta EventMeta) (*models.User, *models.Session, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, nil, fieldErr("id", "this user id does not exist")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.events.Record(meta, models.EventAuthLogin,
			fmt.Sprintf("user(%s) attempts to log in using wrong password.", user.ID))
		return nil, nil, fieldErr("password", "user id can not match this password")
	}

	if user.Expired {
		s.events.Record(meta, models.EventAuthLogin,
			fmt.Sprintf("expired user(%s) attempts to log in.", user.ID))
		return nil, nil, fieldErr("id", "this account is expired")
	}

	now := time.Now().UTC()
	lifetime := s.cfg.SessionLifetime
	if remember {
		lifetime = s.cfg.RememberLifetime
	}

	// One active session per user.
	if err := s.sessionRepo.DeleteByUser(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("clear old sessions: %w", err)
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update last login")
	}
	user.LastLogin = &now

	loginMeta := meta
	loginMeta.UserID = &user.ID
	s.events.Record(loginMeta, models.EventAuthLogin, fmt.Sprintf("user(%s) login.", user.ID))

	return user, session, nil
}

// Logout closes the session identified by token
func (s *authService) Logout(ctx context.Context, token string, meta EventMeta) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if meta.UserID != nil {
		s.events.Record(meta, models.EventAuthLogout, fmt.Sprintf("user(%s) logout.", *meta.UserID))
	}
	return nil
}

// UserFromSession resolves a session token to its user. Expired
// sessions are deleted on sight; expired accounts do not resolve.
func (s *authService) UserFromSession(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessionRepo.GetByID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			s.log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to delete expired session")
		}
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user == nil || user.Expired {
		return nil, nil
	}
	return user, nil
}

// DeleteExpiredSessions removes every session past its lifetime
func (s *authService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now().UTC())
}

// StartSessionSweep runs the periodic expired-session cleanup.
// UserFromSession already deletes expired sessions it touches; the
// sweep catches the ones nobody presents again.
func (s *authService) StartSessionSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.DeleteExpiredSessions(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("Failed to sweep expired sessions")
				continue
			}
			if deleted > 0 {
				s.log.Info().Int64("deleted", deleted).Msg("Swept expired sessions")
			}
		}
	}
}

// HashPassword encodes a plaintext password with bcrypt at the
// configured cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
