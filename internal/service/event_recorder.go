package service

import (
	"context"
	"sync"
	"time"

	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventMeta carries the request context attached to an audit event:
// the acting user, client address, route, and the captured request
// line with headers. The request body is never included.
type EventMeta struct {
	UserID    *string
	IPAddress string
	Endpoint  string
	Request   string
}

// EventService records audit events asynchronously and serves the
// audit log read path.
type EventService interface {
	// Record enqueues an event. It never blocks the caller; when the
	// buffer is full the event is dropped and the drop is logged.
	Record(meta EventMeta, eventType, description string)
	Start(ctx context.Context)
	Stop()
	List(ctx context.Context, limit, page int) ([]*models.Event, error)
	Count(ctx context.Context) (int, error)
}

// eventService is the concrete implementation of EventService. Events
// are written by a background worker so a slow audit insert never
// delays the request that triggered it.
type eventService struct {
	eventRepo repository.EventRepository
	log       zerolog.Logger

	queue   chan *models.Event
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// newEventService creates an EventService with the given queue depth
func newEventService(eventRepo repository.EventRepository, bufferSize int, log zerolog.Logger) *eventService {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &eventService{
		eventRepo: eventRepo,
		log:       log.With().Str("service", "event").Logger(),
		queue:     make(chan *models.Event, bufferSize),
	}
}

// Record enqueues an audit event for background persistence
func (s *eventService) Record(meta EventMeta, eventType, description string) {
	event := &models.Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Description: description,
		IPAddress:   meta.IPAddress,
		Endpoint:    meta.Endpoint,
		Request:     meta.Request,
		CreateTime:  time.Now().UTC(),
		UserID:      meta.UserID,
	}

	select {
	case s.queue <- event:
	default:
		// Audit writes must never block or fail a request.
		s.log.Warn().Str("type", eventType).Msg("Event queue full, dropping event")
	}
}

// Start runs the background event writer until the context is
// cancelled or Stop is called
func (s *eventService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Int("buffer", cap(s.queue)).Msg("Event recorder started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Interface("panic", r).Msg("Event recorder panicked - recovered")
			}
		}()

		for {
			select {
			case <-s.ctx.Done():
				s.drain()
				return
			case event := <-s.queue:
				s.persist(event)
			}
		}
	}()
}

// Stop shuts the recorder down, draining queued events first
func (s *eventService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Event recorder stopped")
}

// drain flushes events still queued at shutdown
func (s *eventService) drain() {
	for {
		select {
		case event := <-s.queue:
			s.persist(event)
		default:
			return
		}
	}
}

func (s *eventService) persist(event *models.Event) {
	// Detached from the recorder context so shutdown still flushes.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Error().Err(err).Str("type", event.Type).Msg("Failed to record event")
	}
}

// List retrieves recent audit events, newest first
func (s *eventService) List(ctx context.Context, limit, page int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if page < 0 {
		page = 0
	}
	return s.eventRepo.List(ctx, limit, limit*page)
}

// Count returns the total number of recorded events
func (s *eventService) Count(ctx context.Context) (int, error) {
	return s.eventRepo.Count(ctx)
}
