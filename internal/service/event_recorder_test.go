package service

import (
	"context"
	"testing"
	"time"

	"github.com/cagecms/cage/internal/mocks"
	"github.com/cagecms/cage/internal/models"
	"github.com/rs/zerolog"
)

func TestEventRecorderPersistsQueuedEvents(t *testing.T) {
	repo := mocks.NewMockEventRepository()
	svc := newEventService(repo, 16, zerolog.Nop())

	svc.Start(context.Background())

	userID := "writer01"
	svc.Record(EventMeta{
		UserID:    &userID,
		IPAddress: "203.0.113.7",
		Endpoint:  "/api/login",
	}, models.EventAuthLogin, "user(writer01) login.")
	svc.Record(EventMeta{}, models.EventArticlePost, "author(writer01) posted a new article(hello-world).")

	// Stop drains the queue before returning.
	svc.Stop()

	events := repo.Recorded()
	if len(events) != 2 {
		t.Fatalf("expected 2 persisted events, got %d", len(events))
	}
	if events[0].Type != models.EventAuthLogin {
		t.Errorf("first event type = %q", events[0].Type)
	}
	if events[0].UserID == nil || *events[0].UserID != "writer01" {
		t.Error("user id not carried into the event")
	}
	if events[0].ID == "" {
		t.Error("event id not assigned")
	}
	if events[0].CreateTime.IsZero() {
		t.Error("event time not set")
	}
}

func TestEventRecorderDropsWhenFull(t *testing.T) {
	repo := mocks.NewMockEventRepository()
	svc := newEventService(repo, 1, zerolog.Nop())

	// Not started: the queue holds one event, the rest are dropped
	// without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			svc.Record(EventMeta{}, models.EventException, "overflow")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	svc.Start(context.Background())
	svc.Stop()

	if got := len(repo.Recorded()); got != 1 {
		t.Errorf("expected 1 persisted event, got %d", got)
	}
}

func TestEventRecorderStartTwice(t *testing.T) {
	repo := mocks.NewMockEventRepository()
	svc := newEventService(repo, 4, zerolog.Nop())

	svc.Start(context.Background())
	svc.Start(context.Background())
	svc.Record(EventMeta{}, models.EventAuthLogin, "once")
	svc.Stop()
	svc.Stop()

	if got := len(repo.Recorded()); got != 1 {
		t.Errorf("expected 1 persisted event, got %d", got)
	}
}

func TestEventList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := env.repos.Event.Create(ctx, &models.Event{
			ID:         string(rune('a' + i)),
			Type:       models.EventAuthLogin,
			CreateTime: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatal(err)
		}
	}

	events, err := env.services.Event.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Newest first.
	if events[0].ID != "c" {
		t.Errorf("first event = %q, want the newest", events[0].ID)
	}
}
