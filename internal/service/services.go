package service

import (
	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/render"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/validation"
	"github.com/rs/zerolog"
)

// Services holds all service interfaces
type Services struct {
	Auth     AuthService
	User     UserService
	Category CategoryService
	Article  ArticleService
	Comment  CommentService
	Event    EventService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, registry *render.Registry, validator *validation.Validator, log zerolog.Logger) *Services {
	eventSvc := newEventService(repos.Event, cfg.Blog.EventBufferSize, log)

	return &Services{
		Auth:     newAuthService(repos, eventSvc, &cfg.Auth, log),
		User:     newUserService(repos, eventSvc, validator, cfg, log),
		Category: newCategoryService(repos, eventSvc, validator, log),
		Article:  newArticleService(repos, eventSvc, registry, validator, cfg, log),
		Comment:  newCommentService(repos, eventSvc, cfg, log),
		Event:    eventSvc,
	}
}
