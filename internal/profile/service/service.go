package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"censusdesk/internal/audit"
	census "censusdesk/internal/census/models"
	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/sentinel"
	"censusdesk/pkg/requestcontext"
)

const (
	MsgEmailTaken = "An account with this email already exists."
	MsgIDTaken    = "An account with this identity provider id already exists."
)

// Store persists profiles.
// Error Contract:
// - FindByID and Update return sentinel.ErrNotFound for unknown ids
// - Insert and Update return sentinel.ErrAlreadyUsed when the e-mail is taken
// - Insert returns sentinel.ErrConflict when the id is taken
type Store interface {
	FindByID(ctx context.Context, actorID id.ActorID) (*models.Profile, error)
	Insert(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, p *models.Profile) error
	ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error)
}

// Cache fronts the store for Resolve. Get returns sentinel.ErrCacheMiss on a miss.
type Cache interface {
	Get(ctx context.Context, actorID id.ActorID) (*models.Profile, error)
	Set(ctx context.Context, p *models.Profile) error
	Invalidate(ctx context.Context, actorID id.ActorID) error
}

type Option func(*Service)

// Service owns actor profiles: who an authenticated identity is, and which
// role and territory they act under.
type Service struct {
	store   Store
	cache   Cache
	auditor *audit.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithCache enables read-through caching in Resolve.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Resolve loads the profile behind an authenticated actor id. An identity
// without a profile is treated as unauthenticated.
func (s *Service) Resolve(ctx context.Context, actorID id.ActorID) (*models.Profile, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing actor context")
	}
	if s.cache != nil {
		p, err := s.cache.Get(ctx, actorID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sentinel.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "profile cache read failed", "error", err)
		}
	}

	p, err := s.store.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "no profile registered for this account")
		}
		return nil, dErrors.WrapInfra(err, "failed to load profile")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "profile cache write failed", "error", err)
		}
	}
	return p, nil
}

// RegisterExecutive lets an admin add a field executive assigned to a territory.
func (s *Service) RegisterExecutive(ctx context.Context, actor *models.Profile, req *models.RegisterExecutiveRequest) (*models.Profile, error) {
	if !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can register executives")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	newID := id.NewActorID()
	if req.ID != "" {
		parsed, err := id.ParseActorID(req.ID)
		if err != nil {
			return nil, err
		}
		newID = parsed
	}
	territory := census.Territory(req.Territory)
	now := s.now()
	p := &models.Profile{
		ID:        newID,
		Email:     req.Email,
		Name:      req.Name,
		Role:      models.RoleExecutive,
		Territory: &territory,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		ActorID:   actor.ID.String(),
		ActorRole: string(actor.Role),
		Action:    string(audit.EventExecutiveRegistered),
		Subject:   p.ID.String(),
		Territory: string(territory),
	})
	s.logger.InfoContext(ctx, "executive registered",
		"executive_id", p.ID.String(),
		"territory", string(territory),
	)
	return p, nil
}

// RegisterAdmin creates an admin profile. It is reserved for operator tooling
// and performs no caller check.
func (s *Service) RegisterAdmin(ctx context.Context, actorID id.ActorID, email, name string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	if actorID.IsNil() {
		actorID = id.NewActorID()
	}
	now := s.now()
	p := &models.Profile{
		ID:        actorID,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "admin registered", "admin_id", p.ID.String())
	return p, nil
}

// UpdateProfile changes the caller's display name and, for executives only,
// their territory.
func (s *Service) UpdateProfile(ctx context.Context, actor *models.Profile, req *models.UpdateProfileRequest) (*models.Profile, error) {
	if actor == nil || actor.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing actor context")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "no profile registered for this account")
		}
		return nil, dErrors.WrapInfra(err, "failed to load profile")
	}

	current.Name = req.Name
	if current.IsExecutive() && req.Territory != nil {
		t := census.Territory(*req.Territory)
		current.Territory = &t
	}
	current.UpdatedAt = s.now()

	if err := s.store.Update(ctx, current); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "no profile registered for this account")
		}
		return nil, dErrors.WrapInfra(err, "failed to update profile")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, current.ID); err != nil {
			s.logger.WarnContext(ctx, "profile cache invalidation failed", "error", err)
		}
	}

	event := audit.Event{
		ActorID:   current.ID.String(),
		ActorRole: string(current.Role),
		Action:    string(audit.EventProfileUpdated),
		Subject:   current.ID.String(),
	}
	if current.Territory != nil {
		event.Territory = string(*current.Territory)
	}
	s.emitAudit(ctx, event)
	return current, nil
}

// ListExecutives returns every executive, newest first. Admin only.
func (s *Service) ListExecutives(ctx context.Context, actor *models.Profile) ([]*models.Profile, error) {
	if !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can list executives")
	}
	list, err := s.store.ListByRole(ctx, models.RoleExecutive)
	if err != nil {
		return nil, dErrors.WrapInfra(err, "failed to list executives")
	}
	return list, nil
}

func (s *Service) insert(ctx context.Context, p *models.Profile) error {
	err := s.store.Insert(ctx, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, MsgEmailTaken)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, MsgIDTaken)
	default:
		return dErrors.WrapInfra(err, "failed to save profile")
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
