package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"censusdesk/internal/audit"
	"censusdesk/internal/census/access"
	"censusdesk/internal/census/duplicate"
	"censusdesk/internal/census/metrics"
	"censusdesk/internal/census/models"
	"censusdesk/internal/census/query"
	"censusdesk/internal/census/report"
	"censusdesk/internal/census/validation"
	"censusdesk/internal/platform/tracer"
	profile "censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/privacy"
	"censusdesk/pkg/platform/sentinel"
	platformsync "censusdesk/pkg/platform/sync"
	"censusdesk/pkg/requestcontext"
)

const (
	// MsgNotFoundOrDenied is shared by update and delete so a caller cannot
	// tell a foreign record from a missing one.
	MsgNotFoundOrDenied = "Census record not found or you do not have permission to change it."
	MsgCreateForbidden  = "Only field executives can submit census records."
	MsgRecordNotFound   = "Census record not found."
)

// operation labels for metrics, spans and logs
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opGet    = "get"
	opList   = "list"
	opLookup = "lookup"
)

// Store persists census records.
// Error Contract:
// - FindByID, Update and Delete return sentinel.ErrNotFound for unknown ids
// - Insert and Update return sentinel.ErrAlreadyUsed when the identity pair is taken
// - Insert returns sentinel.ErrConflict when the id is taken
// - List returns records ordered by SubmittedAt descending
type Store interface {
	FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	List(ctx context.Context, spec models.QuerySpec) ([]*models.Record, error)
	FindByIdentity(ctx context.Context, key models.IdentityKey) ([]id.RecordID, error)
	Insert(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, recordID id.RecordID) error
}

// ExecutiveDirectory lists registered executives for admin dashboards.
type ExecutiveDirectory interface {
	ListExecutives(ctx context.Context, actor *profile.Profile) ([]*profile.Profile, error)
}

type Option func(*Service)

// Service is the census record engine: it validates, deduplicates, scopes and
// persists household records on behalf of a resolved actor.
type Service struct {
	store      Store
	auditor    *audit.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	executives ExecutiveDirectory
	now        func() time.Time
	recentN    int
	// identities serializes the duplicate check and the write per identity
	// pair within this process. The store still rejects cross-process races.
	identities *platformsync.KeyedMutex
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		auditor:    auditor,
		logger:     logger,
		tracer:     tracer.NewNoop(),
		recentN:    query.DefaultRecentActivity,
		identities: platformsync.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithExecutiveDirectory enables the active executive count and submitter
// names on admin dashboards.
func WithExecutiveDirectory(d ExecutiveDirectory) Option {
	return func(s *Service) {
		s.executives = d
	}
}

// WithClock overrides the request time. Without it the request-scoped time
// from context is used.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRecentActivity sets the size of the dashboard activity feed.
func WithRecentActivity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentN = n
		}
	}
}

// Create validates raw and stores it as a new record submitted by actor.
func (s *Service) Create(ctx context.Context, actor *profile.Profile, raw models.RawInput) (*models.Record, error) {
	if !access.CanCreate(actor) {
		s.reject(opCreate, metrics.ReasonForbidden)
		s.emitDenied(ctx, actor, opCreate, "")
		return nil, dErrors.New(dErrors.CodeForbidden, MsgCreateForbidden)
	}

	validated, err := validation.Validate(raw)
	if err != nil {
		s.reject(opCreate, metrics.ReasonValidation)
		return nil, err
	}
	unlock := s.identities.Lock(validated.Key().LockKey())
	defer unlock()
	if err := duplicate.Check(ctx, validated.Key(), nil, s.lookup); err != nil {
		s.rejectErr(opCreate, err)
		return nil, err
	}

	now := s.requestTime(ctx)
	record := &models.Record{
		ID:                 id.NewRecordID(),
		SubmittedByID:      actor.ID,
		SubmittedByContact: actor.Email,
		SubmittedAt:        now,
	}
	record.Apply(validated, now)

	if err := s.storeCall(ctx, opCreate, record, func(ctx context.Context) error {
		return s.store.Insert(ctx, record)
	}); err != nil {
		err = s.translateWrite(err, false, "failed to save census record")
		s.rejectErr(opCreate, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncCreated(string(record.Territory))
	}
	s.emitAudit(ctx, actor, audit.EventRecordCreated, record)
	s.logger.InfoContext(ctx, "census record created",
		"record_id", record.ID.String(),
		"territory", string(record.Territory),
		"identity_number", privacy.MaskIdentity(record.IdentityNumber),
		"submitted_by", privacy.MaskEmail(record.SubmittedByContact),
		"request_id", requestcontext.RequestID(ctx),
	)
	return record, nil
}

// Update replaces the household fields of a record the actor owns.
// Submission fields never change.
func (s *Service) Update(ctx context.Context, actor *profile.Profile, recordID id.RecordID, raw models.RawInput) (*models.Record, error) {
	existing, err := s.loadForChange(ctx, actor, recordID, models.OpUpdate)
	if err != nil {
		s.rejectErr(opUpdate, err)
		return nil, err
	}

	validated, err := validation.Validate(raw)
	if err != nil {
		s.reject(opUpdate, metrics.ReasonValidation)
		return nil, err
	}
	unlock := s.identities.Lock(validated.Key().LockKey())
	defer unlock()
	if err := duplicate.Check(ctx, validated.Key(), &recordID, s.lookup); err != nil {
		s.rejectErr(opUpdate, err)
		return nil, err
	}

	updated := *existing
	updated.Apply(validated, s.requestTime(ctx))

	if err := s.storeCall(ctx, opUpdate, &updated, func(ctx context.Context) error {
		return s.store.Update(ctx, &updated)
	}); err != nil {
		err = s.translateWrite(err, true, "failed to update census record")
		s.rejectErr(opUpdate, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncUpdated()
	}
	s.emitAudit(ctx, actor, audit.EventRecordUpdated, &updated)
	s.logger.InfoContext(ctx, "census record updated",
		"record_id", updated.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &updated, nil
}

// Delete permanently removes a record the actor owns.
func (s *Service) Delete(ctx context.Context, actor *profile.Profile, recordID id.RecordID) error {
	existing, err := s.loadForChange(ctx, actor, recordID, models.OpDelete)
	if err != nil {
		s.rejectErr(opDelete, err)
		return err
	}

	if err := s.storeCall(ctx, opDelete, existing, func(ctx context.Context) error {
		return s.store.Delete(ctx, recordID)
	}); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeForbidden, MsgNotFoundOrDenied)
		} else {
			err = storeError(err, "failed to delete census record")
		}
		s.rejectErr(opDelete, err)
		return err
	}

	if s.metrics != nil {
		s.metrics.IncDeleted()
	}
	s.emitAudit(ctx, actor, audit.EventRecordDeleted, existing)
	s.logger.InfoContext(ctx, "census record deleted",
		"record_id", recordID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Get returns one record visible to actor. Records outside the actor's scope
// are reported as not found.
func (s *Service) Get(ctx context.Context, actor *profile.Profile, recordID id.RecordID) (*models.Record, error) {
	record, err := s.find(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, MsgRecordNotFound)
		}
		return nil, storeError(err, "failed to load census record")
	}
	if !access.Authorize(actor, record, models.OpRead) {
		return nil, dErrors.New(dErrors.CodeNotFound, MsgRecordNotFound)
	}
	return record, nil
}

// History returns the audit trail of a record, oldest first. Admins can read
// the trail of deleted records; executives only that of records they can see.
func (s *Service) History(ctx context.Context, actor *profile.Profile, recordID id.RecordID) ([]audit.Event, error) {
	if !actor.IsAdmin() {
		if _, err := s.Get(ctx, actor, recordID); err != nil {
			return nil, err
		}
	}
	if s.auditor == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditor.History(ctx, recordID.String())
	if err != nil {
		return nil, storeError(err, "failed to load record history")
	}
	return events, nil
}

// ListFor returns the records actor may see, newest first, narrowed by filter.
func (s *Service) ListFor(ctx context.Context, actor *profile.Profile, filter models.Filter) ([]*models.Record, error) {
	records, err := s.scoped(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !filter.IsEmpty() {
		records = query.Filter(records, filter)
	}
	if s.metrics != nil {
		s.metrics.ObserveListed(len(records))
	}
	return records, nil
}

// Dashboard aggregates the actor's visible records. The executive count is
// only filled in for admins. Activity entries show the submitter's name when
// it is known and the contact otherwise.
func (s *Service) Dashboard(ctx context.Context, actor *profile.Profile) (*models.Dashboard, error) {
	var (
		records    []*models.Record
		executives []*profile.Profile
	)
	countExecutives := actor.IsAdmin() && s.executives != nil

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.scoped(gctx, actor)
		return err
	})
	if countExecutives {
		g.Go(func() error {
			list, err := s.executives.ListExecutives(gctx, actor)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list executives")
			}
			executives = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash := &models.Dashboard{
		TotalRecords: len(records),
		EntriesToday: query.CountOn(records, s.requestTime(ctx)),
		ByTerritory:  query.AggregateByTerritory(records),
		Recent:       query.RecentActivity(records, s.recentN, displayNames(actor, executives)),
	}
	if countExecutives {
		n := len(executives)
		dash.ActiveExecutives = &n
	}
	return dash, nil
}

func displayNames(actor *profile.Profile, executives []*profile.Profile) query.DisplayFunc {
	names := make(map[id.ActorID]string, len(executives)+1)
	for _, p := range executives {
		names[p.ID] = p.DisplayName()
	}
	if actor != nil {
		names[actor.ID] = actor.DisplayName()
	}
	return func(r *models.Record) string {
		return names[r.SubmittedByID]
	}
}

// Defaults returns the form pre-fill for actor.
func (s *Service) Defaults(actor *profile.Profile) models.Defaults {
	d := models.Defaults{
		IdentityProofTypes: models.IdentityProofTypes,
		Territories:        models.Territories,
	}
	if actor.IsExecutive() && actor.Territory != nil {
		t := *actor.Territory
		d.Territory = &t
	}
	return d
}

// Export writes the records actor may see, narrowed by filter, as XLSX.
func (s *Service) Export(ctx context.Context, actor *profile.Profile, filter models.Filter, w io.Writer) (int, error) {
	records, err := s.ListFor(ctx, actor, filter)
	if err != nil {
		return 0, err
	}
	if err := report.WriteXLSX(w, records); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render census report")
	}
	if s.metrics != nil {
		s.metrics.IncExported()
	}
	s.emitAudit(ctx, actor, audit.EventReportExported, nil)
	return len(records), nil
}

// loadForChange resolves a record for update or delete. Missing and foreign
// records produce the same Forbidden outcome.
func (s *Service) loadForChange(ctx context.Context, actor *profile.Profile, recordID id.RecordID, op models.Operation) (*models.Record, error) {
	record, err := s.find(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, MsgNotFoundOrDenied)
		}
		return nil, storeError(err, "failed to load census record")
	}
	if !access.Authorize(actor, record, op) {
		s.emitDenied(ctx, actor, string(op), recordID.String())
		return nil, dErrors.New(dErrors.CodeForbidden, MsgNotFoundOrDenied)
	}
	return record, nil
}

func (s *Service) scoped(ctx context.Context, actor *profile.Profile) ([]*models.Record, error) {
	spec := access.ScopeFor(actor)
	if spec.Deny {
		return []*models.Record{}, nil
	}
	var records []*models.Record
	err := s.storeCall(ctx, opList, nil, func(ctx context.Context) error {
		var err error
		records, err = s.store.List(ctx, spec)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list census records")
	}
	return records, nil
}

func (s *Service) find(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	var record *models.Record
	err := s.storeCall(ctx, opGet, nil, func(ctx context.Context) error {
		var err error
		record, err = s.store.FindByID(ctx, recordID)
		return err
	})
	return record, err
}

func (s *Service) lookup(ctx context.Context, key models.IdentityKey) ([]id.RecordID, error) {
	var ids []id.RecordID
	err := s.storeCall(ctx, opLookup, nil, func(ctx context.Context) error {
		var err error
		ids, err = s.store.FindByIdentity(ctx, key)
		return err
	}, tracer.String("identity_hash", tracer.HashIdentity(key.Number)))
	return ids, err
}

// storeCall wraps a store round trip in a span and a latency observation.
func (s *Service) storeCall(ctx context.Context, op string, record *models.Record, fn func(context.Context) error, attrs ...tracer.Attribute) (err error) {
	if record != nil {
		attrs = append(attrs,
			tracer.String("record_id", record.ID.String()),
			tracer.String("territory", string(record.Territory)),
		)
	}
	ctx, span := s.tracer.Start(ctx, "census.store."+op, attrs...)
	defer func() { span.End(err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveStore(op, time.Now())
	}
	return fn(ctx)
}

// translateWrite maps store write failures onto engine outcomes. A unique
// constraint hit means a concurrent submission won the identity pair.
func (s *Service) translateWrite(err error, onUpdate bool, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return duplicate.Conflict(onUpdate)
	case onUpdate && errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeForbidden, MsgNotFoundOrDenied)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeInternal, "record id collision")
	default:
		return storeError(err, msg)
	}
}

func storeError(err error, msg string) error {
	return dErrors.WrapInfra(err, msg)
}

func (s *Service) requestTime(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return requestcontext.Now(ctx).UTC()
}

func (s *Service) reject(op, reason string) {
	if s.metrics != nil {
		s.metrics.IncRejected(op, reason)
	}
}

func (s *Service) rejectErr(op string, err error) {
	switch {
	case dErrors.HasCode(err, dErrors.CodeValidation):
		s.reject(op, metrics.ReasonValidation)
	case dErrors.HasCode(err, dErrors.CodeConflict):
		s.reject(op, metrics.ReasonConflict)
	case dErrors.HasCode(err, dErrors.CodeForbidden):
		s.reject(op, metrics.ReasonForbidden)
	default:
		s.reject(op, metrics.ReasonStore)
	}
}

func (s *Service) emitAudit(ctx context.Context, actor *profile.Profile, event audit.AuditEvent, record *models.Record) {
	if s.auditor == nil {
		return
	}
	e := audit.Event{
		Action:    string(event),
		RequestID: requestcontext.RequestID(ctx),
	}
	if actor != nil {
		e.ActorID = actor.ID.String()
		e.ActorRole = string(actor.Role)
	}
	if record != nil {
		e.Subject = record.ID.String()
		e.Territory = string(record.Territory)
	}
	if err := s.auditor.Emit(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", e.Action,
		)
	}
}

func (s *Service) emitDenied(ctx context.Context, actor *profile.Profile, op, subject string) {
	if s.auditor == nil {
		return
	}
	e := audit.Event{
		Action:    string(audit.EventRecordDenied),
		Subject:   subject,
		Reason:    op,
		RequestID: requestcontext.RequestID(ctx),
	}
	if actor != nil {
		e.ActorID = actor.ID.String()
		e.ActorRole = string(actor.Role)
	}
	if err := s.auditor.Emit(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", e.Action,
		)
	}
}
