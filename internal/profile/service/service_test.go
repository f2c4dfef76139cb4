package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"censusdesk/internal/audit"
	census "censusdesk/internal/census/models"
	"censusdesk/internal/profile/models"
	"censusdesk/internal/profile/service/mocks"
	"censusdesk/internal/profile/store"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/sentinel"
	"censusdesk/pkg/testutil"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockStore  *mocks.MockStore
	mockCache  *mocks.MockCache
	service    *Service
	auditStore *audit.InMemoryStore
	admin      *models.Profile
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockCache = mocks.NewMockCache(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	s.service = NewService(
		s.mockStore,
		audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithCache(s.mockCache),
		WithClock(func() time.Time { return fixedNow }),
	)
	s.admin = testutil.NewAdminBuilder().WithID(testutil.TestIDs.AdminID).Build()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestResolve() {
	ctx := context.Background()
	exec := testutil.NewExecutiveBuilder().Build()

	s.Run("cache hit skips the store", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), exec.ID).Return(exec, nil)

		got, err := s.service.Resolve(ctx, exec.ID)
		s.Require().NoError(err)
		s.Equal(exec, got)
	})

	s.Run("cache miss loads and fills the cache", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), exec.ID).Return(nil, sentinel.ErrCacheMiss)
		s.mockStore.EXPECT().FindByID(gomock.Any(), exec.ID).Return(exec, nil)
		s.mockCache.EXPECT().Set(gomock.Any(), exec).Return(nil)

		got, err := s.service.Resolve(ctx, exec.ID)
		s.Require().NoError(err)
		s.Equal(exec.ID, got.ID)
	})

	s.Run("cache failures fall through to the store", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), exec.ID).Return(nil, errors.New("redis down"))
		s.mockStore.EXPECT().FindByID(gomock.Any(), exec.ID).Return(exec, nil)
		s.mockCache.EXPECT().Set(gomock.Any(), exec).Return(errors.New("redis down"))

		_, err := s.service.Resolve(ctx, exec.ID)
		s.NoError(err)
	})

	s.Run("unknown identity is unauthorized", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), exec.ID).Return(nil, sentinel.ErrCacheMiss)
		s.mockStore.EXPECT().FindByID(gomock.Any(), exec.ID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Resolve(ctx, exec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("store failure is internal", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), exec.ID).Return(nil, sentinel.ErrCacheMiss)
		s.mockStore.EXPECT().FindByID(gomock.Any(), exec.ID).Return(nil, errors.New("db down"))

		_, err := s.service.Resolve(ctx, exec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("nil actor is unauthorized", func() {
		_, err := s.service.Resolve(ctx, id.ActorID{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestRegisterExecutive() {
	ctx := context.Background()
	req := func() *models.RegisterExecutiveRequest {
		return &models.RegisterExecutiveRequest{
			Name:      "Priya Sharma",
			Email:     " Priya@Example.com ",
			Territory: string(census.TerritorySouth),
		}
	}

	s.Run("admin registers an executive", func() {
		s.auditStore.Clear()
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Profile) error {
				s.Equal("priya@example.com", p.Email)
				s.Equal(models.RoleExecutive, p.Role)
				s.Equal(census.TerritorySouth, *p.Territory)
				s.Equal(fixedNow, p.CreatedAt)
				s.False(p.ID.IsNil())
				return nil
			})

		p, err := s.service.RegisterExecutive(ctx, s.admin, req())
		s.Require().NoError(err)

		events, err := s.auditStore.ListByActor(ctx, s.admin.ID.String())
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventExecutiveRegistered), events[0].Action)
		s.Equal(p.ID.String(), events[0].Subject)
	})

	s.Run("provided id is kept", func() {
		r := req()
		r.ID = testutil.TestIDs.ExecutiveB.String()
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		p, err := s.service.RegisterExecutive(ctx, s.admin, r)
		s.Require().NoError(err)
		s.Equal(testutil.TestIDs.ExecutiveB, p.ID)
	})

	s.Run("executives cannot register executives", func() {
		_, err := s.service.RegisterExecutive(ctx, testutil.NewExecutiveBuilder().Build(), req())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid request is rejected before the store", func() {
		r := req()
		r.Territory = "Atlantis"
		_, err := s.service.RegisterExecutive(ctx, s.admin, r)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("taken email is a conflict", func() {
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.RegisterExecutive(ctx, s.admin, req())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.EqualError(err, MsgEmailTaken)
	})
}

func (s *ServiceSuite) TestUpdateProfile() {
	ctx := context.Background()
	south := string(census.TerritorySouth)

	s.Run("executive changes name and territory", func() {
		exec := testutil.NewExecutiveBuilder().Build()
		stored := *exec
		s.mockStore.EXPECT().FindByID(gomock.Any(), exec.ID).Return(&stored, nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockCache.EXPECT().Invalidate(gomock.Any(), exec.ID).Return(nil)

		got, err := s.service.UpdateProfile(ctx, exec, &models.UpdateProfileRequest{Name: "New Name", Territory: &south})
		s.Require().NoError(err)
		s.Equal("New Name", got.Name)
		s.Equal(census.TerritorySouth, *got.Territory)
		s.Equal(fixedNow, got.UpdatedAt)
	})

	s.Run("admin territory is ignored", func() {
		stored := *s.admin
		s.mockStore.EXPECT().FindByID(gomock.Any(), s.admin.ID).Return(&stored, nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockCache.EXPECT().Invalidate(gomock.Any(), s.admin.ID).Return(nil)

		got, err := s.service.UpdateProfile(ctx, s.admin, &models.UpdateProfileRequest{Name: "Head Office", Territory: &south})
		s.Require().NoError(err)
		s.Nil(got.Territory)
	})

	s.Run("short name fails validation", func() {
		_, err := s.service.UpdateProfile(ctx, s.admin, &models.UpdateProfileRequest{Name: "A"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestListExecutives() {
	ctx := context.Background()

	s.Run("admin only", func() {
		_, err := s.service.ListExecutives(ctx, testutil.NewExecutiveBuilder().Build())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().ListByRole(gomock.Any(), models.RoleExecutive).Return(nil, errors.New("db down"))
		_, err := s.service.ListExecutives(ctx, s.admin)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// Exercises the service against the real in-memory store end to end.
func TestServiceWithInMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemory()
	svc := NewService(st, nil, nil)

	admin, err := svc.RegisterAdmin(ctx, testutil.TestIDs.AdminID, "Root@Example.com", "Root")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := svc.RegisterExecutive(ctx, admin, &models.RegisterExecutiveRequest{
			Name: "Exec", Email: email, Territory: string(census.TerritoryEast),
		})
		require.NoError(t, err)
	}
	execs, err := svc.ListExecutives(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, execs, 2)

	_, err = svc.RegisterAdmin(ctx, testutil.TestIDs.AdminID, "other@example.com", "Other")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = svc.RegisterExecutive(ctx, admin, &models.RegisterExecutiveRequest{
		Name: "Exec", Email: "A@example.com", Territory: string(census.TerritoryEast),
	})
	assert.EqualError(t, err, MsgEmailTaken)
}
