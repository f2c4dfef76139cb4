package seeder

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	census "censusdesk/internal/census/models"
	censusservice "censusdesk/internal/census/service"
	censusstore "censusdesk/internal/census/store"
	profileservice "censusdesk/internal/profile/service"
	profilestore "censusdesk/internal/profile/store"
	"censusdesk/pkg/testutil"
)

func newSeeder(t *testing.T) (*Seeder, *profileservice.Service, *censusservice.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	profiles := profileservice.NewService(profilestore.NewInMemory(), nil, logger)
	records := censusservice.NewService(censusstore.NewInMemory(), nil, logger,
		censusservice.WithExecutiveDirectory(profiles),
	)
	return New(profiles, records, logger), profiles, records
}

func TestSeedAll(t *testing.T) {
	ctx := context.Background()
	s, profiles, records := newSeeder(t)

	sum, err := s.SeedAll(ctx, testutil.TestIDs.AdminID, "admin@censusdesk.example")
	require.NoError(t, err)
	assert.Equal(t, Summary{Executives: len(demoExecutives), Records: len(demoHouseholds)}, sum)

	admin, err := profiles.Resolve(ctx, testutil.TestIDs.AdminID)
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())

	all, err := records.ListFor(ctx, admin, census.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, len(demoHouseholds))

	dash, err := records.Dashboard(ctx, admin)
	require.NoError(t, err)
	require.NotNil(t, dash.ActiveExecutives)
	assert.Equal(t, len(demoExecutives), *dash.ActiveExecutives)
	assert.Equal(t, "Bikram Roy", dash.Recent[0].FamilyHeadName)
}

func TestSeedAllIsRepeatable(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSeeder(t)

	_, err := s.SeedAll(ctx, testutil.TestIDs.AdminID, "admin@censusdesk.example")
	require.NoError(t, err)

	sum, err := s.SeedAll(ctx, testutil.TestIDs.AdminID, "admin@censusdesk.example")
	require.NoError(t, err)
	assert.Zero(t, sum.Executives)
	assert.Zero(t, sum.Records)
	assert.Equal(t, len(demoExecutives)+len(demoHouseholds), sum.Skipped)
}

func TestEnsureAdminRefusesExecutiveID(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSeeder(t)
	_, err := s.SeedAll(ctx, testutil.TestIDs.AdminID, "admin@censusdesk.example")
	require.NoError(t, err)

	_, err = s.EnsureAdmin(ctx, demoExecutiveID(0), "other@censusdesk.example")
	require.Error(t, err)
}
