package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	census "censusdesk/internal/census/models"
	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/requestcontext"
)

// Profiles registers and resolves actors.
type Profiles interface {
	Resolve(ctx context.Context, actorID id.ActorID) (*models.Profile, error)
	RegisterAdmin(ctx context.Context, actorID id.ActorID, email, name string) (*models.Profile, error)
	RegisterExecutive(ctx context.Context, actor *models.Profile, req *models.RegisterExecutiveRequest) (*models.Profile, error)
}

// Records creates census records on behalf of an executive.
type Records interface {
	Create(ctx context.Context, actor *models.Profile, raw census.RawInput) (*census.Record, error)
}

// Summary reports what a run wrote. Entries that already existed are skipped.
type Summary struct {
	Executives int
	Records    int
	Skipped    int
}

// Seeder populates the stores with demo data through the services, so every
// record passes the same validation and duplicate rules as live traffic.
type Seeder struct {
	profiles Profiles
	records  Records
	logger   *slog.Logger
	now      func() time.Time
}

func New(profiles Profiles, records Records, logger *slog.Logger) *Seeder {
	return &Seeder{
		profiles: profiles,
		records:  records,
		logger:   logger,
		now:      time.Now,
	}
}

// Demo executives have fixed IDs so tokens can be minted for them.
var demoExecutives = []struct {
	id        string
	email     string
	name      string
	territory census.Territory
}{
	{"eeee0000-0000-0000-0000-000000000101", "meera@censusdesk.example", "Meera Nair", census.TerritorySouth},
	{"eeee0000-0000-0000-0000-000000000102", "arjun@censusdesk.example", "Arjun Singh", census.TerritoryNorth},
	{"eeee0000-0000-0000-0000-000000000103", "kavya@censusdesk.example", "Kavya Das", census.TerritoryEast},
}

func demoExecutiveID(i int) id.ActorID {
	return id.ActorID(uuid.MustParse(demoExecutives[i].id))
}

var demoHouseholds = []struct {
	exec       int
	head       string
	dependents int
	educated   int
	nonEd      int
	proof      census.IdentityProofType
	number     string
	territory  census.Territory
	ageOffset  time.Duration
}{
	{0, "Lakshmi Iyer", 3, 2, 1, census.ProofAadhaarCard, "400000000001", census.TerritorySouth, -72 * time.Hour},
	{0, "Ravi Kumar", 4, 3, 1, census.ProofPANCard, "ABCDE1234F", census.TerritorySouth, -30 * time.Hour},
	{0, "Fatima Sheikh", 2, 2, 0, census.ProofVoterID, "KLM1234567", census.TerritoryCentral, -5 * time.Hour},
	{1, "Harpreet Gill", 5, 3, 2, census.ProofDrivingLicense, "PB0220191234567", census.TerritoryNorth, -48 * time.Hour},
	{1, "Suresh Yadav", 1, 1, 0, census.ProofAadhaarCard, "400000000002", census.TerritoryNorth, -2 * time.Hour},
	{2, "Anjali Bose", 3, 1, 2, census.ProofPassport, "P4455667", census.TerritoryEast, -26 * time.Hour},
	{2, "Bikram Roy", 2, 0, 2, census.ProofAadhaarCard, "400000000003", census.TerritoryNorthEast, -45 * time.Minute},
}

// SeedAll creates the admin, the demo executives and their records.
func (s *Seeder) SeedAll(ctx context.Context, adminID id.ActorID, adminEmail string) (Summary, error) {
	s.logger.InfoContext(ctx, "seeding demo data...")
	var sum Summary

	admin, err := s.ensureAdmin(ctx, adminID, adminEmail)
	if err != nil {
		return sum, fmt.Errorf("failed to seed admin: %w", err)
	}

	execs, err := s.seedExecutives(ctx, admin, &sum)
	if err != nil {
		return sum, fmt.Errorf("failed to seed executives: %w", err)
	}

	if err := s.seedRecords(ctx, execs, &sum); err != nil {
		return sum, fmt.Errorf("failed to seed records: %w", err)
	}

	s.logger.InfoContext(ctx, "demo data seeded successfully",
		"executives", sum.Executives,
		"records", sum.Records,
		"skipped", sum.Skipped,
	)
	return sum, nil
}

// EnsureAdmin registers the admin unless a profile with that ID already exists.
func (s *Seeder) EnsureAdmin(ctx context.Context, adminID id.ActorID, email string) (*models.Profile, error) {
	return s.ensureAdmin(ctx, adminID, email)
}

func (s *Seeder) ensureAdmin(ctx context.Context, adminID id.ActorID, email string) (*models.Profile, error) {
	if !adminID.IsNil() {
		if existing, err := s.profiles.Resolve(ctx, adminID); err == nil {
			if !existing.IsAdmin() {
				return nil, dErrors.New(dErrors.CodeConflict, "profile exists and is not an admin")
			}
			return existing, nil
		}
	}
	return s.profiles.RegisterAdmin(ctx, adminID, email, "Census Admin")
}

func (s *Seeder) seedExecutives(ctx context.Context, admin *models.Profile, sum *Summary) ([]*models.Profile, error) {
	execs := make([]*models.Profile, 0, len(demoExecutives))
	for i, e := range demoExecutives {
		execID := demoExecutiveID(i)
		if existing, err := s.profiles.Resolve(ctx, execID); err == nil {
			execs = append(execs, existing)
			sum.Skipped++
			continue
		}
		p, err := s.profiles.RegisterExecutive(ctx, admin, &models.RegisterExecutiveRequest{
			ID:        e.id,
			Name:      e.name,
			Email:     e.email,
			Territory: string(e.territory),
		})
		if err != nil {
			return nil, err
		}
		execs = append(execs, p)
		sum.Executives++
	}
	return execs, nil
}

func (s *Seeder) seedRecords(ctx context.Context, execs []*models.Profile, sum *Summary) error {
	now := s.now().UTC()
	for _, h := range demoHouseholds {
		if h.exec >= len(execs) {
			continue
		}
		raw := census.RawInput{
			FamilyHeadName:             h.head,
			NumberOfDependents:         census.CountOf(h.dependents),
			NumberOfEducatedMembers:    census.CountOf(h.educated),
			NumberOfNonEducatedMembers: census.CountOf(h.nonEd),
			IdentityProofType:          string(h.proof),
			IdentityNumber:             h.number,
			Territory:                  string(h.territory),
		}
		at := requestcontext.WithTime(ctx, now.Add(h.ageOffset))
		_, err := s.records.Create(at, execs[h.exec], raw)
		switch {
		case err == nil:
			sum.Records++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			sum.Skipped++
		default:
			return err
		}
	}
	return nil
}
