package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	censusmodels "censusdesk/internal/census/models"
	profilemodels "censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	AdminID    id.ActorID
	ExecutiveA id.ActorID
	ExecutiveB id.ActorID
	RecordID1  id.RecordID
	RecordID2  id.RecordID
}{
	AdminID:    id.ActorID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	ExecutiveA: id.ActorID(uuid.MustParse("eeee0000-0000-0000-0000-00000000000a")),
	ExecutiveB: id.ActorID(uuid.MustParse("eeee0000-0000-0000-0000-00000000000b")),
	RecordID1:  id.RecordID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	RecordID2:  id.RecordID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
}

var aadhaarSeq atomic.Int64

// NextAadhaar returns a well-formed Aadhaar number not handed out before in this process.
func NextAadhaar() string {
	return fmt.Sprintf("%012d", 100000000000+aadhaarSeq.Add(1))
}

// RecordBuilder provides a fluent interface for building census records.
type RecordBuilder struct {
	record *censusmodels.Record
}

// NewRecordBuilder creates a RecordBuilder with a valid record submitted by ExecutiveA.
// Every builder gets a distinct Aadhaar number.
func NewRecordBuilder() *RecordBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &RecordBuilder{
		record: &censusmodels.Record{
			ID:                         id.NewRecordID(),
			FamilyHeadName:             "Ramesh Kumar",
			NumberOfDependents:         4,
			NumberOfEducatedMembers:    2,
			NumberOfNonEducatedMembers: 1,
			IdentityProofType:          censusmodels.ProofAadhaarCard,
			IdentityNumber:             NextAadhaar(),
			Territory:                  censusmodels.TerritoryNorth,
			SubmittedByID:              TestIDs.ExecutiveA,
			SubmittedByContact:         "exec.a@example.com",
			SubmittedAt:                now,
			LastModifiedAt:             now,
		},
	}
}

func (b *RecordBuilder) WithID(recordID id.RecordID) *RecordBuilder {
	b.record.ID = recordID
	return b
}

func (b *RecordBuilder) WithFamilyHead(name string) *RecordBuilder {
	b.record.FamilyHeadName = name
	return b
}

func (b *RecordBuilder) WithIdentity(proofType censusmodels.IdentityProofType, number string) *RecordBuilder {
	b.record.IdentityProofType = proofType
	b.record.IdentityNumber = number
	return b
}

func (b *RecordBuilder) WithTerritory(territory censusmodels.Territory) *RecordBuilder {
	b.record.Territory = territory
	return b
}

func (b *RecordBuilder) SubmittedBy(actorID id.ActorID, contact string) *RecordBuilder {
	b.record.SubmittedByID = actorID
	b.record.SubmittedByContact = contact
	return b
}

func (b *RecordBuilder) SubmittedAt(t time.Time) *RecordBuilder {
	b.record.SubmittedAt = t
	b.record.LastModifiedAt = t
	return b
}

func (b *RecordBuilder) Build() *censusmodels.Record {
	return b.record
}

// RawInputFor returns the create/update payload that reproduces r's household fields.
func RawInputFor(r *censusmodels.Record) censusmodels.RawInput {
	return censusmodels.RawInput{
		FamilyHeadName:             r.FamilyHeadName,
		NumberOfDependents:         censusmodels.CountOf(r.NumberOfDependents),
		NumberOfEducatedMembers:    censusmodels.CountOf(r.NumberOfEducatedMembers),
		NumberOfNonEducatedMembers: censusmodels.CountOf(r.NumberOfNonEducatedMembers),
		IdentityProofType:          string(r.IdentityProofType),
		IdentityNumber:             r.IdentityNumber,
		Territory:                  string(r.Territory),
	}
}

// ProfileBuilder provides a fluent interface for building actor profiles.
type ProfileBuilder struct {
	profile *profilemodels.Profile
}

// NewExecutiveBuilder creates an executive profile assigned to North Zone.
func NewExecutiveBuilder() *ProfileBuilder {
	territory := censusmodels.TerritoryNorth
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &ProfileBuilder{
		profile: &profilemodels.Profile{
			ID:        id.NewActorID(),
			Email:     "exec-" + uuid.NewString()[:8] + "@example.com",
			Name:      "Field Executive",
			Role:      profilemodels.RoleExecutive,
			Territory: &territory,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// NewAdminBuilder creates an admin profile without a territory.
func NewAdminBuilder() *ProfileBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &ProfileBuilder{
		profile: &profilemodels.Profile{
			ID:        id.NewActorID(),
			Email:     "admin-" + uuid.NewString()[:8] + "@example.com",
			Name:      "Census Admin",
			Role:      profilemodels.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *ProfileBuilder) WithID(actorID id.ActorID) *ProfileBuilder {
	b.profile.ID = actorID
	return b
}

func (b *ProfileBuilder) WithEmail(email string) *ProfileBuilder {
	b.profile.Email = email
	return b
}

func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.profile.Name = name
	return b
}

func (b *ProfileBuilder) WithTerritory(territory censusmodels.Territory) *ProfileBuilder {
	b.profile.Territory = &territory
	return b
}

func (b *ProfileBuilder) Build() *profilemodels.Profile {
	return b.profile
}
