package models

import (
	"time"

	id "censusdesk/pkg/domain"
)

// Record is one household census submission.
type Record struct {
	ID                         id.RecordID
	FamilyHeadName             string
	NumberOfDependents         int
	NumberOfEducatedMembers    int
	NumberOfNonEducatedMembers int
	IdentityProofType          IdentityProofType
	IdentityNumber             string
	Territory                  Territory
	SubmittedByID              id.ActorID
	SubmittedByContact         string
	SubmittedAt                time.Time
	LastModifiedAt             time.Time
}

// Key returns the identity pair that must be unique across all records.
func (r *Record) Key() IdentityKey {
	return IdentityKey{ProofType: r.IdentityProofType, Number: r.IdentityNumber}
}

// OwnedBy reports whether actorID submitted the record.
func (r *Record) OwnedBy(actorID id.ActorID) bool {
	return !actorID.IsNil() && r.SubmittedByID == actorID
}

// Apply copies validated household fields onto the record and stamps the
// modification time. Submission fields are never touched.
func (r *Record) Apply(v *ValidatedRecord, now time.Time) {
	r.FamilyHeadName = v.FamilyHeadName
	r.NumberOfDependents = v.NumberOfDependents
	r.NumberOfEducatedMembers = v.NumberOfEducatedMembers
	r.NumberOfNonEducatedMembers = v.NumberOfNonEducatedMembers
	r.IdentityProofType = v.IdentityProofType
	r.IdentityNumber = v.IdentityNumber
	r.Territory = v.Territory
	r.LastModifiedAt = now
}

// IdentityKey is the (proof type, number) duplicate pair.
type IdentityKey struct {
	ProofType IdentityProofType
	Number    string
}

// LockKey is the key writes on this identity pair serialize on.
func (k IdentityKey) LockKey() string {
	return string(k.ProofType) + "|" + k.Number
}

// QuerySpec is the visibility scope an actor's listings run under.
// Results are always ordered by SubmittedAt descending.
type QuerySpec struct {
	// Deny yields an empty result without touching the store.
	Deny bool
	// SubmittedBy restricts results to one submitter; nil means every record.
	SubmittedBy *id.ActorID
}

// Filter is the set of optional, AND-combined list predicates.
type Filter struct {
	From              *time.Time
	To                *time.Time
	SubmittedBy       *id.ActorID
	Territory         *Territory
	IdentityProofType *IdentityProofType
	Search            string
}

// IsEmpty reports whether no predicate is set.
func (f Filter) IsEmpty() bool {
	return f.From == nil && f.To == nil && f.SubmittedBy == nil &&
		f.Territory == nil && f.IdentityProofType == nil && f.Search == ""
}

// ActivitySummary is one line of the recent activity feed.
type ActivitySummary struct {
	ActorDisplay   string
	FamilyHeadName string
	Territory      Territory
	Timestamp      time.Time
}

// Dashboard is the aggregate view shown on landing.
type Dashboard struct {
	TotalRecords int
	EntriesToday int
	// ActiveExecutives is only populated for admins.
	ActiveExecutives *int
	ByTerritory      map[Territory]int
	Recent           []ActivitySummary
}

// Defaults pre-fills the record form for an actor.
type Defaults struct {
	// Territory is the executive's assigned zone, nil for admins.
	Territory          *Territory
	IdentityProofTypes []IdentityProofType
	Territories        []Territory
}
