// Package access is the single ownership and visibility rule for census
// records. List scoping and single-record checks both go through it.
package access

import (
	"censusdesk/internal/census/models"
	profile "censusdesk/internal/profile/models"
)

// ScopeFor returns the listing scope of actor. Admins see every record;
// executives see only what they submitted. Any other actor sees nothing.
func ScopeFor(actor *profile.Profile) models.QuerySpec {
	switch {
	case actor.IsAdmin():
		return models.QuerySpec{}
	case actor.IsExecutive() && !actor.ID.IsNil():
		submitter := actor.ID
		return models.QuerySpec{SubmittedBy: &submitter}
	default:
		return models.QuerySpec{Deny: true}
	}
}

// Authorize reports whether actor may perform op on record.
// Admins are read-only over records. Executives act on their own records only.
func Authorize(actor *profile.Profile, record *models.Record, op models.Operation) bool {
	if record == nil {
		return false
	}
	switch {
	case actor.IsAdmin():
		return op == models.OpRead
	case actor.IsExecutive():
		switch op {
		case models.OpRead, models.OpUpdate, models.OpDelete:
			return record.OwnedBy(actor.ID)
		}
	}
	return false
}

// CanCreate reports whether actor may submit new records.
func CanCreate(actor *profile.Profile) bool {
	return actor.IsExecutive() && !actor.ID.IsNil()
}

// Visible reports whether record falls inside spec.
func Visible(spec models.QuerySpec, record *models.Record) bool {
	if spec.Deny || record == nil {
		return false
	}
	return spec.SubmittedBy == nil || record.SubmittedByID == *spec.SubmittedBy
}
