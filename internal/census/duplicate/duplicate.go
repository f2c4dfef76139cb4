// Package duplicate enforces that an (identity proof type, identity number)
// pair belongs to at most one census record.
//
// The check is advisory: it is valid at the moment of the lookup only. Stores
// back it with their own uniqueness constraint, which callers translate to the
// same conflict outcome.
package duplicate

import (
	"context"

	"censusdesk/internal/census/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
)

const (
	MsgDuplicateOnCreate = "A census entry with this ID Number and ID Proof Type already exists. Data not saved."
	MsgDuplicateOnUpdate = "Updating this entry would create a duplicate with another existing entry (same ID Number and ID Proof Type). Data not saved."
)

// Lookup returns the ids of every record holding key.
type Lookup func(ctx context.Context, key models.IdentityKey) ([]id.RecordID, error)

// Check returns nil when key is free. excludeID is the record being updated,
// which is allowed to match itself; pass nil on create.
func Check(ctx context.Context, key models.IdentityKey, excludeID *id.RecordID, lookup Lookup) error {
	matches, err := lookup(ctx, key)
	if err != nil {
		return dErrors.WrapInfra(err, "failed to check for duplicate records")
	}
	for _, match := range matches {
		if excludeID != nil && match == *excludeID {
			continue
		}
		return Conflict(excludeID != nil)
	}
	return nil
}

// Conflict builds the duplicate outcome. Stores that reject a write on their
// own unique constraint map to the same error.
func Conflict(onUpdate bool) error {
	if onUpdate {
		return dErrors.New(dErrors.CodeConflict, MsgDuplicateOnUpdate)
	}
	return dErrors.New(dErrors.CodeConflict, MsgDuplicateOnCreate)
}
