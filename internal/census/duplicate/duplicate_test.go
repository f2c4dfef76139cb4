package duplicate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"censusdesk/internal/census/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
)

var voterKey = models.IdentityKey{ProofType: models.ProofVoterID, Number: "ABC1234567"}

func lookupReturning(ids ...id.RecordID) Lookup {
	return func(context.Context, models.IdentityKey) ([]id.RecordID, error) {
		return ids, nil
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	existing := id.NewRecordID()
	other := id.NewRecordID()

	t.Run("no match is unique", func(t *testing.T) {
		require.NoError(t, Check(ctx, voterKey, nil, lookupReturning()))
	})

	t.Run("any match conflicts on create", func(t *testing.T) {
		err := Check(ctx, voterKey, nil, lookupReturning(existing))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Equal(t, MsgDuplicateOnCreate, err.Error())
	})

	t.Run("record may match itself on update", func(t *testing.T) {
		require.NoError(t, Check(ctx, voterKey, &existing, lookupReturning(existing)))
	})

	t.Run("match on another record conflicts on update", func(t *testing.T) {
		err := Check(ctx, voterKey, &existing, lookupReturning(existing, other))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Equal(t, MsgDuplicateOnUpdate, err.Error())
	})

	t.Run("lookup receives the candidate key", func(t *testing.T) {
		var seen models.IdentityKey
		_ = Check(ctx, voterKey, nil, func(_ context.Context, key models.IdentityKey) ([]id.RecordID, error) {
			seen = key
			return nil, nil
		})
		assert.Equal(t, voterKey, seen)
	})
}

func TestCheckLookupFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("store failure is internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Check(ctx, voterKey, nil, func(context.Context, models.IdentityKey) ([]id.RecordID, error) {
			return nil, cause
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("deadline surfaces as timeout", func(t *testing.T) {
		err := Check(ctx, voterKey, nil, func(context.Context, models.IdentityKey) ([]id.RecordID, error) {
			return nil, fmt.Errorf("query: %w", context.DeadlineExceeded)
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}
