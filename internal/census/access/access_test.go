package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"censusdesk/internal/census/models"
	profile "censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
)

func TestScopeFor(t *testing.T) {
	admin := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleAdmin}
	exec := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleExecutive}

	t.Run("admin sees everything", func(t *testing.T) {
		spec := ScopeFor(admin)
		assert.False(t, spec.Deny)
		assert.Nil(t, spec.SubmittedBy)
	})

	t.Run("executive sees own submissions", func(t *testing.T) {
		spec := ScopeFor(exec)
		assert.False(t, spec.Deny)
		if assert.NotNil(t, spec.SubmittedBy) {
			assert.Equal(t, exec.ID, *spec.SubmittedBy)
		}
	})

	t.Run("unknown roles and missing actors see nothing", func(t *testing.T) {
		assert.True(t, ScopeFor(&profile.Profile{ID: id.NewActorID(), Role: "auditor"}).Deny)
		assert.True(t, ScopeFor(nil).Deny)
		assert.True(t, ScopeFor(&profile.Profile{Role: profile.RoleExecutive}).Deny)
	})
}

func TestAuthorize(t *testing.T) {
	admin := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleAdmin}
	owner := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleExecutive}
	stranger := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleExecutive}
	record := &models.Record{ID: id.NewRecordID(), SubmittedByID: owner.ID}

	cases := []struct {
		name   string
		actor  *profile.Profile
		op     models.Operation
		expect bool
	}{
		{"admin reads", admin, models.OpRead, true},
		{"admin cannot update", admin, models.OpUpdate, false},
		{"admin cannot delete", admin, models.OpDelete, false},
		{"owner reads", owner, models.OpRead, true},
		{"owner updates", owner, models.OpUpdate, true},
		{"owner deletes", owner, models.OpDelete, true},
		{"other executive cannot read", stranger, models.OpRead, false},
		{"other executive cannot update", stranger, models.OpUpdate, false},
		{"other executive cannot delete", stranger, models.OpDelete, false},
		{"unknown operation", owner, models.Operation("export"), false},
		{"unknown role", &profile.Profile{ID: owner.ID, Role: "auditor"}, models.OpRead, false},
		{"no actor", nil, models.OpRead, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Authorize(tc.actor, record, tc.op))
		})
	}

	assert.False(t, Authorize(owner, nil, models.OpRead))
}

func TestScopeAndAuthorizeAgree(t *testing.T) {
	owner := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleExecutive}
	stranger := &profile.Profile{ID: id.NewActorID(), Role: profile.RoleExecutive}
	record := &models.Record{ID: id.NewRecordID(), SubmittedByID: owner.ID}

	for _, actor := range []*profile.Profile{owner, stranger} {
		assert.Equal(t, Authorize(actor, record, models.OpRead), Visible(ScopeFor(actor), record))
	}
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(&profile.Profile{ID: id.NewActorID(), Role: profile.RoleExecutive}))
	assert.False(t, CanCreate(&profile.Profile{ID: id.NewActorID(), Role: profile.RoleAdmin}))
	assert.False(t, CanCreate(nil))
}
