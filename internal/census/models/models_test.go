package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "censusdesk/pkg/domain"
)

func TestCountCoercion(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"number", `3`, 3, false},
		{"numeric text", `"4"`, 4, false},
		{"padded text", `" 5 "`, 5, false},
		{"integral float", `2.0`, 2, false},
		{"negative stays negative", `-1`, -1, false},
		{"blank text is zero", `""`, 0, false},
		{"null is zero", `null`, 0, false},
		{"fraction", `2.5`, 0, true},
		{"words", `"two"`, 0, true},
		{"boolean", `true`, 0, true},
		{"integer beyond int32", `9223372036854775807`, 0, true},
		{"integer text beyond int32", `"10000000000"`, 0, true},
		{"exponent beyond int32", `1e10`, 0, true},
		{"int32 max", `2147483647`, 2147483647, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Count
			require.NoError(t, json.Unmarshal([]byte(tc.body), &c))
			got, err := c.Int()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRawInputDecodesMixedCounts(t *testing.T) {
	var in RawInput
	body := `{"family_head_name":"Ramesh Kumar","number_of_dependents":"3","number_of_educated_members":2,"number_of_non_educated_members":null,"identity_proof_type":"Voter ID","identity_number":"ABC1234567","territory":"North Zone"}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	deps, err := in.NumberOfDependents.Int()
	require.NoError(t, err)
	assert.Equal(t, 3, deps)
	edu, err := in.NumberOfEducatedMembers.Int()
	require.NoError(t, err)
	assert.Equal(t, 2, edu)

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"number_of_dependents":3`)
}

func TestRecordApplyKeepsSubmissionFields(t *testing.T) {
	submitted := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	owner := id.NewActorID()
	r := &Record{
		ID:                 id.NewRecordID(),
		SubmittedByID:      owner,
		SubmittedByContact: "exec@census.test",
		SubmittedAt:        submitted,
		LastModifiedAt:     submitted,
	}
	later := submitted.Add(time.Hour)
	r.Apply(&ValidatedRecord{
		FamilyHeadName:     "Sita Devi",
		NumberOfDependents: 4,
		IdentityProofType:  ProofPassport,
		IdentityNumber:     "P1234567",
		Territory:          TerritoryWest,
	}, later)

	assert.Equal(t, "Sita Devi", r.FamilyHeadName)
	assert.Equal(t, submitted, r.SubmittedAt)
	assert.Equal(t, later, r.LastModifiedAt)
	assert.Equal(t, owner, r.SubmittedByID)
	assert.True(t, r.OwnedBy(owner))
	assert.False(t, r.OwnedBy(id.ActorID{}))
}

func TestEnums(t *testing.T) {
	assert.True(t, ProofDrivingLicense.IsValid())
	assert.False(t, IdentityProofType("Ration Card").IsValid())
	assert.True(t, TerritoryNorthEast.IsValid())
	assert.False(t, Territory("north zone").IsValid())
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{Search: "ram"}.IsEmpty())
}
