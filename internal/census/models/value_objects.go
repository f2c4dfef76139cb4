package models

import (
	"github.com/go-playground/validator/v10"

	"censusdesk/pkg/validation"
)

// Struct tags "identityprooftype" and "territory" check enum membership.
func init() {
	_ = validation.Register("identityprooftype", func(fl validator.FieldLevel) bool {
		return IdentityProofType(fl.Field().String()).IsValid()
	})
	_ = validation.Register("territory", func(fl validator.FieldLevel) bool {
		return Territory(fl.Field().String()).IsValid()
	})
}

// IdentityProofType is the government document backing an identity number.
type IdentityProofType string

const (
	ProofAadhaarCard    IdentityProofType = "Aadhaar Card"
	ProofPANCard        IdentityProofType = "PAN Card"
	ProofDrivingLicense IdentityProofType = "Driving License"
	ProofVoterID        IdentityProofType = "Voter ID"
	ProofPassport       IdentityProofType = "Passport"
)

// IdentityProofTypes lists the accepted proof types in display order.
var IdentityProofTypes = []IdentityProofType{
	ProofAadhaarCard,
	ProofPANCard,
	ProofDrivingLicense,
	ProofVoterID,
	ProofPassport,
}

func (t IdentityProofType) IsValid() bool {
	for _, known := range IdentityProofTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t IdentityProofType) String() string { return string(t) }

// Territory is one of the fixed census zones. Executives are assigned one.
type Territory string

const (
	TerritoryNorth     Territory = "North Zone"
	TerritorySouth     Territory = "South Zone"
	TerritoryEast      Territory = "East Zone"
	TerritoryWest      Territory = "West Zone"
	TerritoryCentral   Territory = "Central Zone"
	TerritoryNorthEast Territory = "North-East Zone"
)

// Territories lists the zones in display order.
var Territories = []Territory{
	TerritoryNorth,
	TerritorySouth,
	TerritoryEast,
	TerritoryWest,
	TerritoryCentral,
	TerritoryNorthEast,
}

func (t Territory) IsValid() bool {
	for _, known := range Territories {
		if t == known {
			return true
		}
	}
	return false
}

func (t Territory) String() string { return string(t) }

// Operation is an action an actor attempts on a single record.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)
