// Package domain holds the typed identifiers shared by every bounded context.
package domain

import (
	"github.com/google/uuid"

	dErrors "censusdesk/pkg/domain-errors"
)

// ActorID is the identity provider subject of a profile. RecordID names a
// census record. Both are UUIDs; keeping them apart stops a record ID from
// being checked as an owner.
type (
	ActorID  uuid.UUID
	RecordID uuid.UUID
)

type uuidBacked interface {
	~[16]byte
}

func ParseActorID(s string) (ActorID, error)   { return parse[ActorID](s, "actor ID") }
func ParseRecordID(s string) (RecordID, error) { return parse[RecordID](s, "record ID") }

func NewRecordID() RecordID { return RecordID(uuid.New()) }
func NewActorID() ActorID   { return ActorID(uuid.New()) }

func (id ActorID) String() string  { return uuid.UUID(id).String() }
func (id RecordID) String() string { return uuid.UUID(id).String() }

func (id ActorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text forms keep IDs readable in JSON, e.g. cached profiles.
func (id ActorID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id RecordID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ActorID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseActorID(string(b))
	return err
}

func (id *RecordID) UnmarshalText(b []byte) (err error) {
	*id, err = ParseRecordID(string(b))
	return err
}

// parse accepts the nil UUID. Whether a nil ID means anything is up to the
// caller; stores answer "not found" for it.
func parse[T uuidBacked](s, label string) (T, error) {
	var zero T
	if s == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return T(u), nil
}
