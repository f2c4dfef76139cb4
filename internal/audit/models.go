package audit

import "time"

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out. Identity numbers are
// never carried; RecordID is enough to correlate.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role,omitempty"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Territory string    `json:"territory,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type AuditEvent string

const (
	EventRecordCreated       AuditEvent = "census_record_created"
	EventRecordUpdated       AuditEvent = "census_record_updated"
	EventRecordDeleted       AuditEvent = "census_record_deleted"
	EventRecordDenied        AuditEvent = "census_record_access_denied"
	EventReportExported      AuditEvent = "census_report_exported"
	EventExecutiveRegistered AuditEvent = "executive_registered"
	EventProfileUpdated      AuditEvent = "profile_updated"
)
