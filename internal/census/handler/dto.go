package handler

import (
	"net/url"
	"strings"
	"time"

	"censusdesk/internal/audit"
	"censusdesk/internal/census/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/validation"
)

const dateLayout = "2006-01-02"

// RecordResponse is the JSON view of a census record.
type RecordResponse struct {
	ID                         string    `json:"id"`
	FamilyHeadName             string    `json:"family_head_name"`
	NumberOfDependents         int       `json:"number_of_dependents"`
	NumberOfEducatedMembers    int       `json:"number_of_educated_members"`
	NumberOfNonEducatedMembers int       `json:"number_of_non_educated_members"`
	IdentityProofType          string    `json:"identity_proof_type"`
	IdentityNumber             string    `json:"identity_number"`
	Territory                  string    `json:"territory"`
	SubmittedBy                string    `json:"submitted_by"`
	SubmittedByContact         string    `json:"submitted_by_contact"`
	SubmittedAt                time.Time `json:"submitted_at"`
	LastModifiedAt             time.Time `json:"last_modified_at"`
}

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}

type ActivityResponse struct {
	Actor          string    `json:"actor"`
	FamilyHeadName string    `json:"family_head_name"`
	Territory      string    `json:"territory"`
	Timestamp      time.Time `json:"timestamp"`
}

type DashboardResponse struct {
	TotalRecords     int                `json:"total_records"`
	EntriesToday     int                `json:"entries_today"`
	ActiveExecutives *int               `json:"active_executives,omitempty"`
	ByTerritory      map[string]int     `json:"by_territory"`
	Recent           []ActivityResponse `json:"recent"`
}

// HistoryEntry is one audit event about a record. Request IDs stay internal.
type HistoryEntry struct {
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	RecordID string         `json:"record_id"`
	Events   []HistoryEntry `json:"events"`
}

type DefaultsResponse struct {
	Territory          string   `json:"territory,omitempty"`
	IdentityProofTypes []string `json:"identity_proof_types"`
	Territories        []string `json:"territories"`
}

func toRecordResponse(r *models.Record) RecordResponse {
	return RecordResponse{
		ID:                         r.ID.String(),
		FamilyHeadName:             r.FamilyHeadName,
		NumberOfDependents:         r.NumberOfDependents,
		NumberOfEducatedMembers:    r.NumberOfEducatedMembers,
		NumberOfNonEducatedMembers: r.NumberOfNonEducatedMembers,
		IdentityProofType:          string(r.IdentityProofType),
		IdentityNumber:             r.IdentityNumber,
		Territory:                  string(r.Territory),
		SubmittedBy:                r.SubmittedByID.String(),
		SubmittedByContact:         r.SubmittedByContact,
		SubmittedAt:                r.SubmittedAt,
		LastModifiedAt:             r.LastModifiedAt,
	}
}

func toHistoryResponse(recordID id.RecordID, events []audit.Event) HistoryResponse {
	resp := HistoryResponse{RecordID: recordID.String(), Events: make([]HistoryEntry, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, HistoryEntry{
			Action:    e.Action,
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			Reason:    e.Reason,
			Timestamp: e.Timestamp,
		})
	}
	return resp
}

func toListResponse(records []*models.Record) RecordListResponse {
	resp := RecordListResponse{Records: make([]RecordResponse, 0, len(records)), Total: len(records)}
	for _, r := range records {
		resp.Records = append(resp.Records, toRecordResponse(r))
	}
	return resp
}

func toDashboardResponse(d *models.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		TotalRecords:     d.TotalRecords,
		EntriesToday:     d.EntriesToday,
		ActiveExecutives: d.ActiveExecutives,
		ByTerritory:      make(map[string]int, len(d.ByTerritory)),
		Recent:           make([]ActivityResponse, 0, len(d.Recent)),
	}
	for t, n := range d.ByTerritory {
		resp.ByTerritory[string(t)] = n
	}
	for _, a := range d.Recent {
		resp.Recent = append(resp.Recent, ActivityResponse{
			Actor:          a.ActorDisplay,
			FamilyHeadName: a.FamilyHeadName,
			Territory:      string(a.Territory),
			Timestamp:      a.Timestamp,
		})
	}
	return resp
}

func toDefaultsResponse(d models.Defaults) DefaultsResponse {
	resp := DefaultsResponse{
		IdentityProofTypes: make([]string, 0, len(d.IdentityProofTypes)),
		Territories:        make([]string, 0, len(d.Territories)),
	}
	if d.Territory != nil {
		resp.Territory = string(*d.Territory)
	}
	for _, t := range d.IdentityProofTypes {
		resp.IdentityProofTypes = append(resp.IdentityProofTypes, string(t))
	}
	for _, t := range d.Territories {
		resp.Territories = append(resp.Territories, string(t))
	}
	return resp
}

// ParseFilter reads the list and export query parameters. Dates are calendar
// days in UTC; "to" covers its whole day.
func ParseFilter(q url.Values) (models.Filter, error) {
	var f models.Filter
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "from must be a date in YYYY-MM-DD format")
		}
		f.From = &from
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "to must be a date in YYYY-MM-DD format")
		}
		f.To = &to
	}
	if v := strings.TrimSpace(q.Get("submitted_by")); v != "" {
		actorID, err := id.ParseActorID(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "submitted_by must be a user id")
		}
		f.SubmittedBy = &actorID
	}
	if v := strings.TrimSpace(q.Get("territory")); v != "" {
		t := models.Territory(v)
		if !t.IsValid() {
			return f, dErrors.New(dErrors.CodeBadRequest, "Invalid territory selected.")
		}
		f.Territory = &t
	}
	if v := strings.TrimSpace(q.Get("identity_proof_type")); v != "" {
		p := models.IdentityProofType(v)
		if !p.IsValid() {
			return f, dErrors.New(dErrors.CodeBadRequest, "Invalid ID proof type selected.")
		}
		f.IdentityProofType = &p
	}
	f.Search = strings.TrimSpace(q.Get("q"))
	if err := validation.CheckStringLength("q", f.Search, validation.MaxSearchLength); err != nil {
		return f, err
	}
	return f, nil
}
