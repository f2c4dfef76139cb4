package models

import (
	"strings"
	"time"

	census "censusdesk/internal/census/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/validation"
)

// Role decides what an actor may see and change. It is only ever read from
// the profile store, never from token claims or request bodies.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleExecutive Role = "executive"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleExecutive
}

// Profile is the actor record behind an authenticated identity.
type Profile struct {
	ID    id.ActorID
	Email string
	Name  string
	Role  Role
	// Territory is set for executives and pre-fills their new records.
	Territory *census.Territory
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Profile) IsAdmin() bool     { return p != nil && p.Role == RoleAdmin }
func (p *Profile) IsExecutive() bool { return p != nil && p.Role == RoleExecutive }

// DisplayName is what activity feeds show for the actor.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Email
}

// RegisterExecutiveRequest is an admin's request to add a field executive.
// Credentials are provisioned by the identity provider; ID is the provider's
// subject for the new user and is generated when omitted.
type RegisterExecutiveRequest struct {
	ID        string `json:"id,omitempty" validate:"omitempty,uuid"`
	Name      string `json:"name" validate:"min=2"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Territory string `json:"region" validate:"territory"`
}

func (r *RegisterExecutiveRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Territory = strings.TrimSpace(r.Territory)
}

func (r *RegisterExecutiveRequest) Validate() error {
	return validation.Validate(r)
}

func (r *RegisterExecutiveRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name":   "Name must be at least 2 characters.",
		"email":  "Invalid email address.",
		"region": "Invalid region selected.",
		"id":     "Identity provider user id must be a UUID.",
	}
}

// UpdateProfileRequest changes the caller's own display name and, for
// executives, their territory. E-mail cannot be changed here.
type UpdateProfileRequest struct {
	Name      string  `json:"name" validate:"min=2"`
	Territory *string `json:"region,omitempty" validate:"omitempty,territory"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Territory != nil {
		t := strings.TrimSpace(*r.Territory)
		if t == "" {
			r.Territory = nil
			return
		}
		r.Territory = &t
	}
}

func (r *UpdateProfileRequest) Validate() error {
	return validation.Validate(r)
}

func (r *UpdateProfileRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name":   "Name must be at least 2 characters.",
		"region": "Invalid region selected.",
	}
}

// ProfileResponse is the JSON view of a profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Territory string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(p *Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
	if p.Territory != nil {
		resp.Territory = string(*p.Territory)
	}
	return resp
}

// ExecutiveListResponse wraps the admin view of registered executives.
type ExecutiveListResponse struct {
	Executives []ProfileResponse `json:"executives"`
	Total      int               `json:"total"`
}
