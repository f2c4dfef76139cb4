package jwttoken

import (
	"censusdesk/pkg/platform/middleware/auth"
)

// Validator exposes a JWTService to the auth middleware, which only needs
// the subject and contact e-mail.
type Validator struct {
	service *JWTService
}

// Validator returns the auth.JWTValidator view of s.
func (s *JWTService) Validator() *Validator {
	return &Validator{service: s}
}

func (v *Validator) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.JWTClaims{
		ActorID: claims.Subject,
		Email:   claims.Email,
	}, nil
}
