package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "censusdesk/internal/jwt_token"
	"censusdesk/internal/platform/config"
	id "censusdesk/pkg/domain"
)

type tokenOutput struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	Subject   string `json:"sub"`
	ExpiresIn string `json:"expires_in"`
}

// newTokenCmd mints a session token with the configured signing key. It is
// meant for local development; production tokens come from the identity provider.
func newTokenCmd() *cobra.Command {
	var (
		actor string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token for an actor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actorID, err := id.ParseActorID(actor)
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to mint tokens in production")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, ttl)
			token, err := svc.IssueToken(cmd.Context(), actorID, email)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				Token:     token,
				Type:      "Bearer",
				Subject:   actorID.String(),
				ExpiresIn: ttl.String(),
			})
		},
	}
	cmd.Flags().StringVar(&actor, "id", "", "Actor subject (UUID, required)")
	cmd.Flags().StringVar(&email, "email", "", "Contact e-mail carried in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
