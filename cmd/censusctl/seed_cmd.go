package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
)

func parseActorFlag(v string) (id.ActorID, error) {
	if v == "" {
		return id.ActorID{}, nil
	}
	actorID, err := id.ParseActorID(v)
	if err != nil {
		return id.ActorID{}, fmt.Errorf("invalid --id: %w", err)
	}
	return actorID, nil
}

func newSeedAdminCmd() *cobra.Command {
	var actor, email string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Register an admin profile for an identity provider subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actorID, err := parseActorFlag(actor)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Seeder.EnsureAdmin(cmd.Context(), actorID, email)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.ToResponse(p))
		},
	}
	cmd.Flags().StringVar(&actor, "id", "", "Identity provider subject (UUID). Generated if empty.")
	cmd.Flags().StringVar(&email, "email", "", "Admin e-mail (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSeedDemoCmd() *cobra.Command {
	var actor, email string

	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Register demo executives and households",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actorID, err := parseActorFlag(actor)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.Seeder.SeedAll(cmd.Context(), actorID, email)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{
				"executives": sum.Executives,
				"records":    sum.Records,
				"skipped":    sum.Skipped,
			})
		},
	}
	cmd.Flags().StringVar(&actor, "admin-id", "", "Admin subject (UUID). Generated if empty.")
	cmd.Flags().StringVar(&email, "admin-email", "", "Admin e-mail (required)")
	_ = cmd.MarkFlagRequired("admin-email")
	return cmd
}
