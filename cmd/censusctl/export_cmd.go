package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	censushandler "censusdesk/internal/census/handler"
	id "censusdesk/pkg/domain"
)

func newExportCmd() *cobra.Command {
	var (
		actor, out                    string
		from, to, territory, proof, q string
		submittedBy                   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the records visible to an actor to an xlsx file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actorID, err := id.ParseActorID(actor)
			if err != nil {
				return fmt.Errorf("invalid --actor: %w", err)
			}
			filter, err := censushandler.ParseFilter(url.Values{
				"from":                {from},
				"to":                  {to},
				"territory":           {territory},
				"identity_proof_type": {proof},
				"submitted_by":        {submittedBy},
				"q":                   {q},
			})
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.Profiles.Resolve(cmd.Context(), actorID)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(f)
			n, err := a.Records.Export(cmd.Context(), profile, filter, w)
			if err == nil {
				err = w.Flush()
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"command": "export",
				"file":    out,
				"records": n,
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Actor whose visibility applies (UUID, required)")
	cmd.Flags().StringVar(&out, "out", "census-records.xlsx", "Output file")
	cmd.Flags().StringVar(&from, "from", "", "Submitted on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Submitted on or before (YYYY-MM-DD)")
	cmd.Flags().StringVar(&territory, "territory", "", "Territory")
	cmd.Flags().StringVar(&proof, "identity-proof-type", "", "Identity proof type")
	cmd.Flags().StringVar(&submittedBy, "submitted-by", "", "Submitter (UUID)")
	cmd.Flags().StringVar(&q, "q", "", "Free-text search")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}
