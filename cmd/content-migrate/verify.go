package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/David-Botos/content-migrate/pkg/converter"
	"github.com/David-Botos/content-migrate/pkg/transfer"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		only    []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the dump files with the migrated records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			entities, err := a.parseEntities(only)
			if err != nil {
				return err
			}

			s, err := a.openStore(ctx, a.cfg, a.logger.Named("store"))
			if err != nil {
				return fmt.Errorf("opening record store: %w", err)
			}
			defer s.Close()

			verifier := transfer.NewVerifier(s, converter.NewTypeConverter(a.logger.Named("converter")), a.logger.Named("verifier")).
				WithTimeout(timeout)

			var reports []*transfer.VerificationReport
			failed := 0
			for _, entity := range entities {
				report, err := verifier.VerifyEntity(ctx, entity, a.cfg.DumpFile(entity))
				if err != nil {
					return fmt.Errorf("verifying %s: %w", entity, err)
				}
				if !report.Passed() {
					failed++
				}
				reports = append(reports, report)
			}

			fmt.Fprint(cmd.OutOrStdout(), transfer.FormatVerificationReports(reports))
			if failed > 0 {
				return withCode(exitFailure, fmt.Errorf("%d entity type(s) failed verification", failed))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Entity types to verify (default MIGRATE_ENTITIES or all)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Per-entity verification timeout")
	return cmd
}
