package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/address"
	"github.com/David-Botos/content-migrate/pkg/category"
	"github.com/David-Botos/content-migrate/pkg/converter"
	"github.com/David-Botos/content-migrate/pkg/transfer"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		dryRun        bool
		only          []string
		asJSON        bool
		defaultAuthor string
		usersFile     string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import users, then migrate every selected entity dump",
		Long: `Reads the legacy dump files, cleans each field and writes the records
to the configured store. Rows already migrated are skipped, so the command
can be re-run after a partial failure. With --test nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			entities, err := a.parseEntities(only)
			if err != nil {
				return err
			}

			mapper, err := a.categoryMapper()
			if err != nil {
				return withCode(exitUsage, err)
			}

			opts := transfer.Options{
				DumpFiles:          a.cfg.DumpFiles,
				UsersFile:          a.cfg.UsersFile,
				Entities:           entities,
				DryRun:             a.cfg.DryRun || dryRun,
				DefaultAuthorEmail: a.cfg.DefaultAuthorEmail,
			}
			if defaultAuthor != "" {
				opts.DefaultAuthorEmail = defaultAuthor
			}
			if usersFile != "" {
				opts.UsersFile = usersFile
			} else if _, err := os.Stat(opts.UsersFile); errors.Is(err, os.ErrNotExist) {
				a.logger.Warn("No user export found, skipping user import", zap.String("path", opts.UsersFile))
				opts.UsersFile = ""
			}

			s, err := a.openStore(ctx, a.cfg, a.logger.Named("store"))
			if err != nil {
				return fmt.Errorf("opening record store: %w", err)
			}
			defer s.Close()

			manager, err := transfer.NewTransferManager(
				s,
				converter.NewTypeConverter(a.logger.Named("converter")),
				mapper,
				address.NewParser(a.logger.Named("address")),
				opts,
				a.logger.Named("transfer"),
			)
			if err != nil {
				return err
			}

			metrics, runErr := manager.Run(ctx)
			if metrics != nil {
				if asJSON {
					data, err := metrics.ToJSON()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
				} else {
					fmt.Fprint(cmd.OutOrStdout(), manager.GenerateReport())
				}
			}
			if runErr != nil {
				return runErr
			}
			if metrics.FailedSteps > 0 {
				return withCode(exitFailure, fmt.Errorf("%d migration step(s) failed", metrics.FailedSteps))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "test", false, "Dry run: parse and clean everything, write nothing")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Entity types to migrate (default MIGRATE_ENTITIES or all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run metrics as JSON")
	cmd.Flags().StringVar(&defaultAuthor, "default-author", "", "Email of the fallback author when no user can be resolved")
	cmd.Flags().StringVar(&usersFile, "users", "", "User export file (default USERS_FILE)")
	return cmd
}

func (a *app) categoryMapper() (*category.Mapper, error) {
	if a.cfg.CategoryMappingFile == "" {
		return category.DefaultMapper(), nil
	}
	return category.LoadFile(a.cfg.CategoryMappingFile)
}
