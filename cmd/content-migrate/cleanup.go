package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/David-Botos/content-migrate/pkg/address"
	"github.com/David-Botos/content-migrate/pkg/cleaner"
	"github.com/David-Botos/content-migrate/pkg/cleanup"
	"github.com/David-Botos/content-migrate/pkg/geo"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// passFactory builds the pass once flags are parsed
type passFactory func(a *app) cleanup.Pass

func newGeoCmd(a *app) *cobra.Command {
	var strict bool
	cmd := newCleanupCmd(a, "geo", "Detect and fix swapped or sign-flipped coordinates", func(a *app) cleanup.Pass {
		opts := []geo.Option{geo.WithHomeRegion(a.cfg.GeoHomeBox)}
		if strict || a.cfg.GeoStrict {
			opts = append(opts, geo.WithBadRegion(a.cfg.GeoBadRegion))
		}
		return cleanup.NewGeoPass(geo.NewCorrector(opts...))
	})
	cmd.PersistentFlags().BoolVar(&strict, "strict", false, "Also flip longitudes that land in the known bad region")
	return cmd
}

func newAddressCmd(a *app) *cobra.Command {
	return newCleanupCmd(a, "address", "Split single-line addresses into street, postcode and city", func(a *app) cleanup.Pass {
		return cleanup.NewAddressPass(address.NewParser(a.logger.Named("address")))
	})
}

func newCleanupCmd(a *app, name, short string, build passFactory) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
	}
	cmd.PersistentFlags().StringSliceVar(&only, "only", nil, "Entity types to scan (default every type the pass applies to)")

	// withRunner opens the store for one subcommand
	withRunner := func(cmd *cobra.Command, record bool, fn func(*cleanup.Runner) error) error {
		ctx := cmd.Context()
		s, err := a.openStore(ctx, a.cfg, a.logger.Named("store"))
		if err != nil {
			return fmt.Errorf("opening record store: %w", err)
		}
		defer s.Close()

		var recorder *cleaner.Recorder
		if record {
			if recorder, err = cleaner.NewRecorder(s, "", a.logger.Named("cleaner")); err != nil {
				return err
			}
		}
		return fn(cleanup.NewRunner(s, build(a), cmd.OutOrStdout(), recorder, a.logger.Named(name)))
	}

	entities := func() ([]model.EntityType, error) {
		if len(only) == 0 {
			return nil, nil
		}
		return a.parseEntities(only)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "analyze",
		Short: "Count records by " + name + " status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := entities()
			if err != nil {
				return err
			}
			return withRunner(cmd, false, func(r *cleanup.Runner) error {
				_, err := r.Analyze(cmd.Context(), selected)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "Print the changes " + name + " fix would make",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := entities()
			if err != nil {
				return err
			}
			return withRunner(cmd, false, func(r *cleanup.Runner) error {
				_, err := r.Preview(cmd.Context(), selected)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <type> <id>",
		Short: "Print the " + name + " finding for one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := model.ParseEntityType(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			return withRunner(cmd, false, func(r *cleanup.Runner) error {
				_, err := r.Show(cmd.Context(), entity, args[1])
				return err
			})
		},
	})

	var yes bool
	fix := &cobra.Command{
		Use:   "fix",
		Short: "Apply " + name + " corrections after confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := entities()
			if err != nil {
				return err
			}
			confirmer, err := a.confirmerFor(yes)
			if err != nil {
				return err
			}
			return withRunner(cmd, true, func(r *cleanup.Runner) error {
				result, err := r.Fix(cmd.Context(), selected, confirmer)
				if errors.Is(err, cleanup.ErrAborted) {
					return withCode(exitAborted, err)
				}
				if err != nil {
					return err
				}
				if result.Failed > 0 {
					return withCode(exitFailure, fmt.Errorf("%d record(s) could not be updated", result.Failed))
				}
				return nil
			})
		},
	}
	fix.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the oui/non confirmation")
	cmd.AddCommand(fix)

	return cmd
}
