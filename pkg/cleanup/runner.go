package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/cleaner"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// ErrAborted is returned when the operator declines a fix
var ErrAborted = errors.New("aborted by operator")

// Confirmer asks the operator to approve a destructive step
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Analysis summarizes a pass over one entity type
type Analysis struct {
	Entity   model.EntityType
	Total    int
	Statuses map[string]int
	Fixable  int
}

// FixResult counts the outcome of a fix
type FixResult struct {
	Fixed  int
	Failed int
}

// Runner applies a pass to stored records. Reports and diffs go to out.
type Runner struct {
	store    store.RecordStore
	pass     Pass
	out      io.Writer
	logger   *zap.Logger
	recorder *cleaner.Recorder
}

// NewRunner creates a runner. recorder may be nil to skip diagnostics.
func NewRunner(s store.RecordStore, pass Pass, out io.Writer, recorder *cleaner.Recorder, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.L().Named("cleanup")
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{store: s, pass: pass, out: out, logger: logger, recorder: recorder}
}

type candidate struct {
	record  model.EntityRecord
	finding Finding
}

// entities filters the requested types down to those the pass applies to
func (r *Runner) entities(requested []model.EntityType) []model.EntityType {
	if len(requested) == 0 {
		requested = model.AllEntityTypes()
	}
	var out []model.EntityType
	for _, e := range requested {
		if r.pass.Applies(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Runner) scan(ctx context.Context, entity model.EntityType, visit func(model.EntityRecord, Finding)) error {
	records, err := r.store.ListRecords(ctx, entity)
	if err != nil {
		return fmt.Errorf("listing %s records: %w", entity, err)
	}
	for _, rec := range records {
		visit(rec, r.pass.Check(rec))
	}
	return nil
}

// Analyze counts findings by status. Nothing is written.
func (r *Runner) Analyze(ctx context.Context, entities []model.EntityType) ([]Analysis, error) {
	var out []Analysis
	for _, entity := range r.entities(entities) {
		a := Analysis{Entity: entity, Statuses: make(map[string]int)}
		err := r.scan(ctx, entity, func(_ model.EntityRecord, f Finding) {
			a.Total++
			a.Statuses[f.Status]++
			if f.Fixable {
				a.Fixable++
			}
		})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	fmt.Fprint(r.out, FormatAnalysis(r.pass.Name(), out))
	return out, nil
}

// Preview prints the diff of every fixable record. Nothing is written.
func (r *Runner) Preview(ctx context.Context, entities []model.EntityType) (int, error) {
	candidates, err := r.collect(ctx, entities)
	if err != nil {
		return 0, err
	}
	for _, c := range candidates {
		r.printDiff(c)
	}
	fmt.Fprintf(r.out, "%d record(s) would be corrected by %s fix\n", len(candidates), r.pass.Name())
	return len(candidates), nil
}

// Show prints the finding for one record
func (r *Runner) Show(ctx context.Context, entity model.EntityType, id string) (Finding, error) {
	rec, err := r.store.FindRecord(ctx, entity, id)
	if err != nil {
		return Finding{}, fmt.Errorf("finding %s %s: %w", entity, id, err)
	}

	f := r.pass.Check(*rec)
	fmt.Fprintf(r.out, "%s %s %q\n", entity, rec.ID, rec.Title)
	fmt.Fprintf(r.out, "  status: %s\n", f.Status)
	if f.Before != "" {
		fmt.Fprintf(r.out, "  current: %s\n", f.Before)
	}
	if f.Fixable {
		fmt.Fprintf(r.out, "  fixed:   %s\n", f.After)
	}
	return f, nil
}

// Fix asks for confirmation, then updates every fixable record, printing
// each diff as it goes. A declined confirmation returns ErrAborted and
// writes nothing.
func (r *Runner) Fix(ctx context.Context, entities []model.EntityType, confirmer Confirmer) (FixResult, error) {
	var result FixResult

	candidates, err := r.collect(ctx, entities)
	if err != nil {
		return result, err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(r.out, "Nothing to fix.")
		return result, nil
	}

	prompt := fmt.Sprintf("%d record(s) will be modified by %s fix. Continuer ? (oui/non)", len(candidates), r.pass.Name())
	ok, err := confirmer.Confirm(ctx, prompt)
	if err != nil {
		return result, err
	}
	if !ok {
		fmt.Fprintln(r.out, "Aborted, no changes made.")
		return result, ErrAborted
	}

	for _, c := range candidates {
		r.printDiff(c)
		fixed := c.finding.Fixed
		if _, err := r.store.UpdateRecord(ctx, &fixed); err != nil {
			result.Failed++
			r.logger.Error("Failed to update record",
				zap.String("entity", string(fixed.Type)),
				zap.String("id", fixed.ID),
				zap.Error(err))
			continue
		}
		result.Fixed++

		if r.recorder != nil {
			cctx := r.recorder.Context(fixed.Type, r.pass.Column(), fixed.ID)
			r.recorder.Add(cleaner.NewOperation(cctx, c.finding.Before, c.finding.After, c.finding.Operation, c.finding.Reason))
		}
	}

	if r.recorder != nil {
		if err := r.recorder.Flush(ctx); err != nil {
			r.logger.Warn("Failed to record cleaning operations", zap.Error(err))
		}
	}

	fmt.Fprintf(r.out, "%d record(s) fixed, %d failed\n", result.Fixed, result.Failed)
	return result, nil
}

func (r *Runner) collect(ctx context.Context, entities []model.EntityType) ([]candidate, error) {
	var out []candidate
	for _, entity := range r.entities(entities) {
		err := r.scan(ctx, entity, func(rec model.EntityRecord, f Finding) {
			if f.Fixable {
				out = append(out, candidate{record: rec, finding: f})
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Runner) printDiff(c candidate) {
	fmt.Fprintf(r.out, "%s %s %q [%s]\n", c.record.Type, c.record.ID, c.record.Title, c.finding.Status)
	fmt.Fprintf(r.out, "  - %s\n", c.finding.Before)
	fmt.Fprintf(r.out, "  + %s\n", c.finding.After)
}

// FormatAnalysis renders analyses as text
func FormatAnalysis(pass string, analyses []Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s analysis\n", pass)
	for _, a := range analyses {
		fmt.Fprintf(&sb, "- %s: %d record(s), %d fixable\n", a.Entity, a.Total, a.Fixable)
		statuses := make([]string, 0, len(a.Statuses))
		for s := range a.Statuses {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Fprintf(&sb, "    %-20s %d\n", s, a.Statuses[s])
		}
	}
	return sb.String()
}
