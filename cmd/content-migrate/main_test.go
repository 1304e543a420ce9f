package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/config"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
	"github.com/David-Botos/content-migrate/pkg/store/memory"
)

const tipDump = `INSERT INTO tips VALUES
('t1','Composter en appartement','Un bac et des vers','u1','2021-03-04 10:00:00','["Déchets"]','','','true'),
('t2','Brouillon','pas fini','u1','2021-03-05','[]','','','false'),
('t3','Couper la veille','Économiser','ghost','','{Énergie,Eau}','','',null);
`

// testApp runs the CLI against an in-memory store and a temporary dump directory
type testApp struct {
	*app
	store *memory.Store
	out   *bytes.Buffer
	dir   string
}

func newTestApp(t *testing.T, stdin string, tty bool) *testApp {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tip.sql"), []byte(tipDump), 0o644))

	t.Setenv("STORE_BACKEND", config.BackendMemory)
	t.Setenv("DUMP_DIR", dir)
	t.Setenv("MIGRATE_ENTITIES", "tip")
	t.Setenv("LOG_LEVEL", "error")

	s := memory.NewStore()
	out := &bytes.Buffer{}
	a := &app{
		in:         strings.NewReader(stdin),
		out:        out,
		isTerminal: func() bool { return tty },
		openStore: func(context.Context, *config.Config, *zap.Logger) (store.RecordStore, error) {
			return s, nil
		},
	}
	return &testApp{app: a, store: s, out: out, dir: dir}
}

func (ta *testApp) run(args ...string) error {
	cmd := newRootCmd(ta.app)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(ta.dir, "missing.env")}, args...))
	return cmd.Execute()
}

func (ta *testApp) seedActor(t *testing.T, id string, lat, lng float64) {
	t.Helper()
	_, err := ta.store.CreateRecord(context.Background(), &model.EntityRecord{
		Type:     model.EntityActor,
		ID:       id,
		Title:    "Acteur " + id,
		Location: &model.GeoLocation{Latitude: lat, Longitude: lng},
		Address:  &model.ParsedAddress{Street: "211 Avenue Jean Jaurès, 75019 Paris"},
	})
	require.NoError(t, err)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), exitFailure},
		{"usage", withCode(exitUsage, errors.New("bad flag")), exitUsage},
		{"wrapped", fmt.Errorf("fix: %w", withCode(exitAborted, errors.New("no"))), exitAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
	assert.NoError(t, withCode(exitUsage, nil))
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"oui\n", true},
		{"  OUI \n", true},
		{"oui", true},
		{"non\n", false},
		{"o\n", false},
		{"yes\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := newPromptConfirmer(strings.NewReader(tt.input), &out).Confirm(context.Background(), "Continuer ? (oui/non)")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "(oui/non)")
		})
	}
}

func TestMigrate_TestFlagWritesNothing(t *testing.T) {
	ta := newTestApp(t, "", false)

	err := ta.run("migrate", "--test", "--default-author", "redaction@example.fr")
	require.NoError(t, err)

	assert.Contains(t, ta.out.String(), "Migration Report")
	assert.Contains(t, ta.out.String(), "dry-run (nothing written)")
	count, err := ta.store.CountRecords(context.Background(), model.EntityTip)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrate_WritesAndReportsJSON(t *testing.T) {
	ta := newTestApp(t, "", false)

	err := ta.run("migrate", "--json", "--default-author", "redaction@example.fr")
	require.NoError(t, err)

	assert.Contains(t, ta.out.String(), `"totalMigrated": 2`)
	count, err := ta.store.CountRecords(context.Background(), model.EntityTip)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestMigrate_MissingDumpFails(t *testing.T) {
	ta := newTestApp(t, "", false)

	err := ta.run("migrate", "--only", "article", "--default-author", "redaction@example.fr")
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, ta.out.String(), "Migration Report")
}

func TestMigrate_UnknownEntity(t *testing.T) {
	ta := newTestApp(t, "", false)

	err := ta.run("migrate", "--only", "podcast")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestVerify_AfterMigrate(t *testing.T) {
	ta := newTestApp(t, "", false)
	require.NoError(t, ta.run("migrate", "--default-author", "redaction@example.fr"))
	ta.out.Reset()

	require.NoError(t, ta.run("verify"))
	assert.Contains(t, ta.out.String(), "OK")
}

func TestVerify_EmptyStoreMismatch(t *testing.T) {
	ta := newTestApp(t, "", false)

	err := ta.run("verify")
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, ta.out.String(), "MISMATCH")
}

func TestGeoFix_Confirmed(t *testing.T) {
	ta := newTestApp(t, "oui\n", true)
	ta.seedActor(t, "a1", 2.3522, 48.8566)

	require.NoError(t, ta.run("geo", "fix"))

	rec, err := ta.store.FindRecord(context.Background(), model.EntityActor, "a1")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, rec.Location.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, rec.Location.Longitude, 1e-9)
	assert.Len(t, ta.store.CleaningOperations(), 1)
}

func TestGeoFix_DeclinedChangesNothing(t *testing.T) {
	ta := newTestApp(t, "non\n", true)
	ta.seedActor(t, "a1", 2.3522, 48.8566)

	err := ta.run("geo", "fix")
	require.Error(t, err)
	assert.Equal(t, exitAborted, exitCode(err))
	assert.Contains(t, ta.out.String(), "Aborted, no changes made.")

	rec, err := ta.store.FindRecord(context.Background(), model.EntityActor, "a1")
	require.NoError(t, err)
	assert.InDelta(t, 2.3522, rec.Location.Latitude, 1e-9)
	assert.Empty(t, ta.store.CleaningOperations())
}

func TestGeoFix_RequiresTerminalOrYes(t *testing.T) {
	ta := newTestApp(t, "oui\n", false)
	ta.seedActor(t, "a1", 2.3522, 48.8566)

	err := ta.run("geo", "fix")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	require.NoError(t, ta.run("geo", "fix", "--yes"))
	rec, err := ta.store.FindRecord(context.Background(), model.EntityActor, "a1")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, rec.Location.Latitude, 1e-9)
}

func TestGeoPreviewAndShow(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.seedActor(t, "a1", 2.3522, 48.8566)

	require.NoError(t, ta.run("geo", "preview"))
	assert.Contains(t, ta.out.String(), "1 record(s) would be corrected by geo fix")

	ta.out.Reset()
	require.NoError(t, ta.run("geo", "show", "actor", "a1"))
	assert.Contains(t, ta.out.String(), "status: swapped")

	ta.out.Reset()
	require.NoError(t, ta.run("geo", "analyze"))
	assert.Contains(t, ta.out.String(), "swapped")
}

func TestGeoShow_BadArgs(t *testing.T) {
	ta := newTestApp(t, "", false)

	err := ta.run("geo", "show", "podcast", "x")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	err = ta.run("geo", "show", "actor", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestAddressFix(t *testing.T) {
	ta := newTestApp(t, "", false)
	ta.seedActor(t, "a1", 48.8566, 2.3522)

	require.NoError(t, ta.run("address", "fix", "-y"))

	rec, err := ta.store.FindRecord(context.Background(), model.EntityActor, "a1")
	require.NoError(t, err)
	assert.Equal(t, "211 Avenue Jean Jaurès", rec.Address.Street)
	assert.Equal(t, "75019", rec.Address.PostalCode)
	assert.Equal(t, "Paris", rec.Address.City)
}
