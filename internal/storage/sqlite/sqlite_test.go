package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/internal/storage"
	"github.com/google/go-cmp/cmp"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(id, uid string, day int, sst float64) *report.Report {
	return &report.Report{
		ID:           id,
		UID:          uid,
		Deck:         992,
		PlatformType: report.DriftingBuoy,
		Year:         2003,
		Month:        6,
		Day:          day,
		Hour:         report.Float(3.5),
		Lat:          report.Float(-12.25),
		Lon:          report.Float(101.5),
		Vars:         report.Variables{SST: report.Float(sst)},
		Background: report.Background{
			Value:         report.Float(26.1),
			ErrorVariance: report.Float(0.04),
		},
	}
}

func TestVoyagesGroupByPlatform(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	reports := []*report.Report{
		sample("53901", "B2", 2, 26.4),
		sample("41001", "A1", 1, 27.0),
		sample("53901", "B1", 1, 26.3),
	}
	reports[0].Vars.SST = sql.NullFloat64{}
	if err := s.InsertReports(ctx, reports); err != nil {
		t.Fatalf("InsertReports: %v", err)
	}

	voyages, err := s.Voyages(ctx)
	if err != nil {
		t.Fatalf("Voyages: %v", err)
	}
	if len(voyages) != 2 {
		t.Fatalf("got %d voyages, expected 2", len(voyages))
	}
	if voyages[0].PlatformID() != "41001" || voyages[1].PlatformID() != "53901" {
		t.Fatalf("voyages out of order: %s, %s", voyages[0].PlatformID(), voyages[1].PlatformID())
	}
	if voyages[1].Len() != 2 {
		t.Fatalf("platform 53901 has %d reports, expected 2", voyages[1].Len())
	}

	got := voyages[1].Reports[1]
	if diff := cmp.Diff(reports[0], got); diff != "" {
		t.Errorf("report did not survive storage (-stored +loaded):\n%s", diff)
	}
	if got.Vars.SST.Valid {
		t.Error("missing SST came back present")
	}
}

func TestBackfillUIDs(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	if err := s.InsertReports(ctx, []*report.Report{
		sample("53901", "", 1, 26.3),
		sample("53901", "KEEP", 2, 26.3),
		sample("53901", "", 3, 26.3),
	}); err != nil {
		t.Fatalf("InsertReports: %v", err)
	}

	n, err := s.BackfillUIDs(ctx)
	if err != nil {
		t.Fatalf("BackfillUIDs: %v", err)
	}
	if n != 2 {
		t.Errorf("assigned %d uids, expected 2", n)
	}

	voyages, err := s.Voyages(ctx)
	if err != nil {
		t.Fatalf("Voyages: %v", err)
	}
	seen := map[string]bool{}
	for _, r := range voyages[0].Reports {
		if r.UID == "" || seen[r.UID] {
			t.Errorf("report on day %d has uid %q", r.Day, r.UID)
		}
		seen[r.UID] = true
	}
	if !seen["KEEP"] {
		t.Error("an existing uid was overwritten")
	}

	if n, err := s.BackfillUIDs(ctx); err != nil || n != 0 {
		t.Errorf("second backfill assigned %d uids (err %v), expected 0", n, err)
	}
}

func TestSaveFlags(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	r := sample("53901", "B1", 1, 26.3)
	r.Flags.Set(report.IQuamTrack, report.Pass)
	r.Flags.Set(report.Aground, report.Fail)
	v := report.NewVoyage(r)

	if err := s.BeginRun(ctx, "run-1", time.Now()); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := s.SaveFlags(ctx, "run-1", v); err != nil {
		t.Fatalf("SaveFlags: %v", err)
	}

	// a second save replaces rather than duplicates
	r.Flags.Set(report.Aground, report.Pass)
	if err := s.SaveFlags(ctx, "run-1", v); err != nil {
		t.Fatalf("SaveFlags again: %v", err)
	}

	flags, err := s.Flags(ctx, "run-1", "B1")
	if err != nil {
		t.Fatalf("Flags: %v", err)
	}
	if diff := cmp.Diff(r.Flags, flags); diff != "" {
		t.Errorf("stored flags mismatch (-expected +got):\n%s", diff)
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM qc_flags WHERE run_id = 'run-1'`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Errorf("stored %d flag rows, expected 2 (untested flags are not stored)", rows)
	}

	if err := s.FinishRun(ctx, "run-1", storage.RunStats{Finished: time.Now(), Platforms: 1, Reports: 1}); err != nil {
		t.Errorf("FinishRun: %v", err)
	}
	if err := s.FinishRun(ctx, "no-such-run", storage.RunStats{Finished: time.Now()}); err == nil {
		t.Error("expected an error finishing an unknown run")
	}
}

func TestReopenKeepsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.db")

	s, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.InsertReports(ctx, []*report.Report{sample("B1", "u1", 1, 20)}); err != nil {
		t.Fatalf("InsertReports: %v", err)
	}
	s.Close()

	s, err = New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, expected 2", version)
	}

	voyages, err := s.Voyages(ctx)
	if err != nil {
		t.Fatalf("Voyages: %v", err)
	}
	if len(voyages) != 1 || voyages[0].Len() != 1 {
		t.Errorf("reopened database lost its reports")
	}
}
