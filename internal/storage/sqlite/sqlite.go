// Package sqlite reads marine reports from, and writes QC flags to, a SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chrissnell/marineqc/internal/log"
	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/internal/storage"
	"github.com/chrissnell/marineqc/pkg/migrate"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	_ storage.Source = (*Storage)(nil)
	_ storage.Sink   = (*Storage)(nil)
)

// Storage is a SQLite report source and flag sink.
type Storage struct {
	db   *sql.DB
	path string
}

// New opens the database at path and applies any pending schema migrations.
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows one writer; keep database/sql from opening a second
	// connection that would block on the lock.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := newMigrator(db).MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate schema in %s: %w", path, err)
	}

	return &Storage{db: db, path: path}, nil
}

func newMigrator(db *sql.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, migrate.NewFSProvider(migrationFS, "migrations", ""))
}

// SchemaVersion returns the highest applied schema migration.
func (s *Storage) SchemaVersion(ctx context.Context) (int, error) {
	return newMigrator(s.db).CurrentVersion(ctx)
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// InsertReports appends reports to the reports table in one transaction.
func (s *Storage) InsertReports(ctx context.Context, reports []*report.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertReportSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range reports {
		var uid sql.NullString
		if r.UID != "" {
			uid = sql.NullString{String: r.UID, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			r.ID, uid, r.Deck, r.PlatformType, r.Year, r.Month, r.Day, r.Hour, r.Lat, r.Lon,
			r.Vars.SST, r.Vars.AT, r.Vars.DPT, r.Vars.SLP, r.Vars.ShipSpeed, r.Vars.ShipHeading,
			r.Background.Value, r.Background.ErrorVariance, r.Background.IceFraction)
		if err != nil {
			return fmt.Errorf("could not insert report %s: %w", r, err)
		}
	}
	return tx.Commit()
}

// BackfillUIDs gives every report without a UID a random one and returns how
// many were assigned. Flags are keyed by UID, so this runs before a QC run.
func (s *Storage) BackfillUIDs(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT rowid FROM reports WHERE uid IS NULL OR uid = ''`)
	if err != nil {
		return 0, fmt.Errorf("could not find reports without a uid: %w", err)
	}
	var rowIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		rowIDs = append(rowIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range rowIDs {
		if _, err := tx.ExecContext(ctx, `UPDATE reports SET uid = ? WHERE rowid = ?`, uuid.NewString(), id); err != nil {
			return 0, fmt.Errorf("could not assign uid to row %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if len(rowIDs) > 0 {
		log.Infof("assigned uids to %d reports in %s", len(rowIDs), s.path)
	}
	return len(rowIDs), nil
}

// Voyages loads every report, grouped into one voyage per platform ID.
// Voyages come back in ID order; reports within a voyage are in storage
// order and still need sorting.
func (s *Storage) Voyages(ctx context.Context) ([]*report.Voyage, error) {
	rows, err := s.db.QueryContext(ctx, selectReportsSQL)
	if err != nil {
		return nil, fmt.Errorf("could not query reports: %w", err)
	}
	defer rows.Close()

	var voyages []*report.Voyage
	var current *report.Voyage
	for rows.Next() {
		r := &report.Report{}
		err := rows.Scan(
			&r.ID, &r.UID, &r.Deck, &r.PlatformType, &r.Year, &r.Month, &r.Day, &r.Hour, &r.Lat, &r.Lon,
			&r.Vars.SST, &r.Vars.AT, &r.Vars.DPT, &r.Vars.SLP, &r.Vars.ShipSpeed, &r.Vars.ShipHeading,
			&r.Background.Value, &r.Background.ErrorVariance, &r.Background.IceFraction,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan report: %w", err)
		}

		if current == nil || current.PlatformID() != r.ID {
			current = report.NewVoyage()
			voyages = append(voyages, current)
		}
		current.Add(r)
	}
	return voyages, rows.Err()
}

// BeginRun records the start of a QC run.
func (s *Storage) BeginRun(ctx context.Context, runID string, started time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO qc_runs (id, started) VALUES (?, ?)`,
		runID, started.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("could not record run %s: %w", runID, err)
	}
	return nil
}

// SaveFlags writes every evaluated flag of the voyage's reports under runID.
// Untested flags are not stored.
func (s *Storage) SaveFlags(ctx context.Context, runID string, v *report.Voyage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertFlagSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range v.Reports {
		for _, c := range report.Checks() {
			f := r.Flags.Get(c)
			if f == report.Untested {
				continue
			}
			if _, err := stmt.ExecContext(ctx, runID, r.UID, string(c.Domain()), c.Name(), f.Code()); err != nil {
				return fmt.Errorf("could not store %s for report %s: %w", c, r, err)
			}
		}
	}
	return tx.Commit()
}

// FinishRun records the totals of a completed run.
func (s *Storage) FinishRun(ctx context.Context, runID string, stats storage.RunStats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE qc_runs SET finished = ?, platforms = ?, reports = ?, errors = ? WHERE id = ?`,
		stats.Finished.UTC().Format(time.RFC3339Nano), stats.Platforms, stats.Reports, stats.Errors, runID)
	if err != nil {
		return fmt.Errorf("could not finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no run %s to finish", runID)
	}
	return nil
}

// Flags reads back the stored flags of one report for a run.
func (s *Storage) Flags(ctx context.Context, runID, uid string) (report.Flags, error) {
	var flags report.Flags

	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, flag, value FROM qc_flags WHERE run_id = ? AND uid = ?`, runID, uid)
	if err != nil {
		return flags, fmt.Errorf("could not query flags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var domain, name string
		var value int
		if err := rows.Scan(&domain, &name, &value); err != nil {
			return flags, err
		}
		c, ok := report.LookupCheck(report.Domain(domain), name)
		if !ok {
			log.Warnf("ignoring unknown flag %s/%s for report %s", domain, name, uid)
			continue
		}
		flags.Set(c, report.FlagFromCode(value))
	}
	return flags, rows.Err()
}
