package sqlite

import "embed"

//go:embed migrations/*.sql
var migrationFS embed.FS

const insertReportSQL = `
INSERT INTO reports (id, uid, deck, pt, year, month, day, hour, lat, lon,
                     sst, at, dpt, slp, vsi, dsi, bg_value, bg_var, ice)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectReportsSQL = `
SELECT id, COALESCE(uid, ''), deck, pt, year, month, day, hour, lat, lon,
       sst, at, dpt, slp, vsi, dsi, bg_value, bg_var, ice
FROM reports
ORDER BY id, year, month, day, hour, uid
`

const insertFlagSQL = `
INSERT OR REPLACE INTO qc_flags (run_id, uid, domain, flag, value)
VALUES (?, ?, ?, ?, ?)
`
