package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"
	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE runs (
	id         TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	top_n      INTEGER NOT NULL,
	summary    TEXT NOT NULL
);

CREATE TABLE scores (
	run_id                TEXT NOT NULL REFERENCES runs(id),
	rank                  INTEGER NOT NULL,
	neighborhood          TEXT NOT NULL,
	housing_units         INTEGER NOT NULL,
	conn_dist             INTEGER NOT NULL,
	adj_conn_dist         REAL NOT NULL,
	score                 REAL NOT NULL,
	housing_transit_score INTEGER NOT NULL,
	geometry              BLOB,
	PRIMARY KEY (run_id, neighborhood)
);

CREATE TABLE stations (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	station_id   INTEGER NOT NULL,
	name         TEXT NOT NULL,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	connectivity INTEGER NOT NULL,
	overridden   INTEGER NOT NULL,
	neighborhood TEXT
);

CREATE TABLE orphans (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	community_area TEXT NOT NULL,
	units          INTEGER NOT NULL
);

CREATE INDEX idx_scores_rank ON scores(rank);
CREATE INDEX idx_stations_neighborhood ON stations(neighborhood);
`

// openSnapshot creates a fresh SQLite file at path, replacing any previous
// snapshot.
func openSnapshot(ctx context.Context, path string) (*sql.DB, error) {
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "sqlite: remove %s", path+suffix)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: create schema")
	}
	return db, nil
}

// WriteSnapshot writes a single-run SQLite database holding the ranked
// scores, stations and unmatched community areas.
func WriteSnapshot(ctx context.Context, path string, in Input) error {
	db, err := openSnapshot(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	runID := uuid.New().String()
	summary, err := json.Marshal(in.Summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, top_n, summary) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC(), in.TopN, string(summary),
	); err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	stationHood := make(map[int]string)
	for i, s := range in.Scores {
		var blob []byte
		if s.Geometry != nil {
			blob, err = ewkb.Marshal(s.Geometry, ewkb.NDR)
			if err != nil {
				return eris.Wrapf(err, "sqlite: encode geometry for %s", s.Name)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scores (run_id, rank, neighborhood, housing_units, conn_dist, adj_conn_dist, score, housing_transit_score, geometry)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i+1, s.Name, s.HousingUnits, s.ConnDist, s.AdjConnDist, s.Score, s.ScoreInt(), blob,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert score %s", s.Name)
		}
		for _, st := range s.Stations {
			stationHood[st.StationID] = s.Name
		}
	}

	for _, st := range in.Stations {
		var hood sql.NullString
		if name, ok := stationHood[st.StationID]; ok {
			hood = sql.NullString{String: name, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stations (run_id, station_id, name, lat, lon, connectivity, overridden, neighborhood)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, st.StationID, st.Name, st.Lat, st.Lon, st.Connectivity, st.Overridden, hood,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert station %d", st.StationID)
		}
	}

	for _, o := range in.Orphans {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orphans (run_id, community_area, units) VALUES (?, ?, ?)`,
			runID, o.Name, o.Units,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert orphan %s", o.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
