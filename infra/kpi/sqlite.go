package kpi

import (
	"database/sql"
	"time"

	core "github.com/uzazi-health/chwplan/core/metrics/visitkpi"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists workload KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS visit_kpi (
        chw_id TEXT,
        day INTEGER,
        visits INTEGER,
        completed INTEGER,
        km REAL,
        capacity INTEGER,
        PRIMARY KEY(chw_id, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the KPI record. Visits, completions and
// distance accumulate; capacity reflects the latest plan that set it.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO visit_kpi (chw_id, day, visits, completed, km, capacity)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(chw_id, day) DO UPDATE SET
            visits = visits + excluded.visits,
            completed = completed + excluded.completed,
            km = km + excluded.km,
            capacity = CASE WHEN excluded.capacity != 0 THEN excluded.capacity ELSE capacity END`,
		r.CHWID, d.Unix(), r.Visits, r.Completed, r.Km, r.Capacity)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(chwID string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT chw_id, day, visits, completed, km, capacity
        FROM visit_kpi WHERE chw_id = ? AND day >= ? AND day <= ? ORDER BY day`,
		chwID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var vid string
		var ts int64
		var visits, completed, capacity int
		var km float64
		if err := rows.Scan(&vid, &ts, &visits, &completed, &km, &capacity); err != nil {
			return nil, err
		}
		res = append(res, core.Record{
			CHWID:     vid,
			Date:      time.Unix(ts, 0).UTC(),
			Visits:    visits,
			Completed: completed,
			Km:        km,
			Capacity:  capacity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
