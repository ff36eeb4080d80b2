// Package postgres loads planning input from a program database. The
// schema carries one row per mother and worker plus an optional closure
// table; the source reads fresh rows on every call.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/uzazi-health/chwplan/core/model"
)

// Config holds the connection string.
type Config struct {
	DSN string `json:"dsn"`
}

// Source reads mothers, workers and closures from Postgres.
type Source struct {
	db *sql.DB
}

// New opens the pool and verifies connectivity.
func New(cfg Config) (*Source, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Source{db: db}, nil
}

const mothersQuery = `SELECT id, name, lat, lng, bleeding, temp_c,
       headache, vision_blur, baby_feeding_ok, days_postpartum, priority_override
  FROM mothers
 ORDER BY id`

// Mothers loads the registry. Nullable signal columns default benign so
// a half-filled intake form still triages.
func (s *Source) Mothers(ctx context.Context) ([]model.Mother, error) {
	rows, err := s.db.QueryContext(ctx, mothersQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres: query mothers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mothers []model.Mother
	for rows.Next() {
		var (
			m        model.Mother
			name     sql.NullString
			bleeding sql.NullString
			temp     sql.NullFloat64
			headache sql.NullBool
			blur     sql.NullBool
			feeding  sql.NullBool
			days     sql.NullInt64
			override sql.NullString
		)
		if err := rows.Scan(&m.ID, &name, &m.Location.Lat, &m.Location.Lng,
			&bleeding, &temp, &headache, &blur, &feeding, &days, &override); err != nil {
			return nil, fmt.Errorf("postgres: scan mother: %w", err)
		}
		m.Name = name.String
		m.BleedingStatus = "none"
		if bleeding.Valid && bleeding.String != "" {
			m.BleedingStatus = bleeding.String
		}
		m.TempC = temp.Float64
		m.Headache = headache.Bool
		m.VisionBlur = blur.Bool
		m.BabyFeedingOK = true
		if feeding.Valid {
			m.BabyFeedingOK = feeding.Bool
		}
		m.DaysPostpartum = int(days.Int64)
		m.PriorityOverride = model.AutoPriority
		if override.Valid && override.String != "" {
			m.PriorityOverride = override.String
		}
		mothers = append(mothers, m)
	}
	return mothers, rows.Err()
}

const chwsQuery = `SELECT id, name, base_lat, base_lng, max_visits_day, transport, phone
  FROM chws
 ORDER BY id`

// CHWs loads the worker roster.
func (s *Source) CHWs(ctx context.Context) ([]model.CHW, error) {
	rows, err := s.db.QueryContext(ctx, chwsQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres: query chws: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chws []model.CHW
	for rows.Next() {
		var (
			c         model.CHW
			name      sql.NullString
			transport sql.NullString
			phone     sql.NullString
		)
		if err := rows.Scan(&c.ID, &name, &c.Location.Lat, &c.Location.Lng,
			&c.MaxVisitsPerDay, &transport, &phone); err != nil {
			return nil, fmt.Errorf("postgres: scan chw: %w", err)
		}
		c.Name = name.String
		c.Transport = transport.String
		c.Phone = phone.String
		chws = append(chws, c)
	}
	return chws, rows.Err()
}

const blockedQuery = `SELECT node_a, node_b FROM blocked_edges WHERE active`

// BlockedEdges loads the active closures. A missing table is treated as
// no closures so programs without the feature run unchanged.
func (s *Source) BlockedEdges(ctx context.Context) ([]model.BlockedEdge, error) {
	rows, err := s.db.QueryContext(ctx, blockedQuery)
	if err != nil {
		return nil, nil //nolint:nilerr // optional table
	}
	defer func() { _ = rows.Close() }()

	var edges []model.BlockedEdge
	for rows.Next() {
		var e model.BlockedEdge
		if err := rows.Scan(&e.A, &e.B); err != nil {
			return nil, fmt.Errorf("postgres: scan blocked edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Close releases the pool.
func (s *Source) Close() error { return s.db.Close() }
