// Package csvsource loads planning input from the CSV layout used by
// field programs: one file of mothers, one of workers and optionally one
// of blocked segments. Columns are matched by header name, so column
// order does not matter and unknown columns are ignored.
package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/uzazi-health/chwplan/core/model"
)

// Config names the input files. BlockedPath may be empty; the other two
// are required.
type Config struct {
	MothersPath string `json:"mothers_path"`
	CHWsPath    string `json:"chws_path"`
	BlockedPath string `json:"blocked_path"`
}

// Source reads the configured files on every call so a planning run
// always sees the latest edits.
type Source struct {
	cfg Config
}

// New validates the configuration and returns a Source. Files are opened
// lazily; a missing file surfaces on first use.
func New(cfg Config) (*Source, error) {
	if cfg.MothersPath == "" {
		return nil, fmt.Errorf("csvsource: mothers_path is required")
	}
	if cfg.CHWsPath == "" {
		return nil, fmt.Errorf("csvsource: chws_path is required")
	}
	return &Source{cfg: cfg}, nil
}

// row is one CSV record with header-indexed access and benign defaults.
type row struct {
	fields map[string]string
	line   int
	file   string
}

func (r row) get(col string) string {
	return strings.TrimSpace(r.fields[col])
}

func (r row) getDefault(col, def string) string {
	if v := r.get(col); v != "" {
		return v
	}
	return def
}

// boolish accepts the spellings that show up in field spreadsheets.
func (r row) boolish(col string) bool {
	switch strings.ToLower(r.get(col)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func (r row) float(col string) (float64, error) {
	v := r.get(col)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %q: %w", r.file, r.line, col, err)
	}
	return f, nil
}

func (r row) int(col string) (int, error) {
	v := r.get(col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %q: %w", r.file, r.line, col, err)
	}
	return n, nil
}

// readRows parses the file into header-indexed rows.
func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				fields[col] = rec[i]
			}
		}
		rows = append(rows, row{fields: fields, line: line, file: path})
	}
	return rows, nil
}

// Mothers loads the mother registry. Absent signal columns default
// benign: no bleeding, feeding ok, priority "auto".
func (s *Source) Mothers(ctx context.Context) ([]model.Mother, error) {
	_ = ctx
	return ReadMothers(s.cfg.MothersPath)
}

// ReadMothers parses a single mother registry file.
func ReadMothers(path string) ([]model.Mother, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	mothers := make([]model.Mother, 0, len(rows))
	for _, r := range rows {
		id := r.get("id")
		if id == "" {
			return nil, fmt.Errorf("%s line %d: missing id", r.file, r.line)
		}
		lat, err := r.float("lat")
		if err != nil {
			return nil, err
		}
		lng, err := r.float("lng")
		if err != nil {
			return nil, err
		}
		temp, err := r.float("temp_c")
		if err != nil {
			return nil, err
		}
		days, err := r.int("days_postpartum")
		if err != nil {
			return nil, err
		}
		mothers = append(mothers, model.Mother{
			ID:               id,
			Name:             r.get("name"),
			Location:         model.Coordinates{Lat: lat, Lng: lng},
			BleedingStatus:   r.getDefault("bleeding", "none"),
			TempC:            temp,
			Headache:         r.boolish("headache"),
			VisionBlur:       r.boolish("vision_blur"),
			BabyFeedingOK:    !strings.EqualFold(r.getDefault("baby_feeding", "yes"), "no"),
			DaysPostpartum:   days,
			PriorityOverride: r.getDefault("priority", model.AutoPriority),
		})
	}
	return mothers, nil
}

// CHWs loads the worker roster.
func (s *Source) CHWs(ctx context.Context) ([]model.CHW, error) {
	_ = ctx
	return ReadCHWs(s.cfg.CHWsPath)
}

// ReadCHWs parses a single worker roster file.
func ReadCHWs(path string) ([]model.CHW, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	chws := make([]model.CHW, 0, len(rows))
	for _, r := range rows {
		id := r.get("id")
		if id == "" {
			return nil, fmt.Errorf("%s line %d: missing id", r.file, r.line)
		}
		lat, err := r.float("base_lat")
		if err != nil {
			return nil, err
		}
		lng, err := r.float("base_lng")
		if err != nil {
			return nil, err
		}
		visits, err := r.int("max_visits_day")
		if err != nil {
			return nil, err
		}
		chws = append(chws, model.CHW{
			ID:              id,
			Name:            r.get("name"),
			Location:        model.Coordinates{Lat: lat, Lng: lng},
			MaxVisitsPerDay: visits,
			Transport:       r.get("transport"),
			Phone:           r.get("phone"),
		})
	}
	return chws, nil
}

// BlockedEdges loads the optional closure list. A missing path means no
// closures today.
func (s *Source) BlockedEdges(ctx context.Context) ([]model.BlockedEdge, error) {
	_ = ctx
	return ReadBlockedEdges(s.cfg.BlockedPath)
}

// ReadBlockedEdges parses a closure list. An empty or absent path yields
// no closures.
func ReadBlockedEdges(path string) ([]model.BlockedEdge, error) {
	if path == "" {
		return nil, nil
	}
	rows, err := readRows(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	edges := make([]model.BlockedEdge, 0, len(rows))
	for _, r := range rows {
		a, b := r.get("a"), r.get("b")
		if a == "" || b == "" {
			return nil, fmt.Errorf("%s line %d: blocked edge needs both endpoints", r.file, r.line)
		}
		edges = append(edges, model.BlockedEdge{A: a, B: b})
	}
	return edges, nil
}

// Close is a no-op; the source holds no open handles between calls.
func (s *Source) Close() error { return nil }
