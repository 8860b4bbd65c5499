// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store persists connectivity metrics in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"m4o.io/forestconn/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS patch_metrics (
		run                   TEXT             NOT NULL,
		patch                 BIGINT           NOT NULL,
		weighted_patch_area   DOUBLE PRECISION,
		unweighted_patch_area DOUBLE PRECISION,
		forest_amount         DOUBLE PRECISION,
		anomaly               TEXT             NOT NULL DEFAULT '',
		matches               INTEGER          NOT NULL DEFAULT 0,
		error                 TEXT             NOT NULL DEFAULT '',
		recorded_at           TIMESTAMPTZ      NOT NULL DEFAULT NOW()
	)`

const insert = `
	INSERT INTO patch_metrics (
		run, patch,
		weighted_patch_area, unweighted_patch_area, forest_amount,
		anomaly, matches, error, recorded_at
	) VALUES (
		:run, :patch,
		:weighted_patch_area, :unweighted_patch_area, :forest_amount,
		:anomaly, :matches, :error, :recorded_at
	)`

// batchSize bounds the rows of one multi-row insert.
const batchSize = 500

// Store writes metrics records to the patch_metrics table.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database named by dsn and makes sure the table
// exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	db.SetMaxOpenConns(4)

	s := Attach(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Attach wraps an open connection pool.
func Attach(db *sqlx.DB) *Store { return &Store{db: db} }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the patch_metrics table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create patch_metrics: %w", err)
	}

	return nil
}

// Save inserts the records of one run in a single transaction.
func (s *Store) Save(ctx context.Context, run string, records []model.Metrics) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	rows := make([]row, 0, batchSize)

	for i, m := range records {
		rows = append(rows, toRow(run, m, now))

		if len(rows) == batchSize || i == len(records)-1 {
			if _, err := tx.NamedExecContext(ctx, insert, rows); err != nil {
				return fmt.Errorf("failed to insert metrics of run %s: %w", run, err)
			}

			rows = rows[:0]
		}
	}

	return tx.Commit()
}

// Load returns the records of a run ordered by patch id.
func (s *Store) Load(ctx context.Context, run string) ([]model.Metrics, error) {
	const query = `
		SELECT
			run, patch,
			weighted_patch_area, unweighted_patch_area, forest_amount,
			anomaly, matches, error, recorded_at
		FROM patch_metrics
		WHERE run = $1
		ORDER BY patch`

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, run); err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", run, err)
	}

	records := make([]model.Metrics, len(rows))
	for i, r := range rows {
		records[i] = r.metrics()
	}

	return records, nil
}

// row is a patch_metrics row. NaN areas are stored as NULL.
type row struct {
	Run        string    `db:"run"`
	Patch      int64     `db:"patch"`
	Weighted   *float64  `db:"weighted_patch_area"`
	Unweighted *float64  `db:"unweighted_patch_area"`
	Forest     *float64  `db:"forest_amount"`
	Anomaly    string    `db:"anomaly"`
	Matches    int       `db:"matches"`
	Err        string    `db:"error"`
	RecordedAt time.Time `db:"recorded_at"`
}

func toRow(run string, m model.Metrics, at time.Time) row {
	return row{
		Run:        run,
		Patch:      m.Patch,
		Weighted:   nullable(m.WeightedPatchArea),
		Unweighted: nullable(m.UnweightedPatchArea),
		Forest:     nullable(m.ForestAmount),
		Anomaly:    m.Anomaly.String(),
		Matches:    m.Matches,
		Err:        m.Err,
		RecordedAt: at,
	}
}

func (r row) metrics() model.Metrics {
	m := model.Metrics{
		Patch:               r.Patch,
		WeightedPatchArea:   value(r.Weighted),
		UnweightedPatchArea: value(r.Unweighted),
		ForestAmount:        value(r.Forest),
		Matches:             r.Matches,
		Err:                 r.Err,
	}

	for a := model.AnomalyNone; a <= model.AnomalyFailed; a++ {
		if a.String() == r.Anomaly {
			m.Anomaly = a
		}
	}

	return m
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}

	return &f
}

func value(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}

	return *f
}
