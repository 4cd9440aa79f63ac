/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gomotion/internal/spline"
)

// The shared curve library is an optional Postgres table teams use to pass
// curves between workstations. The local bank stays authoritative; this is
// a plain copy store keyed by name.

// dialect=PostgreSQL
const ensureCurvesSQL = `CREATE TABLE IF NOT EXISTS curves (
	name       TEXT PRIMARY KEY,
	channels   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// dialect=PostgreSQL
const upsertCurveSQL = `INSERT INTO curves(name, channels, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (name) DO UPDATE SET channels = EXCLUDED.channels, updated_at = now()`

// dialect=PostgreSQL
const listCurvesSQL = `SELECT name, updated_at FROM curves ORDER BY updated_at DESC`

// dialect=PostgreSQL
const selectCurveSQL = `SELECT channels FROM curves WHERE name = $1`

// CurveInfo is one shared-library listing entry.
type CurveInfo struct {
	Name      string
	UpdatedAt time.Time
}

// OpenPG connects to the shared curve library and ensures its schema.
func OpenPG(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open pg: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	if _, err := db.ExecContext(ctx, ensureCurvesSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure curves table: %w", err)
	}
	return db, nil
}

// SaveCurvePG stores a curve snapshot in the shared library.
func SaveCurvePG(ctx context.Context, db *sql.DB, name string, c spline.Curve) error {
	payload, err := json.Marshal(c.Records())
	if err != nil {
		return fmt.Errorf("marshal curve: %w", err)
	}
	if _, err := db.ExecContext(ctx, upsertCurveSQL, name, payload); err != nil {
		return fmt.Errorf("upsert curve: %w", err)
	}
	return nil
}

// ListCurvesPG lists the shared library, newest first.
func ListCurvesPG(ctx context.Context, db *sql.DB) ([]CurveInfo, error) {
	rows, err := db.QueryContext(ctx, listCurvesSQL)
	if err != nil {
		return nil, fmt.Errorf("list curves: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []CurveInfo
	for rows.Next() {
		var info CurveInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// LoadCurvePG fetches a named curve from the shared library.
func LoadCurvePG(ctx context.Context, db *sql.DB, name string) (spline.Curve, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, selectCurveSQL, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return spline.Curve{}, fmt.Errorf("curve %q not in shared library", name)
	}
	if err != nil {
		return spline.Curve{}, fmt.Errorf("select curve: %w", err)
	}
	var records []spline.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return spline.Curve{}, fmt.Errorf("decode curve: %w", err)
	}
	return spline.CurveFromRecords(records)
}
