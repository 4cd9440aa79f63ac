/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// language=SQL
// dialect=SQLite
const insertTakeSQL = `INSERT INTO takes(name, ts, channels, sample_count, data_blob) VALUES (?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listTakesSQL = `SELECT name, ts, channels, sample_count FROM takes ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectTakeSQL = `SELECT data_blob FROM takes WHERE name = ? ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(curve_name, ts, blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, blob FROM snapshots WHERE curve_name = ? ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE curve_name = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE curve_name = ? ORDER BY ts DESC LIMIT ?
)`

// TakeInfo describes a stored recording without its payload.
type TakeInfo struct {
	Name        string
	TS          time.Time
	Channels    int
	SampleCount int
}

// SaveTake persists a recorded sample feed (serialized by the caller) under
// a name. It opens the bank's index database and inserts the record.
func SaveTake(ctx context.Context, h *BankHandle, name string, channels, sampleCount int, data []byte, ts time.Time) error {
	if h == nil {
		return errors.New("nil BankHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertTakeSQL, name, ts.UTC().Format(time.RFC3339Nano), channels, sampleCount, data)
	return err
}

// ListTakes returns up to limit most recent takes, newest first.
func ListTakes(ctx context.Context, h *BankHandle, limit int) ([]TakeInfo, error) {
	if h == nil {
		return nil, errors.New("nil BankHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listTakesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []TakeInfo
	for rows.Next() {
		var info TakeInfo
		var tsStr string
		if err := rows.Scan(&info.Name, &tsStr, &info.Channels, &info.SampleCount); err != nil {
			return nil, err
		}
		info.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, info)
	}
	return out, rows.Err()
}

// GetTake returns the newest stored payload for the named take, or nil if
// there is none.
func GetTake(ctx context.Context, h *BankHandle, name string) ([]byte, error) {
	if h == nil {
		return nil, errors.New("nil BankHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	var blob []byte
	err = db.QueryRowContext(ctx, selectTakeSQL, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return blob, err
}

// SaveSnapshot persists an autosave blob of a curve with a timestamp.
func SaveSnapshot(ctx context.Context, h *BankHandle, curveName string, blob []byte, ts time.Time) error {
	if h == nil {
		return errors.New("nil BankHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertSnapshotSQL, curveName, ts.UTC().Format(time.RFC3339Nano), blob)
	return err
}

// GetLatestSnapshot returns the latest snapshot blob for a curve or nil if
// none exists.
func GetLatestSnapshot(ctx context.Context, h *BankHandle, curveName string) ([]byte, time.Time, error) {
	if h == nil {
		return nil, time.Time{}, errors.New("nil BankHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, curveName).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return the blob even if ts parse fails
	}
	return blob, ts, nil
}

// PruneOldSnapshots keeps at most keepLast snapshots for the curve and
// deletes older ones.
func PruneOldSnapshots(ctx context.Context, h *BankHandle, curveName string, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil BankHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, curveName, curveName, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
