/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gomotion/internal/spline"
)

func openPGForTest(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("GMO_POSTGRES_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("no postgres DSN configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := OpenPG(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	return db
}

func TestSharedLibraryRoundTrip(t *testing.T) {
	db := openPGForTest(t)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	curve := spline.NewCurve(
		spline.Line([]float64{0, 1, 2}, []float64{0, 1, 0}),
		spline.Line([]float64{0, 2}, []float64{-1, 1}),
	)
	name := "gomotion-test-roundtrip"
	t.Cleanup(func() { _, _ = db.ExecContext(ctx, `DELETE FROM curves WHERE name = $1`, name) })

	if err := SaveCurvePG(ctx, db, name, curve); err != nil {
		t.Fatalf("SaveCurvePG: %v", err)
	}
	got, err := LoadCurvePG(ctx, db, name)
	if err != nil {
		t.Fatalf("LoadCurvePG: %v", err)
	}
	if diff := cmp.Diff(curve.Records(), got.Records()); diff != "" {
		t.Fatalf("curve changed across shared library (-want +got):\n%s", diff)
	}

	list, err := ListCurvesPG(ctx, db)
	if err != nil {
		t.Fatalf("ListCurvesPG: %v", err)
	}
	found := false
	for _, info := range list {
		if info.Name == name {
			found = true
		}
	}
	if !found {
		t.Fatalf("saved curve missing from listing")
	}

	if _, err := LoadCurvePG(ctx, db, "gomotion-test-missing"); err == nil {
		t.Fatalf("load of unknown curve succeeded")
	}
}
