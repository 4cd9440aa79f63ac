/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectionBasics(t *testing.T) {
	s := NewSelection()
	if !s.Empty() {
		t.Fatalf("new selection not empty")
	}
	s.Select(3)
	s.Select(1)
	s.Select(3)
	if got := s.Sorted(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("Sorted() = %v, want [1 3]", got)
	}
	s.SelectOnly(2)
	if got := s.Sorted(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("SelectOnly left %v", got)
	}
	s.Deselect(2)
	if !s.Empty() {
		t.Fatalf("selection not empty after deselect")
	}
}

func TestSelectRectHalfOpenInterval(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	// left edge inclusive, right edge exclusive
	if diff := cmp.Diff([]int{1, 2}, SelectRect(xs, 1, 3)); diff != "" {
		t.Fatalf("SelectRect [1,3) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, SelectRect(xs, -1, 5)); diff != "" {
		t.Fatalf("SelectRect covering all mismatch (-want +got):\n%s", diff)
	}
	if got := SelectRect(xs, 1.5, 1.5); len(got) != 0 {
		t.Fatalf("empty interval selected %v", got)
	}
	if got := SelectRect(xs, 5, 9); len(got) != 0 {
		t.Fatalf("interval past the end selected %v", got)
	}
}

func TestSearchSortedBoundaries(t *testing.T) {
	xs := []float64{0, 1, 1, 2}
	if got := searchLeft(xs, 1); got != 1 {
		t.Fatalf("searchLeft = %d, want 1", got)
	}
	if got := searchRight(xs, 1); got != 3 {
		t.Fatalf("searchRight = %d, want 3", got)
	}
	if got := searchLeft(xs, 5); got != 4 {
		t.Fatalf("searchLeft past end = %d, want 4", got)
	}
}
