/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import "gomotion/internal/spline"

// History is the linear undo/redo stack of curve snapshots. Entries are
// immutable: Capture stores a deep copy and Retrieve hands one out, so no
// caller can mutate a committed state. Capturing from a rewound cursor
// truncates the redo tail, the classic linear-undo contract.
type History struct {
	stack  []spline.Curve
	cursor int // index of the current snapshot, -1 when empty
	saved  int // cursor of the last-saved snapshot, -1 when none
}

func NewHistory() *History {
	return &History{cursor: -1, saved: -1}
}

// Capture pushes a snapshot of c and makes it current, discarding any redo
// tail.
func (h *History) Capture(c spline.Curve) {
	h.stack = append(h.stack[:h.cursor+1], c.Copy())
	h.cursor = len(h.stack) - 1
	if h.saved >= h.cursor {
		// the saved snapshot was discarded with the redo tail
		h.saved = -1
	}
}

// Undo moves the cursor back and reports whether it moved.
func (h *History) Undo() bool {
	if !h.Undoable() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward and reports whether it moved.
func (h *History) Redo() bool {
	if !h.Redoable() {
		return false
	}
	h.cursor++
	return true
}

// Retrieve returns a copy of the current snapshot. ok is false while the
// history is empty.
func (h *History) Retrieve() (c spline.Curve, ok bool) {
	if h.cursor < 0 {
		return spline.Curve{}, false
	}
	return h.stack[h.cursor].Copy(), true
}

func (h *History) Undoable() bool { return h.cursor > 0 }
func (h *History) Redoable() bool { return h.cursor >= 0 && h.cursor < len(h.stack)-1 }

// Savable reports whether the current snapshot differs from the one marked
// as last saved. The marker is set externally after a successful
// persistence call.
func (h *History) Savable() bool { return h.cursor >= 0 && h.cursor != h.saved }

// MarkSaved marks the current snapshot as persisted.
func (h *History) MarkSaved() { h.saved = h.cursor }

// Clear resets the history to empty.
func (h *History) Clear() {
	h.stack = nil
	h.cursor = -1
	h.saved = -1
}

// Len returns the number of snapshots currently held.
func (h *History) Len() int { return len(h.stack) }
