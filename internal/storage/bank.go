/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists curve banks on disk. A bank is a directory with a
// curves.json manifest, timestamped backups of earlier manifest versions,
// exports, and an embedded SQLite index for recorded takes and autosave
// snapshots.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gomotion/internal/spline"
)

const (
	ManifestFileName = "curves.json"
	BackupsDirName   = "backups"
)

// Standard subfolders of a bank directory.
var standardSubDirs = []string{
	"exports",
	"recordings",
	BackupsDirName,
}

// BankMetadata is free-form descriptive information about a bank.
type BankMetadata struct {
	Author      string `json:"author,omitempty"`
	Rig         string `json:"rig,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// NamedCurve is one stored curve: a name plus one serialized spline per
// motor channel.
type NamedCurve struct {
	Name     string          `json:"name"`
	Channels []spline.Record `json:"channels"`
}

// Bank is the manifest of a curve bank directory.
type Bank struct {
	Name     string       `json:"name"`
	Metadata BankMetadata `json:"metadata,omitempty"`
	Curves   []NamedCurve `json:"curves"`
}

// Curve returns the named curve deserialized into the editable model.
func (b *Bank) Curve(name string) (spline.Curve, error) {
	for _, nc := range b.Curves {
		if nc.Name == name {
			return spline.CurveFromRecords(nc.Channels)
		}
	}
	return spline.Curve{}, fmt.Errorf("curve %q not in bank", name)
}

// PutCurve stores a curve snapshot under the given name, replacing any
// existing entry with that name.
func (b *Bank) PutCurve(name string, c spline.Curve) {
	nc := NamedCurve{Name: name, Channels: c.Records()}
	for i := range b.Curves {
		if b.Curves[i].Name == name {
			b.Curves[i] = nc
			return
		}
	}
	b.Curves = append(b.Curves, nc)
}

// BankHandle keeps track of the bank state loaded/saved from disk.
// Root is the bank directory containing curves.json and subfolders.
type BankHandle struct {
	Root         string
	ManifestPath string
	Bank         Bank
}

// Init creates a new bank directory at root (creating it if it doesn't
// exist), scaffolds the standard subfolders, and writes the manifest
// transactionally.
func Init(root string, bank Bank) (*BankHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create bank root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	h := &BankHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Bank:         bank,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads an existing bank from the given root directory. If the current
// manifest cannot be read or parsed, the latest backup is tried.
func Open(root string) (*BankHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		bank, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &BankHandle{Root: root, ManifestPath: mpath, Bank: *bank}, nil
	}
	var bank Bank
	if uerr := json.Unmarshal(b, &bank); uerr != nil {
		bbank, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &BankHandle{Root: root, ManifestPath: mpath, Bank: *bbank}, nil
	}
	return &BankHandle{Root: root, ManifestPath: mpath, Bank: bank}, nil
}

// Save writes the current BankHandle.Bank to disk with transactional
// semantics and a timestamped backup of the previous manifest (if present).
func Save(h *BankHandle) error {
	if h == nil {
		return errors.New("nil BankHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid BankHandle: missing paths")
	}
	data, err := json.MarshalIndent(h.Bank, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current manifest exists, copy it to a timestamped backup first
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		if cerr := copyFile(h.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, then rename
	dir := filepath.Dir(h.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing the destination first if needed
	if _, err := os.Stat(h.ManifestPath); err == nil {
		_ = os.Remove(h.ManifestPath)
	}
	if rerr := os.Rename(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if
// needed, and updates the handle.
func SaveAs(h *BankHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil BankHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(h)
}

// AutosaveCrashSnapshot dumps the in-memory bank into the backups folder
// without touching the manifest. Used by the crash handler, so it must not
// depend on the manifest being in a consistent state.
func AutosaveCrashSnapshot(h *BankHandle) (string, error) {
	if h == nil {
		return "", errors.New("nil BankHandle")
	}
	data, err := json.MarshalIndent(h.Bank, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("crash-%s.json", stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file and ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*Bank, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var bank Bank
	if err := json.Unmarshal(b, &bank); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &bank, nil
}
