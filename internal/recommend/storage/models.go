// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

// Package storage persists trained similarity models to disk so a
// restart can serve predictions without retraining first.
//
// Artifacts are gob-encoded, gzip-compressed, and carried alongside a
// JSON metadata file holding a SHA-256 checksum. A checksum mismatch on
// load is treated as a missing artifact rather than an error worth
// crashing over.
package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned when no artifact exists under the given name,
// or the existing artifact fails its integrity check.
var ErrNotFound = errors.New("model artifact not found")

// CollaborativeState is the serialized form of a trained similarity
// model. Plain data only; the recommend package reconstructs its
// runtime model from it.
type CollaborativeState struct {
	Users   []string
	Items   []string
	Cells   [][]float64
	UserSim [][]float64
	ItemSim [][]float64
}

// Metadata describes a persisted artifact.
type Metadata struct {
	Name         string    `json:"name"`
	TrainedAt    time.Time `json:"trained_at"`
	Users        int       `json:"users"`
	Items        int       `json:"items"`
	Interactions int64     `json:"interactions"`
	Checksum     string    `json:"checksum"`
	SizeBytes    int64     `json:"size_bytes"`
}

// Store reads and writes model artifacts under a base directory.
// One artifact per name; a save replaces the previous version.
type Store struct {
	baseDir string
}

// NewStore creates the base directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) artifactPath(name string) string {
	return filepath.Join(s.baseDir, name+".gob.gz")
}

func (s *Store) metadataPath(name string) string {
	return filepath.Join(s.baseDir, name+".meta.json")
}

// Save persists state under name, replacing any previous artifact.
// The artifact is written to a temp file and renamed so a crash
// mid-write never leaves a truncated artifact under the final name.
func (s *Store) Save(name string, state *CollaborativeState, interactions int64) (*Metadata, error) {
	path := s.artifactPath(name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}

	hasher := sha256.New()
	gz := gzip.NewWriter(io.MultiWriter(f, hasher))
	if err := gob.NewEncoder(gz).Encode(state); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("compress artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("close artifact: %w", err)
	}

	info, err := os.Stat(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("publish artifact: %w", err)
	}

	meta := &Metadata{
		Name:         name,
		TrainedAt:    time.Now().UTC(),
		Users:        len(state.Users),
		Items:        len(state.Items),
		Interactions: interactions,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes:    info.Size(),
	}
	if err := s.writeMetadata(name, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *Store) writeMetadata(name string, meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(s.metadataPath(name), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Load reads the artifact saved under name and verifies its checksum
// against the stored metadata. Missing or corrupt artifacts return
// ErrNotFound.
func (s *Store) Load(name string) (*CollaborativeState, *Metadata, error) {
	meta, err := s.LoadMetadata(name)
	if err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(s.artifactPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read artifact: %w", err)
	}

	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != meta.Checksum {
		return nil, nil, ErrNotFound
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress artifact: %w", err)
	}
	defer gz.Close()

	state := &CollaborativeState{}
	if err := gob.NewDecoder(gz).Decode(state); err != nil {
		return nil, nil, fmt.Errorf("decode artifact: %w", err)
	}
	return state, meta, nil
}

// LoadMetadata reads the metadata saved under name.
func (s *Store) LoadMetadata(name string) (*Metadata, error) {
	data, err := os.ReadFile(s.metadataPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	meta := &Metadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

// Exists reports whether an artifact with valid metadata is present.
func (s *Store) Exists(name string) bool {
	_, err := s.LoadMetadata(name)
	return err == nil
}
