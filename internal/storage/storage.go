// Package storage lays out media files on disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644

	// youngMaxAge is the oldest age still bucketed as "young".
	youngMaxAge = 29
)

// Paths is the pair of files allocated for one submission.
type Paths struct {
	Original  string
	Processed string
}

// PathAllocator hands out unique, date-partitioned file paths under a media root.
type PathAllocator struct {
	root string
}

// NewPathAllocator creates an allocator rooted at mediaDir.
func NewPathAllocator(mediaDir string) *PathAllocator {
	return &PathAllocator{root: mediaDir}
}

// Allocate returns the paths for a submission received at t:
// {root}/YYYY/MM/DD/HHMMSSffffff_{rand8}_{original|processed}.wav.
// The day directory is created when missing.
func (a *PathAllocator) Allocate(t time.Time) (Paths, error) {
	dir := filepath.Join(a.root, t.Format("2006"), t.Format("01"), t.Format("02"))
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return Paths{}, fmt.Errorf("failed to create media directory: %w", err)
	}

	stem := fmt.Sprintf("%s%06d_%s", t.Format("150405"), t.Nanosecond()/1000, uuid.NewString()[:8])
	return Paths{
		Original:  filepath.Join(dir, stem+"_original.wav"),
		Processed: filepath.Join(dir, stem+"_processed.wav"),
	}, nil
}

// WriteFile stores data at path.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Remove deletes path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// References locates the bundled reference voice samples.
type References struct {
	dir string
}

// NewReferences creates a resolver over the default sample directory.
func NewReferences(dir string) *References {
	return &References{dir: dir}
}

// Anonymous is the sample used when nobody is signed in.
func (r *References) Anonymous() string {
	return filepath.Join(r.dir, "REF_default.wav")
}

// Default picks REF_{male|female}_{young|old}.wav for a user. An unparsable
// birth year counts as young.
func (r *References) Default(birthYear string, male bool, now time.Time) string {
	gender := "female"
	if male {
		gender = "male"
	}
	group := "young"
	if year, err := strconv.Atoi(strings.TrimSpace(birthYear)); err == nil && now.Year()-year > youngMaxAge {
		group = "old"
	}
	return filepath.Join(r.dir, fmt.Sprintf("REF_%s_%s.wav", gender, group))
}
