// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	clipPrefix = "recording_"
	clipExt    = ".m4a"
)

// Clip is a saved recording.
type Clip struct {
	// Name is the file name, recording_<epoch ms>.m4a.
	Name string

	// Path is the absolute path of the file.
	Path string

	CapturedAt time.Time
}

// ClipName returns the file name for a clip captured at t.
func ClipName(t time.Time) string {
	return fmt.Sprintf("%s%d%s", clipPrefix, t.UnixMilli(), clipExt)
}

// ParseClipName returns the capture time embedded in a clip file name.
func ParseClipName(name string) (time.Time, bool) {
	s, ok := strings.CutPrefix(name, clipPrefix)
	if !ok {
		return time.Time{}, false
	}
	s, ok = strings.CutSuffix(s, clipExt)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Store is a directory of saved clips.
type Store struct {
	dir      string
	playback *Playback
}

// NewStore opens the clip directory, creating it if needed. Deleting a clip
// that playback has loaded unloads it first. playback may be nil.
func NewStore(dir string, playback *Playback) (*Store, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("audio: resolving clip directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audio: creating clip directory: %w", err)
	}
	return &Store{
		dir:      dir,
		playback: playback,
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// List returns saved clips, newest first.
func (s *Store) List() ([]Clip, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("audio: reading clip directory: %w", err)
	}
	var clips []Clip
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		t, ok := ParseClipName(e.Name())
		if !ok {
			continue
		}
		clips = append(clips, Clip{
			Name:       e.Name(),
			Path:       filepath.Join(s.dir, e.Name()),
			CapturedAt: t,
		})
	}
	slices.SortFunc(clips, func(a, b Clip) int {
		return b.CapturedAt.Compare(a.CapturedAt)
	})
	return clips, nil
}

// Find resolves a clip by file name or path.
func (s *Store) Find(nameOrPath string) (Clip, error) {
	name := filepath.Base(nameOrPath)
	t, ok := ParseClipName(name)
	if !ok {
		return Clip{}, fmt.Errorf("audio: %s is not a clip", nameOrPath)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return Clip{}, fmt.Errorf("audio: finding clip %s: %w", name, err)
	}
	return Clip{Name: name, Path: path, CapturedAt: t}, nil
}

// Delete removes a clip, unloading it from playback first.
func (s *Store) Delete(path string) error {
	if s.playback != nil {
		if err := s.playback.Unload(path); err != nil {
			return err
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("audio: deleting clip %s: %w", path, err)
	}
	return nil
}

// save moves a finished capture into the store.
func (s *Store) save(src string, capturedAt time.Time) (*Clip, error) {
	name := ClipName(capturedAt)
	dst := filepath.Join(s.dir, name)
	if err := os.Rename(src, dst); err != nil {
		// Temp files may live on another filesystem.
		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("audio: saving clip %s: %w", name, err)
		}
		_ = os.Remove(src)
	}
	return &Clip{Name: name, Path: dst, CapturedAt: capturedAt}, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	_, err = io.Copy(out, in)
	return err
}
