// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// MinDuration is the shortest capture that is kept. Shorter captures are
// treated as accidental taps.
const MinDuration = 1500 * time.Millisecond

var (
	// ErrPermissionDenied is returned when microphone access is not granted.
	ErrPermissionDenied = errors.New("audio: microphone permission denied")

	// ErrNoActiveCapture is returned by Stop when nothing is recording.
	ErrNoActiveCapture = errors.New("audio: no active capture")
)

// Recorder is a microphone.
type Recorder interface {
	// RequestPermission asks for access to the microphone.
	RequestPermission(ctx context.Context) (bool, error)

	// Start begins writing compressed audio to path.
	Start(ctx context.Context, path string) (Recording, error)
}

// Recording is an in-progress capture.
type Recording interface {
	// Stop ends the capture and flushes the file.
	Stop() error
}

type session struct {
	id      string
	rec     Recording
	path    string
	started time.Time
}

// Capture records clips into a Store, one at a time.
type Capture struct {
	recorder Recorder
	store    *Store
	clock    clock.Clock
	tempDir  string

	mu     sync.Mutex
	active *session
}

func NewCapture(recorder Recorder, store *Store, clk clock.Clock) *Capture {
	if clk == nil {
		clk = clock.New()
	}
	return &Capture{
		recorder: recorder,
		store:    store,
		clock:    clk,
		tempDir:  os.TempDir(),
	}
}

// Start begins a new capture. A capture already in progress is stopped and
// discarded.
func (c *Capture) Start(ctx context.Context) error {
	ok, err := c.recorder.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("audio: requesting permission: %w", err)
	}
	if !ok {
		return ErrPermissionDenied
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		slog.WarnContext(ctx, "audio: discarding unfinished capture", "session", c.active.id)
		c.discardLocked(ctx)
	}

	id := uuid.NewString()
	path := filepath.Join(c.tempDir, "nonna-capture-"+id+clipExt)
	rec, err := c.recorder.Start(ctx, path)
	if err != nil {
		return fmt.Errorf("audio: starting capture: %w", err)
	}
	c.active = &session{
		id:      id,
		rec:     rec,
		path:    path,
		started: c.clock.Now(),
	}
	slog.DebugContext(ctx, "audio: capture started", "session", id)
	return nil
}

// Stop ends the capture and saves it as a clip. A capture shorter than
// MinDuration is discarded and Stop returns a nil clip.
func (c *Capture) Stop(ctx context.Context) (*Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.active
	if s == nil {
		return nil, ErrNoActiveCapture
	}
	c.active = nil

	elapsed := c.clock.Since(s.started)
	if err := s.rec.Stop(); err != nil {
		_ = os.Remove(s.path)
		return nil, fmt.Errorf("audio: stopping capture: %w", err)
	}

	if elapsed < MinDuration {
		slog.InfoContext(ctx, "audio: capture too short, discarding", "session", s.id, "elapsed", elapsed)
		_ = os.Remove(s.path)
		return nil, nil
	}

	clip, err := c.store.save(s.path, c.clock.Now())
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "audio: capture saved", "session", s.id, "clip", clip.Name, "elapsed", elapsed)
	return clip, nil
}

// Active returns whether a capture is in progress.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Capture) discardLocked(ctx context.Context) {
	if err := c.active.rec.Stop(); err != nil {
		slog.WarnContext(ctx, "audio: stopping discarded capture", "session", c.active.id, "error", err)
	}
	_ = os.Remove(c.active.path)
	c.active = nil
}
