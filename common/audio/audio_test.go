// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
)

var (
	_ Recorder = (*CommandRecorder)(nil)
	_ Player   = (*CommandPlayer)(nil)
)

type fakeRecorder struct {
	denied bool

	mu      sync.Mutex
	started []string
	stopped int
}

type fakeRecording struct {
	r *fakeRecorder
}

func (f fakeRecording) Stop() error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.stopped++
	return nil
}

func (r *fakeRecorder) RequestPermission(context.Context) (bool, error) {
	return !r.denied, nil
}

func (r *fakeRecorder) Start(_ context.Context, path string) (Recording, error) {
	if err := os.WriteFile(path, []byte("aac"), 0o600); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, path)
	return fakeRecording{r: r}, nil
}

func newCapture(t *testing.T, rec Recorder) (*Capture, *Store, *clock.Mock) {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "clips"), nil)
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewMock()
	clk.Set(time.UnixMilli(1700000000000))
	c := NewCapture(rec, store, clk)
	c.tempDir = t.TempDir()
	return c, store, clk
}

func TestCaptureDuration(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		wantClip bool
	}{
		{name: "tap", elapsed: 500 * time.Millisecond},
		{name: "just short", elapsed: MinDuration - time.Millisecond},
		{name: "minimum", elapsed: MinDuration, wantClip: true},
		{name: "long", elapsed: 2000 * time.Millisecond, wantClip: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			c, store, clk := newCapture(t, rec)

			if err := c.Start(t.Context()); err != nil {
				t.Fatal(err)
			}
			clk.Add(tc.elapsed)
			clip, err := c.Stop(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			if _, err := os.Stat(rec.started[0]); !os.IsNotExist(err) {
				t.Errorf("temp capture file still exists: %v", err)
			}
			clips, err := store.List()
			if err != nil {
				t.Fatal(err)
			}

			if !tc.wantClip {
				if clip != nil {
					t.Errorf("Stop() = %+v, want nil", clip)
				}
				if len(clips) != 0 {
					t.Errorf("store has %d clips, want 0", len(clips))
				}
				return
			}

			if clip == nil {
				t.Fatal("Stop() = nil, want clip")
			}
			wantName := ClipName(time.UnixMilli(1700000000000).Add(tc.elapsed))
			if clip.Name != wantName {
				t.Errorf("clip name = %q, want %q", clip.Name, wantName)
			}
			if _, err := os.Stat(clip.Path); err != nil {
				t.Errorf("clip file missing: %v", err)
			}
			if len(clips) != 1 || clips[0].Path != clip.Path {
				t.Errorf("List() = %+v", clips)
			}
		})
	}
}

func TestCapturePermissionDenied(t *testing.T) {
	c, _, _ := newCapture(t, &fakeRecorder{denied: true})
	if err := c.Start(t.Context()); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Start() error = %v, want ErrPermissionDenied", err)
	}
	if c.Active() {
		t.Error("capture active after denied permission")
	}
}

func TestCaptureRestartDiscards(t *testing.T) {
	rec := &fakeRecorder{}
	c, store, clk := newCapture(t, rec)

	if err := c.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	clk.Add(3 * time.Second)
	if err := c.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	if rec.stopped != 1 {
		t.Errorf("first recording stopped %d times, want 1", rec.stopped)
	}
	if _, err := os.Stat(rec.started[0]); !os.IsNotExist(err) {
		t.Error("discarded capture file still exists")
	}

	clk.Add(500 * time.Millisecond)
	clip, err := c.Stop(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if clip != nil {
		t.Error("restarted capture kept the earlier start time")
	}
	if clips, _ := store.List(); len(clips) != 0 {
		t.Errorf("store has %d clips", len(clips))
	}

	if _, err := c.Stop(t.Context()); !errors.Is(err, ErrNoActiveCapture) {
		t.Errorf("Stop() error = %v, want ErrNoActiveCapture", err)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"recording_1000.m4a",
		"recording_3000.m4a",
		"recording_2000.m4a",
		"notes.txt",
		"recording_abc.m4a",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	clips, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range clips {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"recording_3000.m4a", "recording_2000.m4a", "recording_1000.m4a"}, names); diff != "" {
		t.Errorf("List() (-want +got):\n%s", diff)
	}

	clip, err := store.Find("recording_2000.m4a")
	if err != nil {
		t.Fatal(err)
	}
	if !clip.CapturedAt.Equal(time.UnixMilli(2000)) {
		t.Errorf("CapturedAt = %v", clip.CapturedAt)
	}
	if _, err := store.Find("notes.txt"); err == nil {
		t.Error("Find(notes.txt) succeeded")
	}
}

type fakePlayer struct {
	mu      sync.Mutex
	playing map[string]bool
}

type fakePlaying struct {
	p    *fakePlayer
	path string
	done chan struct{}
}

func (f *fakePlaying) Stop() error {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	f.p.playing[f.path] = false
	return nil
}

func (f *fakePlaying) Done() <-chan struct{} {
	return f.done
}

func (p *fakePlayer) Play(_ context.Context, path string) (Playing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing[path] = true
	return &fakePlaying{p: p, path: path, done: make(chan struct{})}, nil
}

func (p *fakePlayer) isPlaying(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing[path]
}

func TestPlaybackSingleSlot(t *testing.T) {
	player := &fakePlayer{playing: map[string]bool{}}
	pb := NewPlayback(player)

	dir := t.TempDir()
	store, err := NewStore(dir, pb)
	if err != nil {
		t.Fatal(err)
	}
	a := filepath.Join(store.Dir(), "recording_1000.m4a")
	b := filepath.Join(store.Dir(), "recording_2000.m4a")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if err := pb.Play(t.Context(), a); err != nil {
		t.Fatal(err)
	}
	if err := pb.Play(t.Context(), b); err != nil {
		t.Fatal(err)
	}
	if player.isPlaying(a) || !player.isPlaying(b) || pb.Current() != b {
		t.Errorf("playing a=%v b=%v current=%q", player.isPlaying(a), player.isPlaying(b), pb.Current())
	}

	// Deleting a clip that is not loaded leaves playback alone.
	if err := store.Delete(a); err != nil {
		t.Fatal(err)
	}
	if !player.isPlaying(b) {
		t.Error("deleting another clip stopped playback")
	}

	if err := store.Delete(b); err != nil {
		t.Fatal(err)
	}
	if player.isPlaying(b) || pb.Current() != "" {
		t.Error("deleted clip still loaded")
	}
	if clips, _ := store.List(); len(clips) != 0 {
		t.Errorf("store has %d clips after delete", len(clips))
	}

	if err := pb.Pause(); err != nil {
		t.Errorf("Pause() with nothing loaded error = %v", err)
	}
}
