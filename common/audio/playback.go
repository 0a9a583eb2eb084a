// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package audio

import (
	"context"
	"fmt"
	"sync"
)

// Player is an audio output.
type Player interface {
	Play(ctx context.Context, path string) (Playing, error)
}

// Playing is a loaded clip.
type Playing interface {
	// Stop halts playback and releases the clip.
	Stop() error

	// Done is closed when the clip finishes on its own.
	Done() <-chan struct{}
}

// Playback plays at most one clip at a time.
type Playback struct {
	player Player

	mu      sync.Mutex
	path    string
	playing Playing
}

func NewPlayback(player Player) *Playback {
	return &Playback{
		player: player,
	}
}

// Play loads and plays path, unloading any clip already loaded.
func (p *Playback) Play(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.unloadLocked(); err != nil {
		return err
	}
	playing, err := p.player.Play(ctx, path)
	if err != nil {
		return fmt.Errorf("audio: playing %s: %w", path, err)
	}
	p.path = path
	p.playing = playing
	return nil
}

// Pause stops the loaded clip, if any.
func (p *Playback) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unloadLocked()
}

// Current returns the path of the loaded clip, or "" if none.
func (p *Playback) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing != nil {
		select {
		case <-p.playing.Done():
			p.path, p.playing = "", nil
		default:
		}
	}
	return p.path
}

// Done returns a channel closed when the loaded clip finishes, or nil if no
// clip is loaded.
func (p *Playback) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing == nil {
		return nil
	}
	return p.playing.Done()
}

// Unload stops playback if path is the loaded clip.
func (p *Playback) Unload(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing == nil || p.path != path {
		return nil
	}
	return p.unloadLocked()
}

func (p *Playback) unloadLocked() error {
	if p.playing == nil {
		return nil
	}
	err := p.playing.Stop()
	path := p.path
	p.path, p.playing = "", nil
	if err != nil {
		return fmt.Errorf("audio: stopping %s: %w", path, err)
	}
	return nil
}
