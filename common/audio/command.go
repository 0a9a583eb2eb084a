// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// FilePlaceholder in a command line is replaced with the clip path.
const FilePlaceholder = "{file}"

var (
	// DefaultRecordCommand captures the default ALSA input as AAC.
	DefaultRecordCommand = []string{"ffmpeg", "-y", "-loglevel", "error", "-f", "alsa", "-i", "default", "-c:a", "aac", "-f", "mp4", FilePlaceholder}

	// DefaultPlayCommand plays a clip without a window.
	DefaultPlayCommand = []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "error", FilePlaceholder}
)

const stopTimeout = 5 * time.Second

// CommandRecorder records by running an external program until stopped.
type CommandRecorder struct {
	Command []string
}

func (r *CommandRecorder) RequestPermission(context.Context) (bool, error) {
	if len(r.Command) == 0 {
		return false, errors.New("audio: no record command configured")
	}
	if _, err := exec.LookPath(r.Command[0]); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *CommandRecorder) Start(_ context.Context, path string) (Recording, error) {
	p, err := startCommand(r.Command, path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CommandPlayer plays by running an external program.
type CommandPlayer struct {
	Command []string
}

func (c *CommandPlayer) Play(_ context.Context, path string) (Playing, error) {
	p, err := startCommand(c.Command, path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func startCommand(command []string, path string) (*process, error) {
	if len(command) == 0 {
		return nil, errors.New("audio: empty command")
	}
	args := make([]string, len(command))
	for i, a := range command {
		args[i] = strings.ReplaceAll(a, FilePlaceholder, path)
	}

	// The process outlives the call that starts it.
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec // command comes from local configuration
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("audio: starting %s: %w", args[0], err)
	}
	p := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

// Stop interrupts the process so it can finalize its output, killing it if it
// does not exit in time.
func (p *process) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		_ = p.cmd.Process.Kill()
	}
	select {
	case <-p.done:
		return nil
	case <-time.After(stopTimeout):
		_ = p.cmd.Process.Kill()
		<-p.done
		return fmt.Errorf("audio: %s did not exit after interrupt", p.cmd.Path)
	}
}
