// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package transcribe

import (
	"errors"
	"strings"
	"testing"
)

func TestGoogleRejectsAAC(t *testing.T) {
	g := NewGoogle(nil, GoogleConfig{Encoding: "OGG_OPUS"})

	for _, name := range []string{"recording_1700000000000.m4a", "NONNA.M4A", "story.mp4", "story.aac"} {
		t.Run(name, func(t *testing.T) {
			audio := strings.NewReader("aac audio")
			_, err := g.Transcribe(t.Context(), name, audio)
			if !errors.Is(err, ErrTranscriptionFailed) {
				t.Fatalf("Transcribe() error = %v, want ErrTranscriptionFailed", err)
			}
			if !strings.Contains(err.Error(), "AAC") {
				t.Errorf("error %q does not name the unsupported format", err)
			}
			if audio.Len() != len("aac audio") {
				t.Error("audio was read before rejecting the file")
			}
		})
	}
}

func TestAACContainer(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"recording.m4a", true},
		{"recording.M4A", true},
		{"recording.mp4", true},
		{"recording.aac", true},
		{"recording.flac", false},
		{"recording.ogg", false},
		{"recording.wav", false},
		{"recording", false},
	}
	for _, tc := range tests {
		if got := aacContainer(tc.filename); got != tc.want {
			t.Errorf("aacContainer(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}
