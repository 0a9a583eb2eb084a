// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package transcribe

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
)

// ErrTranscriptionFailed is returned when the speech provider fails or returns
// an unusable response.
var ErrTranscriptionFailed = errors.New("transcribe: transcription failed")

// Transcriber converts recorded speech into text. An empty transcript is a
// valid result for a silent recording.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

var audioExtensions = map[string]string{
	"audio/m4a":   ".m4a",
	"audio/x-m4a": ".m4a",
	"audio/mp4":   ".m4a",
	"audio/aac":   ".m4a",
	"audio/mpeg":  ".mp3",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/webm":  ".webm",
	"audio/ogg":   ".ogg",
	"audio/flac":  ".flac",
}

// Filename returns a name for an uploaded recording whose extension
// identifies its format. name is kept when it already has an extension.
func Filename(name string, mediaType string) string {
	if name != "" {
		name = filepath.Base(name)
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "recording"
	}
	if filepath.Ext(name) != "" {
		return name
	}
	if ext, ok := audioExtensions[mediaType]; ok {
		return name + ext
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return name + exts[0]
	}
	return name + ".m4a"
}
