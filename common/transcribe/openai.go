// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package transcribe

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAI transcribes with the Whisper model. Each call issues exactly one
// request.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI returns an OpenAI transcriber. Options are passed through to the
// SDK, e.g. option.WithAPIKey or option.WithBaseURL.
func NewOpenAI(opts ...option.RequestOption) *OpenAI {
	opts = append(opts, option.WithMaxRetries(0))
	return &OpenAI{
		client: openai.NewClient(opts...),
	}
}

func (o *OpenAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	res, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, audioContentType(filename)),
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: whisper request for %s: %w", ErrTranscriptionFailed, filename, err)
	}
	if !res.JSON.Text.Valid() {
		return "", fmt.Errorf("%w: whisper response for %s has no text", ErrTranscriptionFailed, filename)
	}
	return res.Text, nil
}

func audioContentType(filename string) string {
	ext := filepath.Ext(filename)
	if ext == ".m4a" {
		return "audio/m4a"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
