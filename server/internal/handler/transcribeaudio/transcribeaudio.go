// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package transcribeaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"connectrpc.com/connect"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/file"
	"github.com/curioswitch/nonna/common/transcribe"
	"github.com/curioswitch/nonna/server/internal/auth"
)

var errEmptyRecording = errors.New("recording is empty")

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

func NewHandler(transcriber Transcriber) *Handler {
	return &Handler{
		transcriber: transcriber,
	}
}

type Handler struct {
	transcriber Transcriber
}

func (h *Handler) TranscribeAudio(ctx context.Context, req *nonnaapi.TranscribeAudioRequest) (*nonnaapi.TranscribeAudioResponse, error) {
	if _, err := auth.RequireUserID(ctx); err != nil {
		return nil, err
	}

	mediaType, data, err := file.ParseDataURL(req.AudioDataURL)
	if err != nil {
		return nil, fmt.Errorf("transcribeaudio: %w", err)
	}
	if len(data) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyRecording)
	}

	transcript, err := h.transcriber.Transcribe(ctx, transcribe.Filename(req.Filename, mediaType), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("transcribeaudio: %w", err)
	}
	return &nonnaapi.TranscribeAudioResponse{
		Transcript: transcript,
	}, nil
}
