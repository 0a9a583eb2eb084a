// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package processrecording

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"connectrpc.com/connect"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/file"
	"github.com/curioswitch/nonna/common/transcribe"
	"github.com/curioswitch/nonna/common/voicerecipe"
	"github.com/curioswitch/nonna/server/internal/auth"
	"github.com/curioswitch/nonna/server/internal/i18n"
)

var errEmptyRecording = errors.New("recording is empty")

type Processor interface {
	Process(ctx context.Context, filename string, audio io.Reader, metadata map[string]any) (*voicerecipe.Result, error)
}

func NewHandler(processor Processor) *Handler {
	return &Handler{
		processor: processor,
	}
}

type Handler struct {
	processor Processor
}

func (h *Handler) ProcessRecording(ctx context.Context, req *nonnaapi.ProcessRecordingRequest) (*nonnaapi.ProcessRecordingResponse, error) {
	uid, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	mediaType, data, err := file.ParseDataURL(req.AudioDataURL)
	if err != nil {
		return nil, fmt.Errorf("processrecording: %w", err)
	}
	if len(data) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyRecording)
	}

	filename := transcribe.Filename(req.Filename, mediaType)
	res, err := h.processor.Process(ctx, filename, bytes.NewReader(data), i18n.Metadata(ctx, req.Metadata))
	if err != nil {
		return nil, fmt.Errorf("processrecording: %w", err)
	}
	slog.InfoContext(ctx, "processrecording: drafted recipe", "user", uid, "file", filename, "title", res.Draft.Title)

	return &nonnaapi.ProcessRecordingResponse{
		Transcript: res.Transcript,
		Draft:      res.Draft,
	}, nil
}
