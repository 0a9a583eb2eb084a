// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/curioswitch/nonna/api/go/nonnaapiconnect"
	"github.com/curioswitch/nonna/common/file"
	"github.com/curioswitch/nonna/common/geocode"
	"github.com/curioswitch/nonna/common/image"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
	"github.com/curioswitch/nonna/common/structure"
	"github.com/curioswitch/nonna/common/transcribe"
)

var (
	errTranscription = errors.New("could not transcribe the recording, please try again")
	errStructuring   = errors.New("could not turn the transcript into a recipe, please try again")
	errRateLimited   = errors.New("too many location lookups, please try again shortly")
	errInternal      = errors.New("internal error")
)

// Mux is where handlers are mounted.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Handle mounts a unary handler for procedure, with messages encoded as JSON.
func Handle[Req, Res any](mux Mux, procedure string, fn func(context.Context, *Req) (*Res, error)) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			res, err := fn(ctx, req.Msg)
			if err != nil {
				return nil, Error(ctx, procedure, err)
			}
			return connect.NewResponse(res), nil
		},
		connect.WithCodec(nonnaapiconnect.Codec{}),
	))
}

// Error converts a handler error into a Connect error with a code matching
// its cause.
func Error(ctx context.Context, procedure string, err error) error {
	var cErr *connect.Error
	if errors.As(err, &cErr) {
		return cErr
	}

	switch {
	case errors.Is(err, recipedb.ErrValidationFailed),
		errors.Is(err, file.ErrInvalidDataURL),
		errors.Is(err, image.ErrUnsupportedType):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, recipestore.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, recipestore.ErrNotFound)
	case errors.Is(err, transcribe.ErrTranscriptionFailed):
		slog.WarnContext(ctx, "rpc: transcription failed", "procedure", procedure, "error", err)
		return connect.NewError(connect.CodeUnavailable, errTranscription)
	case errors.Is(err, structure.ErrStructuringFailed):
		slog.WarnContext(ctx, "rpc: structuring failed", "procedure", procedure, "error", err)
		return connect.NewError(connect.CodeUnavailable, errStructuring)
	case errors.Is(err, geocode.ErrRateLimited):
		return connect.NewError(connect.CodeResourceExhausted, errRateLimited)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	slog.ErrorContext(ctx, "rpc: unhandled error", "procedure", procedure, "error", err)
	return connect.NewError(connect.CodeInternal, errInternal)
}
