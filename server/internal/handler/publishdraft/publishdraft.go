// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package publishdraft

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/structure"
	"github.com/curioswitch/nonna/common/voicerecipe"
	"github.com/curioswitch/nonna/server/internal/auth"
)

var errMissingDraft = errors.New("draft is required")

type Publisher interface {
	Publish(ctx context.Context, draft *structure.Draft, opts voicerecipe.PublishOptions) (string, error)
}

type ImageWriter interface {
	WriteDataURL(ctx context.Context, prefix string, dataURL string) (string, error)
}

func NewHandler(publisher Publisher, images ImageWriter) *Handler {
	return &Handler{
		publisher: publisher,
		images:    images,
	}
}

type Handler struct {
	publisher Publisher
	images    ImageWriter
}

func (h *Handler) PublishDraft(ctx context.Context, req *nonnaapi.PublishDraftRequest) (*nonnaapi.PublishDraftResponse, error) {
	uid, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if req.Draft == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingDraft)
	}

	opts := voicerecipe.PublishOptions{
		CreatedBy:  uid,
		Visibility: req.Visibility,
		Origin:     req.Origin,
		Title:      req.Title,
		Tags:       req.Tags,
	}
	if _, err := recipedb.Prepare(voicerecipe.DraftToInput(req.Draft, opts)); err != nil {
		return nil, fmt.Errorf("publishdraft: %w", err)
	}

	if req.PhotoDataURL != "" {
		opts.PhotoURL, err = h.images.WriteDataURL(ctx, "photos/"+uid, req.PhotoDataURL)
		if err != nil {
			return nil, fmt.Errorf("publishdraft: saving photo: %w", err)
		}
	}

	id, err := h.publisher.Publish(ctx, req.Draft, opts)
	if err != nil {
		return nil, fmt.Errorf("publishdraft: %w", err)
	}
	return &nonnaapi.PublishDraftResponse{
		RecipeID: id,
	}, nil
}
