// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package uploadphoto

import (
	"context"
	"fmt"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/server/internal/auth"
)

type ImageWriter interface {
	WriteDataURL(ctx context.Context, prefix string, dataURL string) (string, error)
}

func NewHandler(images ImageWriter) *Handler {
	return &Handler{
		images: images,
	}
}

type Handler struct {
	images ImageWriter
}

func (h *Handler) UploadPhoto(ctx context.Context, req *nonnaapi.UploadPhotoRequest) (*nonnaapi.UploadPhotoResponse, error) {
	uid, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	url, err := h.images.WriteDataURL(ctx, "photos/"+uid, req.DataURL)
	if err != nil {
		return nil, fmt.Errorf("uploadphoto: %w", err)
	}
	return &nonnaapi.UploadPhotoResponse{
		URL: url,
	}, nil
}
