// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package addrecipe

import (
	"context"
	"fmt"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/server/internal/auth"
)

type Creator interface {
	Create(ctx context.Context, in recipedb.Input) (string, error)
}

type ImageWriter interface {
	WriteDataURL(ctx context.Context, prefix string, dataURL string) (string, error)
}

func NewHandler(creator Creator, images ImageWriter) *Handler {
	return &Handler{
		creator: creator,
		images:  images,
	}
}

type Handler struct {
	creator Creator
	images  ImageWriter
}

func (h *Handler) AddRecipe(ctx context.Context, req *nonnaapi.AddRecipeRequest) (*nonnaapi.AddRecipeResponse, error) {
	uid, err := auth.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}

	in := req.Recipe
	in.CreatedBy = uid
	if _, err := recipedb.Prepare(in); err != nil {
		return nil, fmt.Errorf("addrecipe: %w", err)
	}

	if req.MainImageDataURL != "" {
		url, err := h.images.WriteDataURL(ctx, "photos/"+uid, req.MainImageDataURL)
		if err != nil {
			return nil, fmt.Errorf("addrecipe: saving main image: %w", err)
		}
		in.PhotoURL = url
	}

	id, err := h.creator.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("addrecipe: %w", err)
	}
	return &nonnaapi.AddRecipeResponse{
		RecipeID: id,
	}, nil
}
