// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package getrecipe

import (
	"context"
	"fmt"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
	"github.com/curioswitch/nonna/server/internal/auth"
)

type Getter interface {
	Get(ctx context.Context, id string) (recipedb.Recipe, error)
}

func NewHandler(store Getter) *Handler {
	return &Handler{
		store: store,
	}
}

type Handler struct {
	store Getter
}

func (h *Handler) GetRecipe(ctx context.Context, req *nonnaapi.GetRecipeRequest) (*nonnaapi.GetRecipeResponse, error) {
	recipe, err := h.store.Get(ctx, req.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("getrecipe: %w", err)
	}
	// Private recipes of other users are indistinguishable from missing ones.
	if recipe.Visibility == recipedb.VisibilityPrivate && recipe.CreatedBy != auth.UserID(ctx) {
		return nil, fmt.Errorf("getrecipe: recipe %s: %w", req.RecipeID, recipestore.ErrNotFound)
	}
	recipe.Steps = recipe.SortedSteps()
	return &nonnaapi.GetRecipeResponse{
		Recipe: recipe,
	}, nil
}
