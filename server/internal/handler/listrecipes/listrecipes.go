// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package listrecipes

import (
	"context"
	"fmt"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
	"github.com/curioswitch/nonna/server/internal/auth"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Lister interface {
	List(ctx context.Context, opts recipestore.ListOptions) ([]recipedb.Recipe, error)
}

func NewHandler(store Lister) *Handler {
	return &Handler{
		store: store,
	}
}

type Handler struct {
	store Lister
}

func (h *Handler) ListRecipes(ctx context.Context, req *nonnaapi.ListRecipesRequest) (*nonnaapi.ListRecipesResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	if req.Mine {
		uid, err := auth.RequireUserID(ctx)
		if err != nil {
			return nil, err
		}
		recipes, err := h.store.List(ctx, recipestore.ListOptions{CreatedBy: uid, Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("listrecipes: %w", err)
		}
		return &nonnaapi.ListRecipesResponse{Recipes: recipes}, nil
	}

	// Private recipes are filtered after the query so the limit can't be
	// applied by the store.
	all, err := h.store.List(ctx, recipestore.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listrecipes: %w", err)
	}
	uid := auth.UserID(ctx)
	recipes := make([]recipedb.Recipe, 0, min(len(all), limit))
	for _, r := range all {
		if r.Visibility == recipedb.VisibilityPrivate && r.CreatedBy != uid {
			continue
		}
		recipes = append(recipes, r)
		if len(recipes) == limit {
			break
		}
	}
	return &nonnaapi.ListRecipesResponse{
		Recipes: recipes,
	}, nil
}
