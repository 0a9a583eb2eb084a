// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package searchrecipes

import (
	"context"
	"fmt"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/search"
)

type Searcher interface {
	Search(text string, opts search.Options) ([]recipedb.Recipe, error)
}

func NewHandler(index Searcher) *Handler {
	return &Handler{
		index: index,
	}
}

type Handler struct {
	index Searcher
}

func (h *Handler) SearchRecipes(_ context.Context, req *nonnaapi.SearchRecipesRequest) (*nonnaapi.SearchRecipesResponse, error) {
	region := req.Region
	if region != "" {
		region = recipedb.ParseRegion(string(region))
	}
	recipes, err := h.index.Search(req.Query, search.Options{
		Region: region,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("searchrecipes: %w", err)
	}
	return &nonnaapi.SearchRecipesResponse{
		Recipes: recipes,
	}, nil
}
