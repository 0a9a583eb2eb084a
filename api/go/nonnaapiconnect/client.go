// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package nonnaapiconnect

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	nonnaapi "github.com/curioswitch/nonna/api/go"
)

// RecipeServiceClient calls the recipe service.
type RecipeServiceClient struct {
	processRecording *connect.Client[nonnaapi.ProcessRecordingRequest, nonnaapi.ProcessRecordingResponse]
	publishDraft     *connect.Client[nonnaapi.PublishDraftRequest, nonnaapi.PublishDraftResponse]
	getRecipe        *connect.Client[nonnaapi.GetRecipeRequest, nonnaapi.GetRecipeResponse]
	listRecipes      *connect.Client[nonnaapi.ListRecipesRequest, nonnaapi.ListRecipesResponse]
}

func NewRecipeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *RecipeServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &RecipeServiceClient{
		processRecording: connect.NewClient[nonnaapi.ProcessRecordingRequest, nonnaapi.ProcessRecordingResponse](
			httpClient, baseURL+RecipeServiceProcessRecordingProcedure, opts...),
		publishDraft: connect.NewClient[nonnaapi.PublishDraftRequest, nonnaapi.PublishDraftResponse](
			httpClient, baseURL+RecipeServicePublishDraftProcedure, opts...),
		getRecipe: connect.NewClient[nonnaapi.GetRecipeRequest, nonnaapi.GetRecipeResponse](
			httpClient, baseURL+RecipeServiceGetRecipeProcedure, opts...),
		listRecipes: connect.NewClient[nonnaapi.ListRecipesRequest, nonnaapi.ListRecipesResponse](
			httpClient, baseURL+RecipeServiceListRecipesProcedure, opts...),
	}
}

func (c *RecipeServiceClient) ProcessRecording(ctx context.Context, req *nonnaapi.ProcessRecordingRequest) (*nonnaapi.ProcessRecordingResponse, error) {
	res, err := c.processRecording.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *RecipeServiceClient) PublishDraft(ctx context.Context, req *nonnaapi.PublishDraftRequest) (*nonnaapi.PublishDraftResponse, error) {
	res, err := c.publishDraft.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *RecipeServiceClient) GetRecipe(ctx context.Context, req *nonnaapi.GetRecipeRequest) (*nonnaapi.GetRecipeResponse, error) {
	res, err := c.getRecipe.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *RecipeServiceClient) ListRecipes(ctx context.Context, req *nonnaapi.ListRecipesRequest) (*nonnaapi.ListRecipesResponse, error) {
	res, err := c.listRecipes.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

// WithBearerToken authenticates every call with a Firebase ID token.
func WithBearerToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}))
}
