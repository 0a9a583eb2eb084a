// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package nonnaapiconnect has the Connect procedures and client of the Nonna
// recipe service.
package nonnaapiconnect

import (
	"encoding/json"
)

const RecipeServiceName = "nonna.RecipeService"

const (
	RecipeServiceTranscribeAudioProcedure  = "/nonna.RecipeService/TranscribeAudio"
	RecipeServiceStructureRecipeProcedure  = "/nonna.RecipeService/StructureRecipe"
	RecipeServiceProcessRecordingProcedure = "/nonna.RecipeService/ProcessRecording"
	RecipeServicePublishDraftProcedure     = "/nonna.RecipeService/PublishDraft"
	RecipeServiceAddRecipeProcedure        = "/nonna.RecipeService/AddRecipe"
	RecipeServiceGetRecipeProcedure        = "/nonna.RecipeService/GetRecipe"
	RecipeServiceListRecipesProcedure      = "/nonna.RecipeService/ListRecipes"
	RecipeServiceSearchRecipesProcedure    = "/nonna.RecipeService/SearchRecipes"
	RecipeServiceUploadPhotoProcedure      = "/nonna.RecipeService/UploadPhoto"
	RecipeServiceGeocodePlaceProcedure     = "/nonna.RecipeService/GeocodePlace"
)

// Codec encodes messages as plain JSON. It replaces Connect's default JSON
// codec, which only accepts protobuf messages.
type Codec struct{}

func (Codec) Name() string {
	return "json"
}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
