// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package nonnaapi defines the messages of the Nonna recipe service.
package nonnaapi

import (
	"github.com/curioswitch/nonna/common/geocode"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/structure"
)

type TranscribeAudioRequest struct {
	// AudioDataURL is the recording as a base64 data URL.
	AudioDataURL string `json:"audioDataUrl"`

	// Filename is the name of the recording, used to detect its format.
	Filename string `json:"filename,omitempty"`
}

type TranscribeAudioResponse struct {
	Transcript string `json:"transcript"`
}

type StructureRecipeRequest struct {
	Transcript string `json:"transcript"`

	// Metadata is extra context for the model, e.g. the user's language.
	Metadata map[string]any `json:"metadata,omitempty"`
}

type StructureRecipeResponse struct {
	Draft *structure.Draft `json:"draft"`
}

type ProcessRecordingRequest struct {
	AudioDataURL string         `json:"audioDataUrl"`
	Filename     string         `json:"filename,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type ProcessRecordingResponse struct {
	Transcript string           `json:"transcript"`
	Draft      *structure.Draft `json:"draft"`
}

type PublishDraftRequest struct {
	Draft *structure.Draft `json:"draft"`

	// Title replaces the draft title when set.
	Title      string              `json:"title,omitempty"`
	Origin     recipedb.Origin     `json:"origin"`
	Visibility recipedb.Visibility `json:"visibility,omitempty"`
	Tags       []string            `json:"tags,omitempty"`

	// PhotoDataURL is an optional photo of the dish as a base64 data URL.
	PhotoDataURL string `json:"photoDataUrl,omitempty"`
}

type PublishDraftResponse struct {
	RecipeID string `json:"recipeId"`
}

type AddRecipeRequest struct {
	// Recipe is the recipe content. CreatedBy is ignored and set to the
	// caller.
	Recipe recipedb.Input `json:"recipe"`

	// MainImageDataURL is an optional photo of the dish as a base64 data URL.
	MainImageDataURL string `json:"mainImageDataUrl,omitempty"`
}

type AddRecipeResponse struct {
	RecipeID string `json:"recipeId"`
}

type GetRecipeRequest struct {
	RecipeID string `json:"recipeId"`
}

type GetRecipeResponse struct {
	Recipe recipedb.Recipe `json:"recipe"`
}

type ListRecipesRequest struct {
	// Mine restricts results to recipes created by the caller.
	Mine bool `json:"mine,omitempty"`

	Limit int `json:"limit,omitempty"`
}

type ListRecipesResponse struct {
	Recipes []recipedb.Recipe `json:"recipes"`
}

type SearchRecipesRequest struct {
	Query  string          `json:"query"`
	Region recipedb.Region `json:"region,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

type SearchRecipesResponse struct {
	Recipes []recipedb.Recipe `json:"recipes"`
}

type UploadPhotoRequest struct {
	DataURL string `json:"dataUrl"`
}

type UploadPhotoResponse struct {
	URL string `json:"url"`
}

type GeocodePlaceRequest struct {
	Place       string `json:"place"`
	CountryCode string `json:"countryCode,omitempty"`
}

type GeocodePlaceResponse struct {
	// Location is unset when nothing matched.
	Location *geocode.LatLng `json:"location,omitempty"`
}
