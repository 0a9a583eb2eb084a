// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Collection is the name of the collection holding recipe documents.
const Collection = "recipes"

type Visibility string

const (
	// VisibilityPublic recipes are shown to everyone.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate recipes are only shown to their creator.
	VisibilityPrivate Visibility = "private"
)

type Region string

const (
	RegionAsia       Region = "Asia"
	RegionEurope     Region = "Europe"
	RegionAfrica     Region = "Africa"
	RegionAmericas   Region = "Americas"
	RegionMiddleEast Region = "Middle East"
	RegionOther      Region = "Other"
)

// AllRegions lists every region in display order.
var AllRegions = []Region{
	RegionAsia,
	RegionEurope,
	RegionAfrica,
	RegionAmericas,
	RegionMiddleEast,
	RegionOther,
}

// Origin is where a recipe comes from.
type Origin struct {
	// Name is the free-text place name, e.g. "Naples".
	Name string `json:"name"`

	// CountryCode is the two letter country code of the place, e.g. "IT".
	CountryCode string `json:"countryCode"`

	// Lat is the latitude of the place, nil until geocoded.
	Lat *float64 `json:"lat"`

	// Lng is the longitude of the place, nil until geocoded.
	Lng *float64 `json:"lng"`
}

// HasCoords returns whether both coordinates are known.
func (o Origin) HasCoords() bool {
	return o.Lat != nil && o.Lng != nil
}

// HasPlace returns whether the origin has enough text to be geocoded.
func (o Origin) HasPlace() bool {
	return o.Name != "" && o.CountryCode != ""
}

// Ingredient is an ingredient in a recipe.
type Ingredient struct {
	// Item is the name of the ingredient.
	Item string `json:"item"`

	// Amount is the quantity as display text, possibly with both a volume and
	// an inferred weight.
	Amount string `json:"amount,omitempty"`

	// Preparation is how the ingredient is prepared, e.g. "finely chopped".
	Preparation string `json:"preparation,omitempty"`

	// Note is a free-form note. Ingredients added by the structuring model
	// carry a note starting with "Inferred".
	Note string `json:"note,omitempty"`
}

// Step is a single instruction in a recipe.
type Step struct {
	// Step is the 1-based sequence number. Numbers are not necessarily
	// contiguous, display order is ascending by this field.
	Step int `json:"step"`

	// Instruction is the text of the step.
	Instruction string `json:"instruction"`

	// Tip preserves the storyteller's own words about the step.
	Tip string `json:"tip,omitempty"`

	// Note flags inferred steps.
	Note string `json:"note,omitempty"`
}

// Recipe is a normalized recipe as seen by the rest of the application.
type Recipe struct {
	// ID is assigned by the store on creation.
	ID string `json:"id"`

	Title       string     `json:"title"`
	CreatedBy   string     `json:"createdBy"`
	Visibility  Visibility `json:"visibility"`
	Origin      Origin     `json:"origin"`
	Description string     `json:"description"`
	Region      Region     `json:"region"`
	Tags        []string   `json:"tags"`

	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`

	// Story is the memory attached to the dish.
	Story string `json:"story"`

	// Storyteller is who shared the recipe, if known.
	Storyteller string `json:"storyteller,omitempty"`

	// LanguageDetected is the language the recipe was told in, if known.
	LanguageDetected string `json:"languageDetected,omitempty"`

	// PhotoURL is a public URL to a photo of the dish, if any.
	PhotoURL string `json:"photoUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SortedSteps returns the steps ordered by sequence number. Steps with equal
// numbers keep their stored order.
func (r *Recipe) SortedSteps() []Step {
	steps := slices.Clone(r.Steps)
	slices.SortStableFunc(steps, func(a, b Step) int {
		return cmp.Compare(a.Step, b.Step)
	})
	return steps
}

// ParseRegion maps free text such as a model's "region_of_origin" onto a
// Region, falling back to RegionOther.
func ParseRegion(s string) Region {
	key := strings.ToLower(s)
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if key == "" {
		return RegionOther
	}
	for _, r := range AllRegions {
		if strings.ToLower(strings.ReplaceAll(string(r), " ", "")) == key {
			return r
		}
	}
	switch {
	case strings.Contains(key, "middleeast"), strings.Contains(key, "levant"), strings.Contains(key, "persian"):
		return RegionMiddleEast
	case strings.Contains(key, "asia"):
		return RegionAsia
	case strings.Contains(key, "europe"):
		return RegionEurope
	case strings.Contains(key, "africa"):
		return RegionAfrica
	case strings.Contains(key, "america"), strings.Contains(key, "caribbean"):
		return RegionAmericas
	}
	return RegionOther
}
