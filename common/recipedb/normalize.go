// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrValidationFailed is returned when a recipe is missing a required field.
var ErrValidationFailed = errors.New("recipedb: validation failed")

// StepInput is a step as provided by a caller. Step may be nil, in which case
// the position in the list is used.
type StepInput struct {
	Step        *int   `json:"step,omitempty"`
	Instruction string `json:"instruction"`
	Tip         string `json:"tip,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Input is the caller-provided content of a new recipe. Everything except the
// required fields may be left empty.
type Input struct {
	Title       string       `json:"title"`
	CreatedBy   string       `json:"createdBy"`
	Visibility  Visibility   `json:"visibility"`
	Origin      Origin       `json:"origin"`
	Description string       `json:"description"`
	Region      Region       `json:"region"`
	Tags        []string     `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []StepInput  `json:"steps"`
	Story       string       `json:"story"`
	Storyteller string       `json:"storyteller"`

	LanguageDetected string `json:"languageDetected"`
	PhotoURL         string `json:"photoUrl"`
}

// Normalize fills defaults and trims an Input into a Recipe without an ID or
// timestamps. Notes and tips are copied verbatim.
func Normalize(in Input) Recipe {
	r := Recipe{
		Title:       strings.TrimSpace(in.Title),
		CreatedBy:   strings.TrimSpace(in.CreatedBy),
		Visibility:  normalizeVisibility(in.Visibility),
		Origin:      normalizeOrigin(in.Origin),
		Description: strings.TrimSpace(in.Description),
		Region:      normalizeRegion(in.Region),
		Tags:        []string{},
		Ingredients: make([]Ingredient, len(in.Ingredients)),
		Steps:       make([]Step, len(in.Steps)),
		Story:       strings.TrimSpace(in.Story),
		Storyteller: strings.TrimSpace(in.Storyteller),

		LanguageDetected: strings.TrimSpace(in.LanguageDetected),
		PhotoURL:         strings.TrimSpace(in.PhotoURL),
	}

	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			r.Tags = append(r.Tags, tag)
		}
	}

	for i, ing := range in.Ingredients {
		r.Ingredients[i] = Ingredient{
			Item:        strings.TrimSpace(ing.Item),
			Amount:      ing.Amount,
			Preparation: ing.Preparation,
			Note:        ing.Note,
		}
	}

	for i, s := range in.Steps {
		num := i + 1
		if s.Step != nil {
			num = *s.Step
		}
		r.Steps[i] = Step{
			Step:        num,
			Instruction: strings.TrimSpace(s.Instruction),
			Tip:         s.Tip,
			Note:        s.Note,
		}
	}

	return r
}

// Validate checks the fields required to create a recipe.
func Validate(r *Recipe) error {
	switch {
	case r.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidationFailed)
	case r.CreatedBy == "":
		return fmt.Errorf("%w: createdBy is required", ErrValidationFailed)
	case r.Origin.Name == "":
		return fmt.Errorf("%w: origin.name is required", ErrValidationFailed)
	case r.Origin.CountryCode == "":
		return fmt.Errorf("%w: origin.countryCode is required", ErrValidationFailed)
	}
	return nil
}

// Prepare normalizes and validates an Input. Stores call it before any
// network access so callers get validation errors immediately.
func Prepare(in Input) (Recipe, error) {
	r := Normalize(in)
	if err := Validate(&r); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

func normalizeVisibility(v Visibility) Visibility {
	if v == VisibilityPrivate {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

func normalizeRegion(r Region) Region {
	for _, known := range AllRegions {
		if r == known {
			return r
		}
	}
	if r == "" {
		return RegionOther
	}
	return ParseRegion(string(r))
}

func normalizeOrigin(o Origin) Origin {
	return Origin{
		Name:        strings.TrimSpace(o.Name),
		CountryCode: strings.ToUpper(strings.TrimSpace(o.CountryCode)),
		Lat:         finiteOrNil(o.Lat),
		Lng:         finiteOrNil(o.Lng),
	}
}

func finiteOrNil(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	v := *f
	return &v
}
