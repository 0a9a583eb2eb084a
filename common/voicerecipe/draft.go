// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package voicerecipe

import (
	"strings"

	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/structure"
)

// UntitledRecipe is the title used when neither the draft nor the user gave one.
const UntitledRecipe = "Untitled Recipe"

// PublishOptions are the fields of a recipe that come from the user rather
// than the recording.
type PublishOptions struct {
	CreatedBy  string              `json:"createdBy"`
	Visibility recipedb.Visibility `json:"visibility"`
	Origin     recipedb.Origin     `json:"origin"`
	PhotoURL   string              `json:"photoUrl"`

	// Title replaces the draft title when set.
	Title string `json:"title"`

	// Tags are added to the draft tags.
	Tags []string `json:"tags"`
}

// DraftToInput maps a draft onto recipe input. Notes and tips are copied
// verbatim so inferred content stays marked.
func DraftToInput(draft *structure.Draft, opts PublishOptions) recipedb.Input {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = strings.TrimSpace(draft.Title)
	}
	if title == "" {
		title = UntitledRecipe
	}

	var desc []string
	if s := strings.TrimSpace(draft.CulturalBackground); s != "" {
		desc = append(desc, s)
	}
	if s := strings.TrimSpace(draft.FlexibilityNotes); s != "" {
		desc = append(desc, s)
	}

	in := recipedb.Input{
		Title:            title,
		CreatedBy:        opts.CreatedBy,
		Visibility:       opts.Visibility,
		Origin:           opts.Origin,
		Description:      strings.Join(desc, "\n\n"),
		Region:           recipedb.ParseRegion(draft.RegionOfOrigin),
		Tags:             append(append([]string{}, draft.Tags...), opts.Tags...),
		Ingredients:      make([]recipedb.Ingredient, len(draft.Ingredients)),
		Steps:            make([]recipedb.StepInput, len(draft.Steps)),
		Story:            draft.Memory,
		Storyteller:      draft.Storyteller,
		LanguageDetected: draft.LanguageDetected,
		PhotoURL:         opts.PhotoURL,
	}

	for i, ing := range draft.Ingredients {
		in.Ingredients[i] = recipedb.Ingredient{
			Item:        ing.Item,
			Amount:      ing.Amount,
			Preparation: ing.Preparation,
			Note:        ing.Note,
		}
	}
	for i, s := range draft.Steps {
		step := recipedb.StepInput{
			Instruction: s.Instruction,
			Tip:         s.Tip,
			Note:        s.Note,
		}
		if s.Step > 0 {
			n := s.Step
			step.Step = &n
		}
		in.Steps[i] = step
	}

	return in
}
