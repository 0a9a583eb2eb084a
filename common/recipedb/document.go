// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import "time"

// OriginDocument is the stored form of Origin.
type OriginDocument struct {
	Name        string   `firestore:"name" bson:"name"`
	CountryCode string   `firestore:"countryCode" bson:"countryCode"`
	Lat         *float64 `firestore:"lat" bson:"lat"`
	Lng         *float64 `firestore:"lng" bson:"lng"`
}

// IngredientDocument is the stored form of Ingredient.
type IngredientDocument struct {
	Item        string `firestore:"item" bson:"item"`
	Amount      string `firestore:"amount" bson:"amount"`
	Preparation string `firestore:"preparation" bson:"preparation"`
	Note        string `firestore:"note" bson:"note"`
}

// StepDocument is the stored form of Step. Older documents may lack a step
// number.
type StepDocument struct {
	Step        *int64 `firestore:"step" bson:"step"`
	Instruction string `firestore:"instruction" bson:"instruction"`
	Tip         string `firestore:"tip" bson:"tip"`
	Note        string `firestore:"note" bson:"note"`
}

// Document is a recipe as stored in the document store. Documents written by
// older clients or by hand may be incomplete, so a Document is only ever
// converted to a Recipe through Recipe, which applies the same normalization
// as new recipes.
type Document struct {
	Title       string               `firestore:"title" bson:"title"`
	CreatedBy   string               `firestore:"createdBy" bson:"createdBy"`
	Visibility  string               `firestore:"visibility" bson:"visibility"`
	Origin      OriginDocument       `firestore:"origin" bson:"origin"`
	Description string               `firestore:"description" bson:"description"`
	Region      string               `firestore:"region" bson:"region"`
	Tags        []string             `firestore:"tags" bson:"tags"`
	Ingredients []IngredientDocument `firestore:"ingredients" bson:"ingredients"`
	Steps       []StepDocument       `firestore:"steps" bson:"steps"`
	Story       string               `firestore:"story" bson:"story"`

	Storyteller      string `firestore:"storyteller,omitempty" bson:"storyteller,omitempty"`
	LanguageDetected string `firestore:"languageDetected,omitempty" bson:"languageDetected,omitempty"`
	PhotoURL         string `firestore:"photoUrl,omitempty" bson:"photoUrl,omitempty"`

	// Zero timestamps are replaced with the server time on write to Firestore.
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" bson:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp" bson:"updatedAt"`
}

// NewDocument returns the stored form of a normalized recipe.
func NewDocument(r *Recipe) *Document {
	d := &Document{
		Title:       r.Title,
		CreatedBy:   r.CreatedBy,
		Visibility:  string(r.Visibility),
		Description: r.Description,
		Region:      string(r.Region),
		Tags:        r.Tags,
		Ingredients: make([]IngredientDocument, len(r.Ingredients)),
		Steps:       make([]StepDocument, len(r.Steps)),
		Story:       r.Story,
		Origin: OriginDocument{
			Name:        r.Origin.Name,
			CountryCode: r.Origin.CountryCode,
			Lat:         r.Origin.Lat,
			Lng:         r.Origin.Lng,
		},

		Storyteller:      r.Storyteller,
		LanguageDetected: r.LanguageDetected,
		PhotoURL:         r.PhotoURL,

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	for i, ing := range r.Ingredients {
		d.Ingredients[i] = IngredientDocument(ing)
	}
	for i, s := range r.Steps {
		num := int64(s.Step)
		d.Steps[i] = StepDocument{
			Step:        &num,
			Instruction: s.Instruction,
			Tip:         s.Tip,
			Note:        s.Note,
		}
	}
	return d
}

// Recipe normalizes the document into a Recipe with the given ID.
func (d *Document) Recipe(id string) Recipe {
	in := Input{
		Title:       d.Title,
		CreatedBy:   d.CreatedBy,
		Visibility:  Visibility(d.Visibility),
		Description: d.Description,
		Region:      Region(d.Region),
		Tags:        d.Tags,
		Ingredients: make([]Ingredient, len(d.Ingredients)),
		Steps:       make([]StepInput, len(d.Steps)),
		Story:       d.Story,
		Storyteller: d.Storyteller,
		Origin: Origin{
			Name:        d.Origin.Name,
			CountryCode: d.Origin.CountryCode,
			Lat:         d.Origin.Lat,
			Lng:         d.Origin.Lng,
		},

		LanguageDetected: d.LanguageDetected,
		PhotoURL:         d.PhotoURL,
	}
	for i, ing := range d.Ingredients {
		in.Ingredients[i] = Ingredient(ing)
	}
	for i, s := range d.Steps {
		in.Steps[i] = StepInput{
			Instruction: s.Instruction,
			Tip:         s.Tip,
			Note:        s.Note,
		}
		if s.Step != nil {
			num := int(*s.Step)
			in.Steps[i].Step = &num
		}
	}

	r := Normalize(in)
	r.ID = id
	r.CreatedAt = d.CreatedAt
	r.UpdatedAt = d.UpdatedAt
	return r
}
