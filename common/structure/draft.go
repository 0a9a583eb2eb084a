// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package structure

import (
	"strings"

	"google.golang.org/genai"
)

// Ingredient is an ingredient as returned by the model.
type Ingredient struct {
	Item        string `json:"item"`
	Amount      string `json:"amount"`
	Preparation string `json:"preparation"`
	Note        string `json:"note"`
}

// Step is a step as returned by the model.
type Step struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
	Tip         string `json:"tip"`
	Note        string `json:"note"`
}

// Draft is a structured recipe produced from a transcript. It is reviewed by
// the user before being published as a recipe.
type Draft struct {
	Title              string       `json:"title"`
	Storyteller        string       `json:"storyteller"`
	Memory             string       `json:"memory"`
	CulturalBackground string       `json:"cultural_background"`
	RegionOfOrigin     string       `json:"region_of_origin"`
	Yield              string       `json:"yield"`
	PrepTime           string       `json:"prep_time"`
	CookTime           string       `json:"cook_time"`
	Difficulty         string       `json:"difficulty"`
	Equipment          []string     `json:"equipment"`
	Ingredients        []Ingredient `json:"ingredients"`
	Steps              []Step       `json:"steps"`
	FlexibilityNotes   string       `json:"flexibility_notes"`
	Tags               []string     `json:"tags"`
	LanguageDetected   string       `json:"language_detected"`
}

// IsInferred returns whether a note marks content the model added itself.
func IsInferred(note string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(note)), "inferred")
}

var draftIngredientsSchema = &genai.Schema{
	Type:        "array",
	Description: "The ingredients of the recipe.",
	Items: &genai.Schema{
		Type:        "object",
		Description: "An ingredient in the recipe.",
		Properties: map[string]*genai.Schema{
			"item": {
				Type:        "string",
				Description: "The name of the ingredient, with an English gloss if not in English.",
			},
			"amount": {
				Type:        "string",
				Description: "The concrete amount, a volume and an inferred weight where possible.",
			},
			"preparation": {
				Type:        "string",
				Description: "How the ingredient is prepared.",
			},
			"note": {
				Type:        "string",
				Description: "A note, starting with Inferred if the speaker did not mention the ingredient.",
			},
		},
		Required: []string{"item", "amount"},
	},
}

var draftStepsSchema = &genai.Schema{
	Type:        "array",
	Description: "The steps of the recipe in order.",
	Items: &genai.Schema{
		Type:        "object",
		Description: "A step in the recipe.",
		Properties: map[string]*genai.Schema{
			"step": {
				Type:        "integer",
				Description: "The 1-based number of the step.",
			},
			"instruction": {
				Type:        "string",
				Description: "The instruction for the step.",
			},
			"tip": {
				Type:        "string",
				Description: "The speaker's own words about the step.",
			},
			"note": {
				Type:        "string",
				Description: "A note, starting with Inferred if the speaker did not describe the step.",
			},
		},
		Required: []string{"step", "instruction"},
	},
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        "array",
		Description: description,
		Items:       &genai.Schema{Type: "string"},
	}
}

func stringField(description string) *genai.Schema {
	return &genai.Schema{
		Type:        "string",
		Description: description,
	}
}

// DraftSchema constrains the model response to a Draft.
var DraftSchema = &genai.Schema{
	Type:        "object",
	Description: "A family recipe structured from a voice recording.",
	Required:    []string{"title", "ingredients", "steps"},
	Properties: map[string]*genai.Schema{
		"title":               stringField("The name of the recipe."),
		"storyteller":         stringField("Who shared the recipe."),
		"memory":              stringField("Any personal story attached to the dish."),
		"cultural_background": stringField("The cuisine or cultural origin."),
		"region_of_origin":    stringField("One of Asia, Europe, Africa, Americas, Middle East or Other."),
		"yield":               stringField("How many servings the recipe makes."),
		"prep_time":           stringField("The preparation time."),
		"cook_time":           stringField("The cooking time."),
		"difficulty":          stringField("easy, medium or hard."),
		"equipment":           stringList("Pots, pans and tools needed."),
		"ingredients":         draftIngredientsSchema,
		"steps":               draftStepsSchema,
		"flexibility_notes":   stringField("How the recipe can be adjusted to taste."),
		"tags":                stringList("Short labels for the recipe."),
		"language_detected":   stringField("ISO 639-1 code of the spoken language."),
	},
}
