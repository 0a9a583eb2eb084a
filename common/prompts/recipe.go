// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package prompts

import (
	"fmt"
)

// StructureRecipe renders the prompt that turns a spoken recipe transcript
// into a structured recipe draft. metadataJSON is a JSON object with any
// extra context known about the recording, e.g. the app language.
func StructureRecipe(transcript string, metadataJSON string) string {
	if metadataJSON == "" {
		metadataJSON = "{}"
	}
	return fmt.Sprintf(structureRecipe, transcript, metadataJSON)
}

const structureRecipe = `
# Role & Objective

You are helping preserve a family recipe shared through voice. The speaker may be an elder who cooks from memory
and uses vague measurements. Preserve their voice and personality in the recipe.

# Input

Transcript: "%s"
Additional context: %s

# Instructions / Rules

- Keep dish names, ingredient names and cooking terms in the language the speaker used. Follow each one with a short
  English gloss in parentheses the first time it appears, for example "sofrito (slow-cooked onion and tomato base)".
- Convert vague quantities to concrete measurements. Give a volume and, when it can be reasonably inferred, a weight,
  for example "a handful of rice" -> "1/2 cup (about 100 g)". When a phrase could mean several amounts, pick the
  smaller common household amount and keep the speaker's phrase in the ingredient note.
- Every ingredient or step you add that the speaker did not say must have a note starting with "Inferred", for example
  "Inferred: salt is needed for the dough to rise properly". Never mark something the speaker said as inferred.
- Put the speaker's own words about a step in the step tip when they are meaningful, e.g. "stir until it looks like sand".
- Number steps starting at 1 in the order they should be done.
- Put any personal story about the dish in memory, and who shared it in storyteller.
- region_of_origin must be one of Asia, Europe, Africa, Americas, Middle East or Other.
- Set language_detected to the ISO 639-1 code of the language spoken in the transcript.
- If something was not mentioned and cannot be inferred, use an empty string or empty list.

# Output

Return ONLY a JSON object with no markdown or backticks:
{
  "title": "recipe name",
  "storyteller": "who shared this",
  "memory": "any personal story attached to this dish",
  "cultural_background": "cuisine or cultural origin",
  "region_of_origin": "geographic region",
  "yield": "how many servings",
  "prep_time": "preparation time",
  "cook_time": "cooking time",
  "difficulty": "easy, medium or hard",
  "equipment": ["pots, pans and tools"],
  "ingredients": [
    { "item": "", "amount": "", "preparation": "", "note": "" }
  ],
  "steps": [
    { "step": 1, "instruction": "", "tip": "", "note": "" }
  ],
  "flexibility_notes": "how the recipe can be adjusted to taste",
  "tags": ["short labels"],
  "language_detected": "en"
}
`

const VerStructureRecipe = 1
