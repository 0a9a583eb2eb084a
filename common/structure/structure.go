// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package structure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/curioswitch/nonna/common/prompts"
)

// ErrStructuringFailed is returned when the model call fails or its output is
// not a JSON recipe draft.
var ErrStructuringFailed = errors.New("structure: structuring failed")

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Client structures transcripts into recipe drafts with a generative model.
type Client struct {
	genAI *genai.Client
	model string
}

func NewClient(genAI *genai.Client, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		genAI: genAI,
		model: model,
	}
}

// Structure turns a transcript into a Draft. metadata is passed to the model
// as additional context and may be nil.
func (c *Client) Structure(ctx context.Context, transcript string, metadata map[string]any) (*Draft, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("structure: marshalling metadata: %w", err)
	}

	res, err := c.genAI.Models.GenerateContent(ctx, c.model, genai.Text(prompts.StructureRecipe(transcript, string(metadataJSON))), &genai.GenerateContentConfig{
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		ResponseSchema:   DraftSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating draft: %w", ErrStructuringFailed, err)
	}
	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: no text in model response", ErrStructuringFailed)
	}

	return ParseDraft(text)
}

// ParseDraft parses model output into a Draft, tolerating a surrounding
// markdown code fence.
func ParseDraft(text string) (*Draft, error) {
	var draft Draft
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &draft); err != nil {
		return nil, fmt.Errorf("%w: unmarshalling draft: %w", ErrStructuringFailed, err)
	}
	return &draft, nil
}

// StripCodeFence removes a leading ``` or ```json marker and a trailing ```
// marker along with surrounding whitespace.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = strings.TrimPrefix(rest, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
