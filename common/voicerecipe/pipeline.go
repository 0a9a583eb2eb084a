// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package voicerecipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/curioswitch/nonna/common/geocode"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/structure"
	"github.com/curioswitch/nonna/common/transcribe"
)

type Structurer interface {
	Structure(ctx context.Context, transcript string, metadata map[string]any) (*structure.Draft, error)
}

type Creator interface {
	Create(ctx context.Context, in recipedb.Input) (string, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, place string, countryCode string) (*geocode.LatLng, error)
}

// Result is the output of processing a recording.
type Result struct {
	Transcript string           `json:"transcript"`
	Draft      *structure.Draft `json:"draft"`
}

// Pipeline turns recordings into drafts and drafts into stored recipes.
type Pipeline struct {
	transcriber transcribe.Transcriber
	structurer  Structurer
	store       Creator
	geocoder    Geocoder
}

// NewPipeline returns a Pipeline. geocoder may be nil, in which case
// published recipes are stored without coordinates and left to background
// reconciliation.
func NewPipeline(transcriber transcribe.Transcriber, structurer Structurer, store Creator, geocoder Geocoder) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		structurer:  structurer,
		store:       store,
		geocoder:    geocoder,
	}
}

// Transcribe runs only the transcription stage.
func (p *Pipeline) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	transcript, err := p.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		return "", fmt.Errorf("voicerecipe: transcribing %s: %w", filename, err)
	}
	return transcript, nil
}

// Structure runs only the structuring stage.
func (p *Pipeline) Structure(ctx context.Context, transcript string, metadata map[string]any) (*structure.Draft, error) {
	draft, err := p.structurer.Structure(ctx, transcript, metadata)
	if err != nil {
		return nil, fmt.Errorf("voicerecipe: structuring transcript: %w", err)
	}
	return draft, nil
}

// Process transcribes a recording and structures the transcript into a draft.
// Errors wrap transcribe.ErrTranscriptionFailed or
// structure.ErrStructuringFailed depending on the failed stage.
func (p *Pipeline) Process(ctx context.Context, filename string, audio io.Reader, metadata map[string]any) (*Result, error) {
	transcript, err := p.Transcribe(ctx, filename, audio)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "voicerecipe: transcribed recording", "file", filename, "chars", len(transcript))

	draft, err := p.Structure(ctx, transcript, metadata)
	if err != nil {
		return nil, err
	}

	return &Result{
		Transcript: transcript,
		Draft:      draft,
	}, nil
}

// Publish stores a reviewed draft as a recipe and returns its ID.
func (p *Pipeline) Publish(ctx context.Context, draft *structure.Draft, opts PublishOptions) (string, error) {
	return p.Create(ctx, DraftToInput(draft, opts))
}

// Create stores a recipe and returns its ID. The origin is geocoded first
// when possible, a failure there does not fail the create. Invalid input is
// rejected before any geocoding.
func (p *Pipeline) Create(ctx context.Context, in recipedb.Input) (string, error) {
	if _, err := recipedb.Prepare(in); err != nil {
		return "", fmt.Errorf("voicerecipe: creating recipe: %w", err)
	}

	if p.geocoder != nil && !in.Origin.HasCoords() && in.Origin.HasPlace() {
		ll, err := p.geocoder.Geocode(ctx, in.Origin.Name, in.Origin.CountryCode)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "voicerecipe: geocoding origin, leaving for reconciliation", "place", in.Origin.Name, "error", err)
		case ll != nil:
			in.Origin.Lat = &ll.Lat
			in.Origin.Lng = &ll.Lng
		}
	}

	id, err := p.store.Create(ctx, in)
	if err != nil {
		return "", fmt.Errorf("voicerecipe: creating recipe: %w", err)
	}
	return id, nil
}
