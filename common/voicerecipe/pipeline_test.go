// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package voicerecipe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/genai"

	"github.com/curioswitch/nonna/common/geocode"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
	"github.com/curioswitch/nonna/common/structure"
	"github.com/curioswitch/nonna/common/transcribe"
)

const spokenRecipe = "two cups flour, one egg, mix and bake at 350 for twenty minutes"

const modelDraft = "```json\n" + `{
  "title": "Simple Cake",
  "storyteller": "Grandma",
  "memory": "She baked it for every birthday.",
  "cultural_background": "American home baking",
  "region_of_origin": "americas",
  "ingredients": [
    {"item": "flour", "amount": "2 cups (250 g)"},
    {"item": "egg", "amount": "1"},
    {"item": "butter", "amount": "2 tbsp (28 g)", "note": "Inferred: greasing the pan"}
  ],
  "steps": [
    {"step": 1, "instruction": "Mix the flour and egg.", "tip": "mix it good"},
    {"step": 2, "instruction": "Bake at 350°F for 20 minutes."},
    {"step": 3, "instruction": "Let cool.", "note": "Inferred: cakes need to cool before slicing"}
  ],
  "flexibility_notes": "Add vanilla if you have it.",
  "tags": ["cake"],
  "language_detected": "en"
}` + "\n```"

func newWhisper(t *testing.T, text string) *transcribe.OpenAI {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)
	return transcribe.NewOpenAI(option.WithAPIKey("test"), option.WithBaseURL(srv.URL+"/"))
}

func newStructurer(t *testing.T, status int, text string) *structure.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "bake at 350") {
			t.Errorf("transcript missing from model request")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": text}},
					},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(t.Context(), &genai.ClientConfig{
		APIKey:      "test",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return structure.NewClient(client, "")
}

type fakeGeocoder struct {
	res   *geocode.LatLng
	err   error
	calls int
}

func (g *fakeGeocoder) Geocode(context.Context, string, string) (*geocode.LatLng, error) {
	g.calls++
	return g.res, g.err
}

func TestEndToEnd(t *testing.T) {
	ctx := t.Context()
	store := recipestore.NewMemory()
	p := NewPipeline(newWhisper(t, spokenRecipe), newStructurer(t, http.StatusOK, modelDraft), store, nil)

	sub := store.Subscribe(ctx)
	defer sub.Unsubscribe()
	<-sub.C

	res, err := p.Process(ctx, "recording_1700000000000.m4a", strings.NewReader("audio"), map[string]any{"language": "en"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Transcript != spokenRecipe {
		t.Errorf("transcript = %q", res.Transcript)
	}
	if res.Draft.Ingredients[0].Item != "flour" || !strings.Contains(res.Draft.Steps[1].Instruction, "350") {
		t.Fatalf("draft = %+v", res.Draft)
	}

	id, err := p.Publish(ctx, res.Draft, PublishOptions{
		CreatedBy: "user-1",
		Origin:    recipedb.Origin{Name: "Boston", CountryCode: "us"},
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case snap := <-sub.C:
		if len(snap.Recipes) != 1 || snap.Recipes[0].ID != id {
			t.Fatalf("snapshot = %+v, want recipe %s", snap.Recipes, id)
		}
		r := snap.Recipes[0]
		if r.Region != recipedb.RegionAmericas || r.Origin.CountryCode != "US" || r.Visibility != recipedb.VisibilityPublic {
			t.Errorf("recipe = %+v", r)
		}
		if r.Description != "American home baking\n\nAdd vanilla if you have it." {
			t.Errorf("description = %q", r.Description)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("published recipe never appeared on the feed")
	}
}

func TestInferredNotesPreserved(t *testing.T) {
	ctx := t.Context()
	draft, err := structure.ParseDraft(modelDraft)
	if err != nil {
		t.Fatal(err)
	}
	store := recipestore.NewMemory()
	p := NewPipeline(nil, nil, store, nil)

	id, err := p.Publish(ctx, draft, PublishOptions{
		CreatedBy: "user-1",
		Origin:    recipedb.Origin{Name: "Boston", CountryCode: "US"},
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	wantIngredients := []recipedb.Ingredient{
		{Item: "flour", Amount: "2 cups (250 g)"},
		{Item: "egg", Amount: "1"},
		{Item: "butter", Amount: "2 tbsp (28 g)", Note: "Inferred: greasing the pan"},
	}
	if diff := cmp.Diff(wantIngredients, r.Ingredients); diff != "" {
		t.Errorf("ingredients (-want +got):\n%s", diff)
	}
	wantSteps := []recipedb.Step{
		{Step: 1, Instruction: "Mix the flour and egg.", Tip: "mix it good"},
		{Step: 2, Instruction: "Bake at 350°F for 20 minutes."},
		{Step: 3, Instruction: "Let cool.", Note: "Inferred: cakes need to cool before slicing"},
	}
	if diff := cmp.Diff(wantSteps, r.Steps); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	if !structure.IsInferred(r.Ingredients[2].Note) || !structure.IsInferred(r.Steps[2].Note) {
		t.Error("inferred markers lost")
	}
}

func TestProcessStageErrors(t *testing.T) {
	t.Run("transcription", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		p := NewPipeline(transcribe.NewOpenAI(option.WithAPIKey("test"), option.WithBaseURL(srv.URL+"/")), nil, nil, nil)

		_, err := p.Process(t.Context(), "a.m4a", strings.NewReader("audio"), nil)
		if !errors.Is(err, transcribe.ErrTranscriptionFailed) {
			t.Errorf("Process() error = %v, want ErrTranscriptionFailed", err)
		}
	})

	t.Run("structuring", func(t *testing.T) {
		p := NewPipeline(newWhisper(t, spokenRecipe), newStructurer(t, http.StatusOK, "I am not JSON"), nil, nil)
		_, err := p.Process(t.Context(), "a.m4a", strings.NewReader("audio"), nil)
		if !errors.Is(err, structure.ErrStructuringFailed) {
			t.Errorf("Process() error = %v, want ErrStructuringFailed", err)
		}
	})

	t.Run("model unavailable", func(t *testing.T) {
		p := NewPipeline(newWhisper(t, spokenRecipe), newStructurer(t, http.StatusServiceUnavailable, ""), nil, nil)
		_, err := p.Process(t.Context(), "a.m4a", strings.NewReader("audio"), nil)
		if !errors.Is(err, structure.ErrStructuringFailed) {
			t.Errorf("Process() error = %v, want ErrStructuringFailed", err)
		}
	})
}

func TestPublishGeocodes(t *testing.T) {
	draft := &structure.Draft{Title: "Ragù"}
	opts := PublishOptions{CreatedBy: "user-1", Origin: recipedb.Origin{Name: "Naples", CountryCode: "IT"}}

	t.Run("match", func(t *testing.T) {
		store := recipestore.NewMemory()
		g := &fakeGeocoder{res: &geocode.LatLng{Lat: 40.8, Lng: 14.2}}
		id, err := NewPipeline(nil, nil, store, g).Publish(t.Context(), draft, opts)
		if err != nil {
			t.Fatal(err)
		}
		r, _ := store.Get(t.Context(), id)
		if !r.Origin.HasCoords() || *r.Origin.Lng != 14.2 {
			t.Errorf("origin = %+v", r.Origin)
		}
	})

	t.Run("failure ignored", func(t *testing.T) {
		store := recipestore.NewMemory()
		g := &fakeGeocoder{err: geocode.ErrRateLimited}
		id, err := NewPipeline(nil, nil, store, g).Publish(t.Context(), draft, opts)
		if err != nil {
			t.Fatal(err)
		}
		r, _ := store.Get(t.Context(), id)
		if r.Origin.HasCoords() {
			t.Errorf("origin = %+v, want no coordinates", r.Origin)
		}
		if g.calls != 1 {
			t.Errorf("geocode called %d times", g.calls)
		}
	})

	t.Run("validation", func(t *testing.T) {
		g := &fakeGeocoder{}
		_, err := NewPipeline(nil, nil, recipestore.NewMemory(), g).Publish(t.Context(), draft, PublishOptions{CreatedBy: "user-1"})
		if !errors.Is(err, recipedb.ErrValidationFailed) {
			t.Errorf("Publish() error = %v, want ErrValidationFailed", err)
		}
		if g.calls != 0 {
			t.Error("geocoded an origin without a place")
		}
	})

	t.Run("invalid input not geocoded", func(t *testing.T) {
		g := &fakeGeocoder{res: &geocode.LatLng{Lat: 40.8, Lng: 14.2}}
		in := recipedb.Input{
			Title:     "   ",
			CreatedBy: "user-1",
			Origin:    recipedb.Origin{Name: "Naples", CountryCode: "IT"},
		}
		_, err := NewPipeline(nil, nil, recipestore.NewMemory(), g).Create(t.Context(), in)
		if !errors.Is(err, recipedb.ErrValidationFailed) {
			t.Errorf("Create() error = %v, want ErrValidationFailed", err)
		}
		if g.calls != 0 {
			t.Errorf("geocode called %d times for invalid input, want 0", g.calls)
		}
	})
}

func TestDraftToInput(t *testing.T) {
	draft := &structure.Draft{
		Title:          "  ",
		RegionOfOrigin: "Levant",
		Tags:           []string{"soup"},
		Steps:          []structure.Step{{Instruction: "Boil."}},
	}
	in := DraftToInput(draft, PublishOptions{Tags: []string{"winter"}, Visibility: recipedb.VisibilityPrivate})
	if in.Title != UntitledRecipe {
		t.Errorf("title = %q", in.Title)
	}
	if in.Region != recipedb.RegionMiddleEast {
		t.Errorf("region = %q", in.Region)
	}
	if diff := cmp.Diff([]string{"soup", "winter"}, in.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
	if in.Steps[0].Step != nil {
		t.Errorf("step number = %v, want nil", *in.Steps[0].Step)
	}
	if in.Visibility != recipedb.VisibilityPrivate {
		t.Errorf("visibility = %q", in.Visibility)
	}
	if got := DraftToInput(draft, PublishOptions{Title: "Nonna's Soup"}).Title; got != "Nonna's Soup" {
		t.Errorf("title override = %q", got)
	}
}
