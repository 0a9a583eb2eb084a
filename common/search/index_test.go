// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package search

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
)

var updated = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func testRecipes() []recipedb.Recipe {
	return []recipedb.Recipe{
		{
			ID:          "adobo",
			Title:       "Chicken Adobo",
			Visibility:  recipedb.VisibilityPublic,
			Region:      recipedb.RegionAsia,
			Origin:      recipedb.Origin{Name: "Manila", CountryCode: "PH"},
			Ingredients: []recipedb.Ingredient{{Item: "chicken thighs"}, {Item: "vinegar"}},
			Story:       "Lola made it every Sunday.",
			UpdatedAt:   updated,
		},
		{
			ID:          "ragu",
			Title:       "Ragù Napoletano",
			Visibility:  recipedb.VisibilityPublic,
			Region:      recipedb.RegionEurope,
			Origin:      recipedb.Origin{Name: "Naples", CountryCode: "IT"},
			Ingredients: []recipedb.Ingredient{{Item: "beef"}, {Item: "tomato"}},
			Tags:        []string{"sunday"},
			UpdatedAt:   updated,
		},
		{
			ID:          "secret",
			Title:       "Secret Chicken Soup",
			Visibility:  recipedb.VisibilityPrivate,
			Region:      recipedb.RegionAsia,
			Ingredients: []recipedb.Ingredient{{Item: "chicken"}},
			UpdatedAt:   updated,
		},
		{
			ID:          "kibbeh",
			Title:       "Kibbeh",
			Visibility:  recipedb.VisibilityPublic,
			Region:      recipedb.RegionMiddleEast,
			Ingredients: []recipedb.Ingredient{{Item: "bulgur"}, {Item: "lamb"}},
			UpdatedAt:   updated,
		},
	}
}

func searchIDs(t *testing.T, idx *Index, text string, opts Options) []string {
	t.Helper()
	res, err := idx.Search(text, opts)
	if err != nil {
		t.Fatal(err)
	}
	ids := []string{}
	for _, r := range res {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestSearch(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Update(testRecipes()); err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.Count(); n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}

	tests := []struct {
		name string
		text string
		opts Options
		want []string
	}{
		{name: "title", text: "adobo", want: []string{"adobo"}},
		{name: "ingredient", text: "vinegar", want: []string{"adobo"}},
		{name: "private excluded", text: "secret soup", want: []string{}},
		{name: "origin", text: "naples", want: []string{"ragu"}},
		{name: "region filter", text: "", opts: Options{Region: recipedb.RegionMiddleEast}, want: []string{"kibbeh"}},
		{name: "region filter with text", text: "chicken", opts: Options{Region: recipedb.RegionEurope}, want: []string{}},
		{name: "no match", text: "croissant", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, searchIDs(t, idx, tc.text, tc.opts)); diff != "" {
				t.Errorf("Search(%q) (-want +got):\n%s", tc.text, diff)
			}
		})
	}

	if got := searchIDs(t, idx, "", Options{Limit: 2}); len(got) != 2 {
		t.Errorf("Search with limit 2 returned %v", got)
	}
}

func TestUpdateRemovesRecipes(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	recipes := testRecipes()
	if err := idx.Update(recipes); err != nil {
		t.Fatal(err)
	}

	// Adobo becomes private, ragu is edited and kibbeh is deleted.
	recipes[0].Visibility = recipedb.VisibilityPrivate
	recipes[1].Title = "Sunday Gravy"
	recipes[1].UpdatedAt = updated.Add(time.Hour)
	if err := idx.Update(recipes[:3]); err != nil {
		t.Fatal(err)
	}

	if got := searchIDs(t, idx, "adobo", Options{}); len(got) != 0 {
		t.Errorf("private recipe still searchable: %v", got)
	}
	if got := searchIDs(t, idx, "kibbeh", Options{}); len(got) != 0 {
		t.Errorf("deleted recipe still searchable: %v", got)
	}
	if diff := cmp.Diff([]string{"ragu"}, searchIDs(t, idx, "gravy", Options{})); diff != "" {
		t.Errorf("edited recipe (-want +got):\n%s", diff)
	}
}

func TestRun(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	store := recipestore.NewMemory()
	sub := store.Subscribe(t.Context())
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		idx.Run(t.Context(), sub.C)
	}()

	if _, err := store.Create(t.Context(), recipedb.Input{
		Title:     "Jollof Rice",
		CreatedBy: "user-1",
		Origin:    recipedb.Origin{Name: "Lagos", CountryCode: "NG"},
	}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(searchIDs(t, idx, "jollof", Options{})) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("created recipe never indexed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sub.Unsubscribe()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the feed closed")
	}
}
