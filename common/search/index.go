// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
)

// DefaultLimit is the number of results returned when no limit is given.
const DefaultLimit = 20

// Options narrows a search.
type Options struct {
	// Region restricts results to a single region.
	Region recipedb.Region

	Limit int
}

type indexedRecipe struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Story       string   `json:"story"`
	Storyteller string   `json:"storyteller"`
	Origin      string   `json:"origin"`
	Region      string   `json:"region"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
}

var textFields = []string{"description", "story", "storyteller", "origin", "tags", "ingredients"}

// Index is an in-memory full text index of public recipes, kept current from
// the recipe feed.
type Index struct {
	index bleve.Index

	mu      sync.RWMutex
	recipes map[string]recipedb.Recipe
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("search: creating index: %w", err)
	}
	return &Index{
		index:   idx,
		recipes: map[string]recipedb.Recipe{},
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)
	for _, f := range textFields {
		docMapping.AddFieldMappingsAt(f, bleve.NewTextFieldMapping())
	}
	docMapping.AddFieldMappingsAt("region", bleve.NewKeywordFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func (i *Index) Close() error {
	return i.index.Close()
}

// Run updates the index from each snapshot until ctx is done or snapshots is
// closed.
func (i *Index) Run(ctx context.Context, snapshots <-chan recipestore.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := i.Update(snap.Recipes); err != nil {
				slog.ErrorContext(ctx, "search: updating index", "error", err)
			}
		}
	}
}

// Update makes the index match recipes. Only public recipes are indexed, and
// recipes no longer present are removed.
func (i *Index) Update(recipes []recipedb.Recipe) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	next := make(map[string]recipedb.Recipe, len(recipes))
	for _, r := range recipes {
		if r.ID == "" || r.Visibility == recipedb.VisibilityPrivate {
			continue
		}
		next[r.ID] = r
		if prev, ok := i.recipes[r.ID]; ok && prev.UpdatedAt.Equal(r.UpdatedAt) && !r.UpdatedAt.IsZero() {
			continue
		}
		if err := batch.Index(r.ID, toIndexed(&r)); err != nil {
			return fmt.Errorf("search: indexing recipe %s: %w", r.ID, err)
		}
	}
	for id := range i.recipes {
		if _, ok := next[id]; !ok {
			batch.Delete(id)
		}
	}

	if batch.Size() > 0 {
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("search: committing batch: %w", err)
		}
	}
	i.recipes = next
	return nil
}

// Search returns recipes matching text, best match first. An empty text
// matches every recipe.
func (i *Index) Search(text string, opts Options) ([]recipedb.Recipe, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var q query.Query
	if text = strings.TrimSpace(text); text == "" {
		q = bleve.NewMatchAllQuery()
	} else {
		title := bleve.NewMatchQuery(text)
		title.SetField("title")
		title.SetBoost(3)
		title.SetFuzziness(1)
		fields := []query.Query{title}
		for _, f := range textFields {
			mq := bleve.NewMatchQuery(text)
			mq.SetField(f)
			fields = append(fields, mq)
		}
		q = bleve.NewDisjunctionQuery(fields...)
	}
	if opts.Region != "" {
		region := bleve.NewTermQuery(string(opts.Region))
		region.SetField("region")
		q = bleve.NewConjunctionQuery(q, region)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	i.mu.RLock()
	defer i.mu.RUnlock()
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: searching %q: %w", text, err)
	}

	recipes := make([]recipedb.Recipe, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if r, ok := i.recipes[hit.ID]; ok {
			recipes = append(recipes, r)
		}
	}
	return recipes, nil
}

// Count returns the number of indexed recipes.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

func toIndexed(r *recipedb.Recipe) *indexedRecipe {
	doc := &indexedRecipe{
		Title:       r.Title,
		Description: r.Description,
		Story:       r.Story,
		Storyteller: r.Storyteller,
		Origin:      r.Origin.Name,
		Region:      string(r.Region),
		Tags:        r.Tags,
		Ingredients: make([]string, len(r.Ingredients)),
	}
	for j, ing := range r.Ingredients {
		doc.Ingredients[j] = ing.Item
	}
	return doc
}
