// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipestore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curioswitch/nonna/common/recipedb"
)

// Memory is an in-process Store for local development and tests.
type Memory struct {
	mu      sync.Mutex
	recipes map[string]*memoryRecipe
	seq     int64
	watches map[chan struct{}]struct{}

	now func() time.Time
}

type memoryRecipe struct {
	recipe recipedb.Recipe
	seq    int64
}

func NewMemory() *Memory {
	return &Memory{
		recipes: map[string]*memoryRecipe{},
		watches: map[chan struct{}]struct{}{},
		now:     time.Now,
	}
}

func (m *Memory) Create(_ context.Context, in recipedb.Input) (string, error) {
	recipe, err := recipedb.Prepare(in)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recipe.ID = uuid.NewString()
	recipe.CreatedAt = m.now()
	recipe.UpdatedAt = recipe.CreatedAt
	m.seq++
	m.recipes[recipe.ID] = &memoryRecipe{recipe: recipe, seq: m.seq}
	m.notifyLocked()

	return recipe.ID, nil
}

func (m *Memory) Get(_ context.Context, id string) (recipedb.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.recipes[id]
	if !ok {
		return recipedb.Recipe{}, fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
	}
	return cloneRecipe(r.recipe), nil
}

func (m *Memory) List(_ context.Context, opts ListOptions) ([]recipedb.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.sortedLocked()
	res := make([]recipedb.Recipe, 0, len(all))
	for _, r := range all {
		if opts.CreatedBy != "" && r.CreatedBy != opts.CreatedBy {
			continue
		}
		res = append(res, r)
		if opts.Limit > 0 && len(res) == opts.Limit {
			break
		}
	}
	return res, nil
}

func (m *Memory) Subscribe(ctx context.Context) *Subscription {
	return newSubscription(ctx, func(ctx context.Context, emit func([]recipedb.Recipe) bool) error {
		// Buffered so that changes made while a snapshot is being delivered
		// coalesce into a single follow-up snapshot.
		changed := make(chan struct{}, 1)
		changed <- struct{}{}

		m.mu.Lock()
		m.watches[changed] = struct{}{}
		m.mu.Unlock()
		defer func() {
			m.mu.Lock()
			delete(m.watches, changed)
			m.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changed:
			}
			m.mu.Lock()
			recipes := m.sortedLocked()
			m.mu.Unlock()
			if !emit(recipes) {
				return nil
			}
		}
	})
}

func (m *Memory) PatchOriginCoords(_ context.Context, id string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.recipes[id]
	if !ok {
		return fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
	}
	r.recipe.Origin.Lat = &lat
	r.recipe.Origin.Lng = &lng
	r.recipe.UpdatedAt = m.now()
	m.notifyLocked()
	return nil
}

func (m *Memory) notifyLocked() {
	for ch := range m.watches {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *Memory) sortedLocked() []recipedb.Recipe {
	entries := make([]*memoryRecipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		entries = append(entries, r)
	}
	slices.SortFunc(entries, func(a, b *memoryRecipe) int {
		if c := b.recipe.CreatedAt.Compare(a.recipe.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})
	res := make([]recipedb.Recipe, len(entries))
	for i, e := range entries {
		res[i] = cloneRecipe(e.recipe)
	}
	return res
}

func cloneRecipe(r recipedb.Recipe) recipedb.Recipe {
	r.Tags = slices.Clone(r.Tags)
	r.Ingredients = slices.Clone(r.Ingredients)
	r.Steps = slices.Clone(r.Steps)
	if r.Origin.Lat != nil {
		lat := *r.Origin.Lat
		r.Origin.Lat = &lat
	}
	if r.Origin.Lng != nil {
		lng := *r.Origin.Lng
		r.Origin.Lng = &lng
	}
	return r
}
