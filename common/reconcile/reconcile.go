// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/curioswitch/nonna/common/geocode"
	"github.com/curioswitch/nonna/common/recipedb"
	"github.com/curioswitch/nonna/common/recipestore"
)

// DefaultInterval is the minimum time between geocoding calls.
const DefaultInterval = 900 * time.Millisecond

type Geocoder interface {
	Geocode(ctx context.Context, place string, countryCode string) (*geocode.LatLng, error)
}

type Patcher interface {
	PatchOriginCoords(ctx context.Context, id string, lat, lng float64) error
}

// Loop fills in missing origin coordinates of recipes seen on the live feed.
// Each recipe is attempted at most once for the lifetime of the Loop, whether
// or not the attempt succeeds, and at most one pass runs at a time.
type Loop struct {
	geocoder Geocoder
	patcher  Patcher
	limiter  *rate.Limiter

	mu        sync.Mutex
	attempted map[string]struct{}

	running atomic.Bool
}

func NewLoop(geocoder Geocoder, patcher Patcher, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		geocoder:  geocoder,
		patcher:   patcher,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		attempted: map[string]struct{}{},
	}
}

// Run starts a pass in the background for every snapshot that has candidates
// while no pass is running. The latest snapshot arriving during a pass is
// held and checked again when the pass finishes. It returns when ctx is done
// or snapshots is closed, after any running pass finishes.
func (l *Loop) Run(ctx context.Context, snapshots <-chan recipestore.Snapshot) {
	var wg sync.WaitGroup
	defer wg.Wait()

	passDone := make(chan struct{}, 1)
	var pending []recipedb.Recipe
	for {
		var recipes []recipedb.Recipe
		select {
		case <-ctx.Done():
			return
		case <-passDone:
			if pending == nil {
				continue
			}
			recipes, pending = pending, nil
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			recipes = s.Recipes
		}

		if !l.hasCandidates(recipes) {
			continue
		}
		if !l.running.CompareAndSwap(false, true) {
			pending = recipes
			continue
		}
		wg.Go(func() {
			defer func() {
				l.running.Store(false)
				select {
				case passDone <- struct{}{}:
				default:
				}
			}()
			l.pass(ctx, recipes)
		})
	}
}

// Reconcile runs a single pass over recipes and returns false without doing
// anything if another pass is running.
func (l *Loop) Reconcile(ctx context.Context, recipes []recipedb.Recipe) bool {
	if !l.running.CompareAndSwap(false, true) {
		return false
	}
	defer l.running.Store(false)
	l.pass(ctx, recipes)
	return true
}

func (l *Loop) pass(ctx context.Context, recipes []recipedb.Recipe) {
	for _, r := range recipes {
		if !isCandidate(&r) || !l.markAttempted(r.ID) {
			continue
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return
		}

		ll, err := l.geocoder.Geocode(ctx, r.Origin.Name, r.Origin.CountryCode)
		if err != nil {
			slog.WarnContext(ctx, "reconcile: geocoding recipe origin", "recipe", r.ID, "place", r.Origin.Name, "error", err)
			continue
		}
		if ll == nil {
			slog.InfoContext(ctx, "reconcile: no match for recipe origin", "recipe", r.ID, "place", r.Origin.Name)
			continue
		}
		if err := l.patcher.PatchOriginCoords(ctx, r.ID, ll.Lat, ll.Lng); err != nil {
			slog.WarnContext(ctx, "reconcile: patching recipe origin", "recipe", r.ID, "error", err)
			continue
		}
	}
}

func (l *Loop) markAttempted(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.attempted[id]; ok {
		return false
	}
	l.attempted[id] = struct{}{}
	return true
}

func (l *Loop) hasCandidates(recipes []recipedb.Recipe) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range recipes {
		r := &recipes[i]
		if _, ok := l.attempted[r.ID]; !ok && isCandidate(r) {
			return true
		}
	}
	return false
}

func isCandidate(r *recipedb.Recipe) bool {
	return r.ID != "" && !r.Origin.HasCoords() && r.Origin.HasPlace()
}
