// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipestore

import (
	"context"
	"errors"

	"github.com/curioswitch/nonna/common/recipedb"
)

// ErrNotFound is returned when a recipe does not exist.
var ErrNotFound = errors.New("recipestore: recipe not found")

// ListOptions filters List.
type ListOptions struct {
	// CreatedBy restricts results to recipes created by this user.
	CreatedBy string

	// Limit caps the number of results, 0 means no limit.
	Limit int
}

// Store persists recipes. All implementations normalize and validate input to
// Create before touching the backing store.
type Store interface {
	// Create persists a new recipe and returns its ID.
	Create(ctx context.Context, in recipedb.Input) (string, error)

	// Get returns the recipe with the given ID.
	Get(ctx context.Context, id string) (recipedb.Recipe, error)

	// List returns recipes ordered by creation time, newest first.
	List(ctx context.Context, opts ListOptions) ([]recipedb.Recipe, error)

	// Subscribe starts a live feed of all recipes, newest first. A snapshot is
	// delivered immediately and again after every change.
	Subscribe(ctx context.Context) *Subscription

	// PatchOriginCoords sets the coordinates of a recipe's origin without
	// touching any other field.
	PatchOriginCoords(ctx context.Context, id string, lat, lng float64) error
}

// Snapshot is the full set of recipes at a point in time.
type Snapshot struct {
	Recipes []recipedb.Recipe
}

// Subscription is a live feed of snapshots. C is closed when the subscription
// ends, either by Unsubscribe, cancellation of the context passed to
// Subscribe, or a feed error reported by Err.
type Subscription struct {
	C <-chan Snapshot

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

type watchFunc func(ctx context.Context, emit func([]recipedb.Recipe) bool) error

func newSubscription(ctx context.Context, watch watchFunc) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Snapshot)
	s := &Subscription{
		C:      ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(ch)
		err := watch(ctx, func(recipes []recipedb.Recipe) bool {
			select {
			case ch <- Snapshot{Recipes: recipes}:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			s.err = err
		}
	}()

	return s
}

// Unsubscribe stops the feed and waits for it to shut down. It is safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}

// Err returns the error that ended the feed, if any. It returns nil while the
// feed is running.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}
