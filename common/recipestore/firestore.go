// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipestore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/curioswitch/nonna/common/recipedb"
)

// Firestore stores recipes in the recipes collection of a Firestore database.
type Firestore struct {
	store *firestore.Client
}

func NewFirestore(store *firestore.Client) *Firestore {
	return &Firestore{
		store: store,
	}
}

func (f *Firestore) Create(ctx context.Context, in recipedb.Input) (string, error) {
	recipe, err := recipedb.Prepare(in)
	if err != nil {
		return "", err
	}

	doc, _, err := f.store.Collection(recipedb.Collection).Add(ctx, recipedb.NewDocument(&recipe))
	if err != nil {
		return "", fmt.Errorf("recipestore: creating recipe in firestore: %w", err)
	}
	return doc.ID, nil
}

func (f *Firestore) Get(ctx context.Context, id string) (recipedb.Recipe, error) {
	snap, err := f.store.Collection(recipedb.Collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return recipedb.Recipe{}, fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
		}
		return recipedb.Recipe{}, fmt.Errorf("recipestore: getting recipe %s from firestore: %w", id, err)
	}
	return decodeSnapshot(snap)
}

func (f *Firestore) List(ctx context.Context, opts ListOptions) ([]recipedb.Recipe, error) {
	q := f.store.Collection(recipedb.Collection).Query
	if opts.CreatedBy != "" {
		q = q.Where("createdBy", "==", opts.CreatedBy)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("recipestore: listing recipes from firestore: %w", err)
	}
	return decodeSnapshots(ctx, docs), nil
}

func (f *Firestore) Subscribe(ctx context.Context) *Subscription {
	q := f.store.Collection(recipedb.Collection).OrderBy("createdAt", firestore.Desc)
	return newSubscription(ctx, func(ctx context.Context, emit func([]recipedb.Recipe) bool) error {
		it := q.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("recipestore: watching recipes in firestore: %w", err)
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				return fmt.Errorf("recipestore: reading recipe snapshot: %w", err)
			}
			if !emit(decodeSnapshots(ctx, docs)) {
				return nil
			}
		}
	})
}

func (f *Firestore) PatchOriginCoords(ctx context.Context, id string, lat, lng float64) error {
	_, err := f.store.Collection(recipedb.Collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "origin.lat", Value: lat},
		{Path: "origin.lng", Value: lng},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("recipestore: patching origin of recipe %s: %w", id, err)
	}
	return nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (recipedb.Recipe, error) {
	var doc recipedb.Document
	if err := snap.DataTo(&doc); err != nil {
		return recipedb.Recipe{}, fmt.Errorf("recipestore: unmarshalling recipe %s: %w", snap.Ref.ID, err)
	}
	return doc.Recipe(snap.Ref.ID), nil
}

// decodeSnapshots skips documents that cannot be decoded so one bad document
// does not hide the rest of the collection.
func decodeSnapshots(ctx context.Context, snaps []*firestore.DocumentSnapshot) []recipedb.Recipe {
	recipes := make([]recipedb.Recipe, 0, len(snaps))
	for _, snap := range snaps {
		r, err := decodeSnapshot(snap)
		if err != nil {
			slog.WarnContext(ctx, "recipestore: skipping malformed recipe", "id", snap.Ref.ID, "error", err)
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes
}
