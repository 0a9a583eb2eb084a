// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/curioswitch/nonna/common/recipedb"
)

type mongoDocument struct {
	ID primitive.ObjectID `bson:"_id,omitempty"`

	recipedb.Document `bson:",inline"`
}

// Mongo stores recipes in a MongoDB collection. Subscribe requires a replica
// set since it relies on change streams.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		coll: db.Collection(recipedb.Collection),
	}
}

// DialMongo connects to MongoDB and verifies the connection.
func DialMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("recipestore: connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("recipestore: pinging mongodb: %w", err)
	}
	return client, nil
}

func (m *Mongo) Create(ctx context.Context, in recipedb.Input) (string, error) {
	recipe, err := recipedb.Prepare(in)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	res, err := m.coll.InsertOne(ctx, mongoDocument{Document: *recipedb.NewDocument(&recipe)})
	if err != nil {
		return "", fmt.Errorf("recipestore: creating recipe in mongodb: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("recipestore: unexpected inserted id %v", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (m *Mongo) Get(ctx context.Context, id string) (recipedb.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return recipedb.Recipe{}, fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
	}

	var doc mongoDocument
	if err := m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return recipedb.Recipe{}, fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
		}
		return recipedb.Recipe{}, fmt.Errorf("recipestore: getting recipe %s from mongodb: %w", id, err)
	}
	return doc.Recipe(doc.ID.Hex()), nil
}

func (m *Mongo) List(ctx context.Context, opts ListOptions) ([]recipedb.Recipe, error) {
	filter := bson.M{}
	if opts.CreatedBy != "" {
		filter["createdBy"] = opts.CreatedBy
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("recipestore: listing recipes from mongodb: %w", err)
	}
	defer func() {
		_ = cur.Close(context.WithoutCancel(ctx))
	}()

	var recipes []recipedb.Recipe
	for cur.Next(ctx) {
		var doc mongoDocument
		if err := cur.Decode(&doc); err != nil {
			slog.WarnContext(ctx, "recipestore: skipping malformed recipe", "error", err)
			continue
		}
		recipes = append(recipes, doc.Recipe(doc.ID.Hex()))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("recipestore: iterating recipes from mongodb: %w", err)
	}
	return recipes, nil
}

func (m *Mongo) Subscribe(ctx context.Context) *Subscription {
	return newSubscription(ctx, func(ctx context.Context, emit func([]recipedb.Recipe) bool) error {
		// Open the stream before the initial read so no change falls in between.
		cs, err := m.coll.Watch(ctx, mongo.Pipeline{})
		if err != nil {
			return fmt.Errorf("recipestore: watching recipes in mongodb: %w", err)
		}
		defer func() {
			_ = cs.Close(context.WithoutCancel(ctx))
		}()

		recipes, err := m.List(ctx, ListOptions{})
		if err != nil {
			return err
		}
		if !emit(recipes) {
			return nil
		}

		for cs.Next(ctx) {
			recipes, err := m.List(ctx, ListOptions{})
			if err != nil {
				return err
			}
			if !emit(recipes) {
				return nil
			}
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("recipestore: reading mongodb change stream: %w", err)
		}
		return nil
	})
}

func (m *Mongo) PatchOriginCoords(ctx context.Context, id string, lat, lng float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
	}

	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"origin.lat": lat,
			"origin.lng": lng,
		},
		"$currentDate": bson.M{
			"updatedAt": true,
		},
	})
	if err != nil {
		return fmt.Errorf("recipestore: patching origin of recipe %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("recipestore: recipe %s: %w", id, ErrNotFound)
	}
	return nil
}
