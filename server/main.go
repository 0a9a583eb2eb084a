// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/curioswitch/go-curiostack/server"
	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/curioswitch/nonna/api/go/nonnaapiconnect"
	"github.com/curioswitch/nonna/common/file"
	"github.com/curioswitch/nonna/common/geocode"
	"github.com/curioswitch/nonna/common/image"
	"github.com/curioswitch/nonna/common/recipestore"
	"github.com/curioswitch/nonna/common/reconcile"
	"github.com/curioswitch/nonna/common/search"
	"github.com/curioswitch/nonna/common/structure"
	"github.com/curioswitch/nonna/common/transcribe"
	"github.com/curioswitch/nonna/common/voicerecipe"
	"github.com/curioswitch/nonna/server/internal/auth"
	"github.com/curioswitch/nonna/server/internal/config"
	"github.com/curioswitch/nonna/server/internal/handler/addrecipe"
	"github.com/curioswitch/nonna/server/internal/handler/geocodeplace"
	"github.com/curioswitch/nonna/server/internal/handler/getrecipe"
	"github.com/curioswitch/nonna/server/internal/handler/listrecipes"
	"github.com/curioswitch/nonna/server/internal/handler/processrecording"
	"github.com/curioswitch/nonna/server/internal/handler/publishdraft"
	"github.com/curioswitch/nonna/server/internal/handler/searchrecipes"
	"github.com/curioswitch/nonna/server/internal/handler/structurerecipe"
	"github.com/curioswitch/nonna/server/internal/handler/transcribeaudio"
	"github.com/curioswitch/nonna/server/internal/handler/uploadphoto"
	"github.com/curioswitch/nonna/server/internal/i18n"
	"github.com/curioswitch/nonna/server/internal/rpc"
)

//go:embed conf/*.yaml
var confFiles embed.FS

func main() {
	// API keys for local development.
	_ = godotenv.Load()

	conf, _ := fs.Sub(confFiles, "conf")
	os.Exit(server.Main(&config.Config{}, conf, setupServer))
}

func setupServer(ctx context.Context, conf *config.Config, s *server.Server) error {
	mux := server.Mux(s)

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Google.Project})
	if err != nil {
		return fmt.Errorf("main: create firebase app: %w", err)
	}

	fbAuth, err := fbApp.Auth(ctx)
	if err != nil {
		return fmt.Errorf("main: create firebase auth client: %w", err)
	}

	store, closeStore, err := newStore(ctx, conf, fbApp)
	if err != nil {
		return err
	}
	defer closeStore()

	files, closeFiles, err := newFileWriter(ctx, conf)
	if err != nil {
		return err
	}
	defer closeFiles()
	images := image.NewWriter(files)

	genAI, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		Project: conf.Google.Project,
	})
	if err != nil {
		return fmt.Errorf("main: create genai client: %w", err)
	}
	structurer := structure.NewClient(genAI, conf.Structuring.Model)

	transcriber, closeTranscriber, err := newTranscriber(ctx, conf)
	if err != nil {
		return err
	}
	defer closeTranscriber()

	geocoder := geocode.NewClient(&http.Client{Timeout: 30 * time.Second}, conf.Geocode.BaseURL, conf.Geocode.UserAgent)

	pipeline := voicerecipe.NewPipeline(transcriber, structurer, store, geocoder)

	index, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("main: create search index: %w", err)
	}
	defer func() {
		if err := index.Close(); err != nil {
			slog.ErrorContext(ctx, "main: close search index", "error", err)
		}
	}()

	reconciler := reconcile.NewLoop(geocoder, store, time.Duration(conf.Geocode.IntervalMillis)*time.Millisecond)

	bgCtx, stopBackground := context.WithCancel(ctx)
	var grp errgroup.Group
	grp.Go(func() error {
		return follow(bgCtx, "search index", store, index.Run)
	})
	grp.Go(func() error {
		return follow(bgCtx, "origin reconciliation", store, reconciler.Run)
	})
	defer func() {
		stopBackground()
		if err := grp.Wait(); err != nil {
			slog.ErrorContext(ctx, "main: background workers", "error", err)
		}
	}()

	fbMW := firebaseauth.NewMiddleware(fbAuth)
	mux.Use(middleware.Maybe(func(h http.Handler) http.Handler {
		return fbMW(auth.Middleware()(h))
	}, func(r *http.Request) bool {
		switch {
		case strings.HasPrefix(r.URL.Path, "/internal/"):
			return false
		case isAnonymousProcedure(r.URL.Path) && r.Header.Get("Authorization") == "":
			return false
		default:
			return true
		}
	}))
	mux.Use(i18n.Middleware())

	rpc.Handle(mux, nonnaapiconnect.RecipeServiceTranscribeAudioProcedure,
		transcribeaudio.NewHandler(pipeline).TranscribeAudio)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceStructureRecipeProcedure,
		structurerecipe.NewHandler(pipeline).StructureRecipe)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceProcessRecordingProcedure,
		processrecording.NewHandler(pipeline).ProcessRecording)
	rpc.Handle(mux, nonnaapiconnect.RecipeServicePublishDraftProcedure,
		publishdraft.NewHandler(pipeline, images).PublishDraft)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceAddRecipeProcedure,
		addrecipe.NewHandler(pipeline, images).AddRecipe)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceGetRecipeProcedure,
		getrecipe.NewHandler(store).GetRecipe)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceListRecipesProcedure,
		listrecipes.NewHandler(store).ListRecipes)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceSearchRecipesProcedure,
		searchrecipes.NewHandler(index).SearchRecipes)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceUploadPhotoProcedure,
		uploadphoto.NewHandler(images).UploadPhoto)
	rpc.Handle(mux, nonnaapiconnect.RecipeServiceGeocodePlaceProcedure,
		geocodeplace.NewHandler(geocoder).GeocodePlace)

	if err := server.Start(ctx, s); err != nil {
		return fmt.Errorf("main: starting server: %w", err)
	}
	return nil
}

// isAnonymousProcedure returns whether a procedure can be called without
// signing in. Signed in callers still get their token verified.
func isAnonymousProcedure(path string) bool {
	switch path {
	case nonnaapiconnect.RecipeServiceGetRecipeProcedure,
		nonnaapiconnect.RecipeServiceListRecipesProcedure,
		nonnaapiconnect.RecipeServiceSearchRecipesProcedure,
		nonnaapiconnect.RecipeServiceGeocodePlaceProcedure:
		return true
	}
	return false
}

// follow feeds snapshots of the recipe feed to run, resubscribing after the
// feed fails until ctx is done.
func follow(ctx context.Context, name string, store recipestore.Store, run func(context.Context, <-chan recipestore.Snapshot)) error {
	for {
		sub := store.Subscribe(ctx)
		run(ctx, sub.C)
		sub.Unsubscribe()
		if ctx.Err() != nil {
			return nil
		}
		slog.WarnContext(ctx, "main: recipe feed ended, resubscribing", "worker", name, "error", sub.Err())
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}
}

func newStore(ctx context.Context, conf *config.Config, fbApp *firebase.App) (recipestore.Store, func(), error) {
	switch conf.Store.Backend {
	case "", "firestore":
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("main: create firestore client: %w", err)
		}
		return recipestore.NewFirestore(client), func() {
			if err := client.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close firestore client", "error", err)
			}
		}, nil
	case "mongo":
		client, err := recipestore.DialMongo(ctx, conf.Store.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("main: create mongodb client: %w", err)
		}
		return recipestore.NewMongo(client.Database(conf.Store.MongoDatabase)), func() {
			if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
				slog.ErrorContext(ctx, "main: close mongodb client", "error", err)
			}
		}, nil
	case "memory":
		return recipestore.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("main: unknown store backend %q", conf.Store.Backend) //nolint:err113
}

func newFileWriter(ctx context.Context, conf *config.Config) (file.Writer, func(), error) {
	switch conf.Storage.Backend {
	case "", "gcs":
		client, err := storage.NewGRPCClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("main: create storage client: %w", err)
		}
		bucket := conf.Storage.Bucket
		if bucket == "" {
			bucket = conf.Google.Project + "-public"
		}
		return file.NewGCS(client, bucket), func() {
			if err := client.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close storage client", "error", err)
			}
		}, nil
	case "s3":
		client, err := file.NewS3Client(ctx, conf.Storage.S3Region)
		if err != nil {
			return nil, nil, fmt.Errorf("main: create s3 client: %w", err)
		}
		return file.NewS3(client, file.S3Config{
			Bucket:        conf.Storage.Bucket,
			PublicBaseURL: conf.Storage.PublicBaseURL,
			PublicRead:    conf.Storage.PublicRead,
		}), func() {}, nil
	}
	return nil, nil, fmt.Errorf("main: unknown storage backend %q", conf.Storage.Backend) //nolint:err113
}

func newTranscriber(ctx context.Context, conf *config.Config) (transcribe.Transcriber, func(), error) {
	switch conf.Transcription.Provider {
	case "", "openai":
		var opts []option.RequestOption
		if conf.Transcription.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(conf.Transcription.OpenAIBaseURL))
		}
		return transcribe.NewOpenAI(opts...), func() {}, nil
	case "google":
		client, err := speech.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("main: create speech client: %w", err)
		}
		google := transcribe.NewGoogle(client, transcribe.GoogleConfig{
			Encoding:        conf.Transcription.Encoding,
			SampleRateHertz: conf.Transcription.SampleRateHertz,
			LanguageCode:    conf.Transcription.LanguageCode,
		})
		return google, func() {
			if err := client.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close speech client", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("main: unknown transcription provider %q", conf.Transcription.Provider) //nolint:err113
}
