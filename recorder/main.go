// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Command recorder captures recipe stories from the microphone and submits
// them to the recipe service.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/api/go/nonnaapiconnect"
	"github.com/curioswitch/nonna/common/audio"
	"github.com/curioswitch/nonna/common/recipedb"
)

const usage = `usage: recorder [flags] <command> [args]

commands:
  record           record a clip, press enter to stop
  list             list saved clips, newest first
  play <clip>      play a clip until it ends or ctrl-c
  delete <clip>    delete a clip
  submit <clip>    transcribe and structure a clip into a draft recipe
`

var errUsage = errors.New("invalid usage")

type app struct {
	clips    *audio.Store
	playback *audio.Playback
	capture  *audio.Capture

	stdin  io.Reader
	stdout io.Writer

	newClient func() *nonnaapiconnect.RecipeServiceClient
}

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		slog.Error("recorder: failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recorder", flag.ContinueOnError)
	dir := fs.String("dir", defaultClipDir(), "directory where clips are saved")
	server := fs.String("server", envOr("NONNA_SERVER", "http://localhost:8080"), "base URL of the recipe service")
	token := fs.String("token", os.Getenv("NONNA_TOKEN"), "Firebase ID token used to call the recipe service")
	recordCmd := fs.String("record-command", strings.Join(audio.DefaultRecordCommand, " "), "command that records to "+audio.FilePlaceholder+" until interrupted")
	playCmd := fs.String("play-command", strings.Join(audio.DefaultPlayCommand, " "), "command that plays "+audio.FilePlaceholder)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	playback := audio.NewPlayback(&audio.CommandPlayer{Command: strings.Fields(*playCmd)})
	clips, err := audio.NewStore(*dir, playback)
	if err != nil {
		return err
	}
	a := &app{
		clips:    clips,
		playback: playback,
		capture:  audio.NewCapture(&audio.CommandRecorder{Command: strings.Fields(*recordCmd)}, clips, clock.New()),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		newClient: func() *nonnaapiconnect.RecipeServiceClient {
			return nonnaapiconnect.NewRecipeServiceClient(http.DefaultClient, strings.TrimSuffix(*server, "/"),
				nonnaapiconnect.WithBearerToken(*token))
		},
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "record":
		return a.record(ctx)
	case "list":
		return a.list()
	case "play":
		if len(rest) != 1 {
			return errUsage
		}
		return a.play(ctx, rest[0])
	case "delete":
		if len(rest) != 1 {
			return errUsage
		}
		return a.delete(rest[0])
	case "submit":
		return a.submit(ctx, rest)
	}
	return errUsage
}

func (a *app) record(ctx context.Context) error {
	if err := a.capture.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Recording, press enter to stop.")

	line := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(a.stdin).ReadString('\n')
		close(line)
	}()
	select {
	case <-line:
	case <-ctx.Done():
	}

	clip, err := a.capture.Stop(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	if clip == nil {
		fmt.Fprintf(a.stdout, "Recording shorter than %v, discarded.\n", audio.MinDuration)
		return nil
	}
	fmt.Fprintln(a.stdout, clip.Path)
	return nil
}

func (a *app) list() error {
	clips, err := a.clips.List()
	if err != nil {
		return err
	}
	for _, c := range clips {
		fmt.Fprintf(a.stdout, "%s\t%s\n", c.CapturedAt.Local().Format("2006-01-02 15:04:05"), c.Name)
	}
	return nil
}

func (a *app) play(ctx context.Context, name string) error {
	clip, err := a.clips.Find(name)
	if err != nil {
		return err
	}
	if err := a.playback.Play(ctx, clip.Path); err != nil {
		return err
	}
	select {
	case <-a.playback.Done():
		return nil
	case <-ctx.Done():
		return a.playback.Pause()
	}
}

func (a *app) delete(name string) error {
	clip, err := a.clips.Find(name)
	if err != nil {
		return err
	}
	return a.clips.Delete(clip.Path)
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	publish := fs.Bool("publish", false, "publish the draft as a recipe")
	title := fs.String("title", "", "title replacing the drafted one")
	place := fs.String("place", "", "where the recipe comes from, e.g. Naples")
	country := fs.String("country", "", "two letter country code of the place")
	private := fs.Bool("private", false, "only show the recipe to yourself")
	photo := fs.String("photo", "", "JPEG or PNG photo of the dish")
	language := fs.String("language", "", "language of the recording, passed to the model")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	clip, err := a.clips.Find(fs.Arg(0))
	if err != nil {
		return err
	}
	audioURL, err := dataURL(clip.Path, "audio/m4a")
	if err != nil {
		return err
	}

	req := &nonnaapi.ProcessRecordingRequest{
		AudioDataURL: audioURL,
		Filename:     clip.Name,
	}
	if *language != "" {
		req.Metadata = map[string]any{"language": *language}
	}

	client := a.newClient()
	res, err := client.ProcessRecording(ctx, req)
	if err != nil {
		return fmt.Errorf("recorder: processing %s: %w", clip.Name, err)
	}

	if !*publish {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	pub := &nonnaapi.PublishDraftRequest{
		Draft: res.Draft,
		Title: *title,
		Origin: recipedb.Origin{
			Name:        *place,
			CountryCode: *country,
		},
	}
	if *private {
		pub.Visibility = recipedb.VisibilityPrivate
	}
	if *photo != "" {
		ct := "image/jpeg"
		if strings.EqualFold(filepath.Ext(*photo), ".png") {
			ct = "image/png"
		}
		pub.PhotoDataURL, err = dataURL(*photo, ct)
		if err != nil {
			return err
		}
	}
	published, err := client.PublishDraft(ctx, pub)
	if err != nil {
		return fmt.Errorf("recorder: publishing %s: %w", clip.Name, err)
	}
	fmt.Fprintln(a.stdout, published.RecipeID)
	return nil
}

func dataURL(path string, mediaType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("recorder: reading %s: %w", path, err)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func defaultClipDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".nonna", "clips")
	}
	return "clips"
}

func envOr(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
