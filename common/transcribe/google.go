// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package transcribe

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleConfig describes the audio sent to Google Speech-to-Text.
type GoogleConfig struct {
	// Encoding is the speechpb encoding name, e.g. "LINEAR16", "FLAC" or
	// "OGG_OPUS". Empty lets the service detect it from the file header. The
	// service cannot decode AAC, so .m4a recordings are rejected.
	Encoding string

	SampleRateHertz int32

	// LanguageCode is a BCP-47 code, defaulting to en-US.
	LanguageCode string
}

// Google transcribes with the non-streaming Recognize API.
type Google struct {
	client *speech.Client
	config GoogleConfig
}

func NewGoogle(client *speech.Client, config GoogleConfig) *Google {
	if config.LanguageCode == "" {
		config.LanguageCode = "en-US"
	}
	return &Google{
		client: client,
		config: config,
	}
}

func (g *Google) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if aacContainer(filename) {
		return "", fmt.Errorf("%w: google speech cannot decode AAC audio in %s, record as FLAC or OGG_OPUS", ErrTranscriptionFailed, filename)
	}

	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("transcribe: reading %s: %w", filename, err)
	}

	res, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechEncoding(g.config.Encoding),
			SampleRateHertz:            g.config.SampleRateHertz,
			LanguageCode:               g.config.LanguageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: google speech request for %s: %w", ErrTranscriptionFailed, filename, err)
	}

	var parts []string
	for _, r := range res.GetResults() {
		if alts := r.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		}
	}
	return strings.Join(parts, " "), nil
}

func speechEncoding(name string) speechpb.RecognitionConfig_AudioEncoding {
	if v, ok := speechpb.RecognitionConfig_AudioEncoding_value[strings.ToUpper(name)]; ok {
		return speechpb.RecognitionConfig_AudioEncoding(v)
	}
	return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
}

func aacContainer(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".m4a", ".mp4", ".aac":
		return true
	}
	return false
}
