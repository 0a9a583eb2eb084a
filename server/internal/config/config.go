// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"github.com/curioswitch/go-curiostack/config"
)

// Store selects where recipes are persisted.
type Store struct {
	// Backend is one of firestore, mongo or memory.
	Backend string `koanf:"backend"`

	// MongoURI is the connection string when Backend is mongo.
	MongoURI string `koanf:"mongouri"`

	// MongoDatabase is the database name when Backend is mongo.
	MongoDatabase string `koanf:"mongodatabase"`
}

// Storage selects where photos are uploaded.
type Storage struct {
	// Backend is one of gcs or s3.
	Backend string `koanf:"backend"`

	// Bucket is the bucket name. For gcs it defaults to <project>-public.
	Bucket string `koanf:"bucket"`

	// S3Region is the AWS region of the bucket.
	S3Region string `koanf:"s3region"`

	// PublicBaseURL is prepended to object keys to form photo URLs on s3.
	PublicBaseURL string `koanf:"publicbaseurl"`

	// PublicRead sets a public-read ACL on s3 uploads.
	PublicRead bool `koanf:"publicread"`
}

type Transcription struct {
	// Provider is one of openai or google.
	Provider string `koanf:"provider"`

	// OpenAIBaseURL overrides the OpenAI API endpoint.
	OpenAIBaseURL string `koanf:"openaibaseurl"`

	// Encoding is the Google Speech encoding of uploaded audio. Google only
	// accepts formats such as LINEAR16, FLAC or OGG_OPUS, m4a recordings are
	// rejected and need the openai provider.
	Encoding string `koanf:"encoding"`

	// SampleRateHertz is the Google Speech sample rate of uploaded audio.
	SampleRateHertz int32 `koanf:"sampleratehertz"`

	// LanguageCode is the Google Speech recognition language.
	LanguageCode string `koanf:"languagecode"`
}

type Structuring struct {
	// Model is the Gemini model used to structure transcripts.
	Model string `koanf:"model"`
}

type Geocode struct {
	// BaseURL is the Nominatim-compatible endpoint.
	BaseURL string `koanf:"baseurl"`

	// UserAgent identifies the service to the geocoding API.
	UserAgent string `koanf:"useragent"`

	// IntervalMillis is the minimum time between background geocoding calls.
	IntervalMillis int `koanf:"intervalmillis"`
}

type Config struct {
	config.Common

	Store         Store         `koanf:"store"`
	Storage       Storage       `koanf:"storage"`
	Transcription Transcription `koanf:"transcription"`
	Structuring   Structuring   `koanf:"structuring"`
	Geocode       Geocode       `koanf:"geocode"`
}
