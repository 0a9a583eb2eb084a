// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package file

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCS writes files to a Google Cloud Storage bucket.
type GCS struct {
	storage *storage.Client
	bucket  string
}

func NewGCS(storage *storage.Client, bucket string) *GCS {
	return &GCS{
		storage: storage,
		bucket:  bucket,
	}
}

func (g *GCS) WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	wc := g.storage.Bucket(g.bucket).Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("file: writing file %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("file: finishing upload of %s: %w", path, err)
	}
	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, path)
	return url, nil
}
