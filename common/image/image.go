// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/curioswitch/nonna/common/file"
)

// ErrUnsupportedType is returned for images that are neither JPEG nor PNG.
var ErrUnsupportedType = errors.New("image: unsupported image type")

// Writer stores photos as JPEG files named by upload time.
type Writer struct {
	files file.Writer
	now   func() time.Time
}

func NewWriter(files file.Writer) *Writer {
	return &Writer{
		files: files,
		now:   time.Now,
	}
}

// WriteDataURL stores the image in a data URL under prefix and returns its
// public URL.
func (w *Writer) WriteDataURL(ctx context.Context, prefix string, dataURL string) (string, error) {
	mimeType, data, err := file.ParseDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("image: %w", err)
	}
	return w.WriteImage(ctx, prefix, mimeType, data)
}

// WriteImage stores a JPEG or PNG image as <prefix>/<epoch ms>.jpg, converting
// PNG to JPEG, and returns its public URL.
func (w *Writer) WriteImage(ctx context.Context, prefix string, mimeType string, data []byte) (string, error) {
	var image []byte
	switch mimeType {
	case "image/png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("image: decoding png image: %w", err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return "", fmt.Errorf("image: encoding png to jpeg: %w", err)
		}
		image = buf.Bytes()
	case "image/jpeg", "image/jpg":
		image = data
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	path := fmt.Sprintf("%s/%d.jpg", prefix, w.now().UnixMilli())
	url, err := w.files.WriteFile(ctx, path, "image/jpeg", image)
	if err != nil {
		return "", fmt.Errorf("image: writing image to file io: %w", err)
	}
	return url, nil
}
