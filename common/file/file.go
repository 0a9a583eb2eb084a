// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package file

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataURL is returned when a data URL cannot be parsed.
var ErrInvalidDataURL = errors.New("file: invalid data url")

// Writer stores files and returns a public URL for them.
type Writer interface {
	WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// ParseDataURL decodes a base64 data URL such as
// "data:image/jpeg;base64,/9j/4AAQ..." into its media type and content.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURL)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURL)
	}
	mediaType, params, _ := strings.Cut(meta, ";")
	if !strings.Contains(params, "base64") {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: decoding payload: %w", ErrInvalidDataURL, err)
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return strings.ToLower(mediaType), data, nil
}
