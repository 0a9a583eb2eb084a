// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package uploadphoto

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	nimage "github.com/curioswitch/nonna/common/image"
	"github.com/curioswitch/nonna/server/internal/auth"
)

type fakeFiles struct {
	path        string
	contentType string
}

func (f *fakeFiles) WriteFile(_ context.Context, path string, contentType string, _ []byte) (string, error) {
	f.path = path
	f.contentType = contentType
	return "https://example.com/" + path, nil
}

func TestUploadPhoto(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	files := &fakeFiles{}
	h := NewHandler(nimage.NewWriter(files))

	res, err := h.UploadPhoto(auth.WithUserID(t.Context(), "lola"), &nonnaapi.UploadPhotoRequest{
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(files.path, "photos/lola/") || !strings.HasSuffix(files.path, ".jpg") || files.contentType != "image/jpeg" {
		t.Errorf("stored %q as %q", files.path, files.contentType)
	}
	if res.URL != "https://example.com/"+files.path {
		t.Errorf("url = %q", res.URL)
	}
}
