// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package transcribe

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/v3/option"
)

var (
	_ Transcriber = (*OpenAI)(nil)
	_ Transcriber = (*Google)(nil)
)

func newWhisperServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q, want whisper-1", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading file part: %v", err)
		} else {
			defer f.Close()
			if hdr.Filename != "recording_1700000000000.m4a" {
				t.Errorf("filename = %q", hdr.Filename)
			}
			data, _ := io.ReadAll(f)
			if string(data) != "fake-audio" {
				t.Errorf("file contents = %q", data)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAITranscribe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "text",
			status: http.StatusOK,
			body:   `{"text":"two cups flour, one egg"}`,
			want:   "two cups flour, one egg",
		},
		{
			name:   "empty text",
			status: http.StatusOK,
			body:   `{"text":""}`,
			want:   "",
		},
		{
			name:    "missing text",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"message":"boom"}}`,
			wantErr: true,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"slow down"}}`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := newWhisperServer(t, tc.status, tc.body, &calls)
			o := NewOpenAI(option.WithAPIKey("test"), option.WithBaseURL(srv.URL+"/"))

			got, err := o.Transcribe(t.Context(), "recording_1700000000000.m4a", strings.NewReader("fake-audio"))
			if tc.wantErr {
				if !errors.Is(err, ErrTranscriptionFailed) {
					t.Fatalf("Transcribe() error = %v, want ErrTranscriptionFailed", err)
				}
			} else {
				if err != nil {
					t.Fatalf("Transcribe() error = %v", err)
				}
				if got != tc.want {
					t.Errorf("Transcribe() = %q, want %q", got, tc.want)
				}
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("server called %d times, want 1", n)
			}
		})
	}
}

func TestSpeechEncoding(t *testing.T) {
	if got := speechEncoding("ogg_opus"); got.String() != "OGG_OPUS" {
		t.Errorf("speechEncoding(ogg_opus) = %v", got)
	}
	if got := speechEncoding(""); got.String() != "ENCODING_UNSPECIFIED" {
		t.Errorf("speechEncoding(\"\") = %v", got)
	}
}
