// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package i18n

import (
	"context"
	"maps"
	"net/http"
	"strings"
)

type userLanguageContextKey struct{}

var userLanguageContextKeyInstance = userLanguageContextKey{}

// Middleware stores the preferred language from Accept-Language in the
// request context.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lng := parseAcceptLanguage(r.Header.Get("Accept-Language")); lng != "" {
				r = r.WithContext(context.WithValue(r.Context(), userLanguageContextKeyInstance, lng))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserLanguage returns the primary language subtag preferred by the user,
// e.g. "it", or "" if unknown.
func UserLanguage(ctx context.Context) string {
	if lng, ok := ctx.Value(userLanguageContextKeyInstance).(string); ok {
		return lng
	}
	return ""
}

// WithUserLanguage returns a context with the user language set.
func WithUserLanguage(ctx context.Context, lng string) context.Context {
	return context.WithValue(ctx, userLanguageContextKeyInstance, lng)
}

// Metadata returns a copy of metadata for the structuring model with the user
// language filled in when the caller did not provide one.
func Metadata(ctx context.Context, metadata map[string]any) map[string]any {
	res := make(map[string]any, len(metadata)+1)
	maps.Copy(res, metadata)
	if _, ok := res["language"]; !ok {
		if lng := UserLanguage(ctx); lng != "" {
			res["language"] = lng
		}
	}
	return res
}

func parseAcceptLanguage(header string) string {
	lng, _, _ := strings.Cut(header, ",")
	lng, _, _ = strings.Cut(lng, ";")
	lng, _, _ = strings.Cut(strings.TrimSpace(lng), "-")
	if lng == "*" {
		return ""
	}
	return strings.ToLower(lng)
}
