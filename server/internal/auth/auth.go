// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package auth

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
)

var errUnauthenticated = errors.New("sign in required")

type userIDContextKey struct{}

var userIDContextKeyInstance = userIDContextKey{}

// Middleware exposes the UID of the verified Firebase token to handlers. It
// must be wrapped by the firebaseauth middleware.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := firebaseauth.TokenFromContext(r.Context()); tok != nil && tok.UID != "" {
				r = r.WithContext(WithUserID(r.Context(), tok.UID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a context carrying the signed in user.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDContextKeyInstance, uid)
}

// UserID returns the signed in user, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDContextKeyInstance).(string); ok {
		return uid
	}
	return ""
}

// RequireUserID returns the signed in user or an unauthenticated error.
func RequireUserID(ctx context.Context) (string, error) {
	uid := UserID(ctx)
	if uid == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
	}
	return uid, nil
}
