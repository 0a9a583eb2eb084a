// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package auth

import (
	"testing"

	"connectrpc.com/connect"
)

func TestRequireUserID(t *testing.T) {
	if _, err := RequireUserID(t.Context()); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("anonymous error = %v, want Unauthenticated", err)
	}

	uid, err := RequireUserID(WithUserID(t.Context(), "nonna"))
	if err != nil {
		t.Fatal(err)
	}
	if uid != "nonna" {
		t.Errorf("uid = %q, want nonna", uid)
	}
	if got := UserID(t.Context()); got != "" {
		t.Errorf("UserID() = %q, want empty", got)
	}
}
