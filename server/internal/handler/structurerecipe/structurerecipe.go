// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package structurerecipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/structure"
	"github.com/curioswitch/nonna/server/internal/auth"
	"github.com/curioswitch/nonna/server/internal/i18n"
)

var errEmptyTranscript = errors.New("transcript is empty")

type Structurer interface {
	Structure(ctx context.Context, transcript string, metadata map[string]any) (*structure.Draft, error)
}

func NewHandler(structurer Structurer) *Handler {
	return &Handler{
		structurer: structurer,
	}
}

type Handler struct {
	structurer Structurer
}

func (h *Handler) StructureRecipe(ctx context.Context, req *nonnaapi.StructureRecipeRequest) (*nonnaapi.StructureRecipeResponse, error) {
	if _, err := auth.RequireUserID(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyTranscript)
	}

	draft, err := h.structurer.Structure(ctx, req.Transcript, i18n.Metadata(ctx, req.Metadata))
	if err != nil {
		return nil, fmt.Errorf("structurerecipe: %w", err)
	}
	return &nonnaapi.StructureRecipeResponse{
		Draft: draft,
	}, nil
}
