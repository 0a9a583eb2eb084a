// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package geocodeplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	nonnaapi "github.com/curioswitch/nonna/api/go"
	"github.com/curioswitch/nonna/common/geocode"
)

var errEmptyPlace = errors.New("place is required")

type Geocoder interface {
	Geocode(ctx context.Context, place string, countryCode string) (*geocode.LatLng, error)
}

func NewHandler(geocoder Geocoder) *Handler {
	return &Handler{
		geocoder: geocoder,
	}
}

type Handler struct {
	geocoder Geocoder
}

func (h *Handler) GeocodePlace(ctx context.Context, req *nonnaapi.GeocodePlaceRequest) (*nonnaapi.GeocodePlaceResponse, error) {
	if strings.TrimSpace(req.Place) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyPlace)
	}
	loc, err := h.geocoder.Geocode(ctx, req.Place, req.CountryCode)
	if err != nil {
		return nil, fmt.Errorf("geocodeplace: %w", err)
	}
	return &nonnaapi.GeocodePlaceResponse{
		Location: loc,
	}, nil
}
