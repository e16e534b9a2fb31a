package maps

import (
	"context"
	"errors"
	"fmt"

	addressvalidation "google.golang.org/api/addressvalidation/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"kainan/internal/modules/location"
	"kainan/internal/types"
)

// AddressValidationService geocodes through the Google Address Validation API.
type AddressValidationService struct {
	svc    *addressvalidation.Service
	region string
}

func NewAddressValidationService(ctx context.Context, apiKey, region string, opts ...option.ClientOption) (*AddressValidationService, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := addressvalidation.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create address validation client: %w", err)
	}
	return &AddressValidationService{svc: svc, region: region}, nil
}

func (s *AddressValidationService) Name() string { return "AddressValidation" }

func (s *AddressValidationService) Geocode(ctx context.Context, address string) (types.Point, error) {
	req := &addressvalidation.GoogleMapsAddressvalidationV1ValidateAddressRequest{
		Address: &addressvalidation.GoogleTypePostalAddress{
			AddressLines: []string{address},
			RegionCode:   s.region,
		},
	}
	resp, err := s.svc.V1.ValidateAddress(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return types.Point{}, &location.StatusError{Provider: s.Name(), Code: gerr.Code}
		}
		return types.Point{}, err
	}
	if resp.Result == nil || resp.Result.Geocode == nil || resp.Result.Geocode.Location == nil {
		return types.Point{}, location.ErrNoResult
	}
	loc := resp.Result.Geocode.Location
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return types.Point{}, location.ErrNoResult
	}
	return types.Point{Lat: loc.Latitude, Lng: loc.Longitude}, nil
}
