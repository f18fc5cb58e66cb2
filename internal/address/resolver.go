// Package address validates constituent addresses and resolves them to a
// jurisdiction through the external geocoding collaborator.
package address

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	dErrors "herald/pkg/domain-errors"
)

// Geocoder is the external geocoding collaborator: street address in,
// jurisdiction out. Implementations must honor context cancellation.
type Geocoder interface {
	Locate(ctx context.Context, addr Address) (Jurisdiction, error)
}

var postalCodeRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Resolver turns a street address into a jurisdiction. It performs no
// retries; callers decide whether a resolution failure is worth retrying.
type Resolver struct {
	geocoder Geocoder
	logger   *slog.Logger
}

func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve validates the address and queries the geocoder. Validation
// failures come back as validation errors (HTTP 400); geocoder failures as
// unavailable (HTTP 503).
func (r *Resolver) Resolve(ctx context.Context, addr Address) (Jurisdiction, error) {
	if err := validate(addr); err != nil {
		return Jurisdiction{}, err
	}

	jur, err := r.geocoder.Locate(ctx, addr)
	if err != nil {
		r.logger.WarnContext(ctx, "geocoder lookup failed",
			"region_code", addr.RegionCode,
			"error", err,
		)
		return Jurisdiction{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "address resolution is temporarily unavailable")
	}
	return jur, nil
}

func validate(addr Address) error {
	if strings.TrimSpace(addr.Street) == "" {
		return dErrors.New(dErrors.CodeValidation, "street is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		return dErrors.New(dErrors.CodeValidation, "city is required")
	}
	if strings.TrimSpace(addr.RegionCode) == "" {
		return dErrors.New(dErrors.CodeValidation, "region code is required")
	}
	if !postalCodeRe.MatchString(addr.PostalCode) {
		return dErrors.New(dErrors.CodeValidation, "postal code must be 5 digits with optional 4-digit extension")
	}
	return nil
}
