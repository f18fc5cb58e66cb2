// Package directory maps a resolved jurisdiction to the concrete list of
// offices that must receive a message, applying the special-jurisdiction
// rules for the non-voting territories and the federal district.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"herald/internal/address"
	dErrors "herald/pkg/domain-errors"
	"herald/pkg/platform/sentinel"
)

// ErrNoRepresentation signals a jurisdiction that maps to no offices at all.
// This should not occur for valid jurisdictions; callers log it as a data
// defect and surface an internal error.
var ErrNoRepresentation = dErrors.New(dErrors.CodeInternal, "no representation found for jurisdiction")

// nonVotingDelegateKinds lists the regions with a single non-voting
// lower-chamber office and no upper-chamber representation. Membership in
// this map is the hard rule that suppresses upper-chamber offices.
var nonVotingDelegateKinds = map[string]DelegateKind{
	"DC": DelegateKindDelegate,
	"PR": DelegateKindResidentCommissioner,
	"GU": DelegateKindDelegate,
	"VI": DelegateKindDelegate,
	"AS": DelegateKindDelegate,
	"MP": DelegateKindDelegate,
}

// IsNonVotingRegion reports whether the region gets delegate-only
// representation.
func IsNonVotingRegion(regionCode string) bool {
	_, ok := nonVotingDelegateKinds[regionCode]
	return ok
}

// Store provides read access to office reference data.
type Store interface {
	ListByRegion(ctx context.Context, regionCode string) ([]Office, error)
	FindByCode(ctx context.Context, code string) (*Office, error)
}

// Directory answers "who represents this jurisdiction".
type Directory struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Directory {
	return &Directory{store: store, logger: logger}
}

// OfficesFor returns the ordered delivery targets for a jurisdiction:
// upper-chamber offices first (sorted by holder name), then the lower-chamber
// office. Downstream components rely on this order.
func (d *Directory) OfficesFor(ctx context.Context, jur address.Jurisdiction) ([]Office, error) {
	regionOffices, err := d.store.ListByRegion(ctx, jur.RegionCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			d.logger.ErrorContext(ctx, "jurisdiction maps to no offices",
				"region_code", jur.RegionCode,
				"cell_id", jur.CellID,
			)
			return nil, ErrNoRepresentation
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load offices")
	}

	if kind, nonVoting := nonVotingDelegateKinds[jur.RegionCode]; nonVoting {
		return d.delegateOffices(ctx, jur, regionOffices, kind)
	}
	return d.stateOffices(ctx, jur, regionOffices)
}

// stateOffices selects both senators plus the district representative for an
// ordinary state jurisdiction.
func (d *Directory) stateOffices(ctx context.Context, jur address.Jurisdiction, regionOffices []Office) ([]Office, error) {
	var upper []Office
	var lower []Office
	for _, o := range regionOffices {
		switch o.Chamber {
		case ChamberUpper:
			upper = append(upper, o)
		case ChamberLower:
			if o.DistrictCode == jur.DistrictCode {
				lower = append(lower, o)
			}
		}
	}

	if len(upper) == 0 && len(lower) == 0 {
		d.logger.ErrorContext(ctx, "jurisdiction maps to no offices",
			"region_code", jur.RegionCode,
			"district_code", jur.DistrictCode,
		)
		return nil, ErrNoRepresentation
	}
	if len(upper) != 2 || len(lower) != 1 {
		d.logger.ErrorContext(ctx, "unexpected office shape for state jurisdiction",
			"region_code", jur.RegionCode,
			"district_code", jur.DistrictCode,
			"upper_count", len(upper),
			"lower_count", len(lower),
		)
		return nil, dErrors.New(dErrors.CodeInternal, "office reference data is inconsistent")
	}

	// Stable order: senators alphabetical by holder name, representative last.
	sort.Slice(upper, func(i, j int) bool { return upper[i].HolderName < upper[j].HolderName })
	return append(upper, lower...), nil
}

// delegateOffices selects the single non-voting lower office for a territory
// or the federal district. No upper-chamber office is ever produced here.
func (d *Directory) delegateOffices(ctx context.Context, jur address.Jurisdiction, regionOffices []Office, kind DelegateKind) ([]Office, error) {
	var lower []Office
	for _, o := range regionOffices {
		if o.Chamber == ChamberLower {
			lower = append(lower, o)
		}
	}

	if len(lower) == 0 {
		d.logger.ErrorContext(ctx, "non-voting jurisdiction has no delegate office",
			"region_code", jur.RegionCode,
			"cell_id", jur.CellID,
		)
		return nil, ErrNoRepresentation
	}
	if len(lower) != 1 {
		d.logger.ErrorContext(ctx, "unexpected office shape for non-voting jurisdiction",
			"region_code", jur.RegionCode,
			"lower_count", len(lower),
		)
		return nil, dErrors.New(dErrors.CodeInternal, "office reference data is inconsistent")
	}

	office := lower[0]
	office.IsVotingMember = false
	office.DelegateKind = kind
	return []Office{office}, nil
}
