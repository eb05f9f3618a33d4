package enricher

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/autotask"
)

// Directory is the slice of the Autotask client the enricher queries.
type Directory interface {
	QueryCompanyLocations(ctx context.Context, filter autotask.Filter) ([]autotask.CompanyLocation, error)
	QueryContracts(ctx context.Context, filter autotask.Filter) ([]autotask.Contract, error)
}

// Context is the extra ticket context fetched for a resolved company. Nil
// fields mean "not found"; the caller supplies configured fallbacks.
type Context struct {
	LocationID *int64
	ContractID *int64
}

// Enricher looks up a company's primary active location and default contract.
type Enricher struct {
	dir Directory
}

func New(dir Directory) *Enricher {
	return &Enricher{dir: dir}
}

// Enrich never fails; lookup errors degrade to empty context. Inactive
// locations are filtered out before selection, the primary one wins, else the
// first active one. The contract is the company's first default contract.
func (e *Enricher) Enrich(ctx context.Context, companyID int64) Context {
	var result Context

	locations, err := e.dir.QueryCompanyLocations(ctx, autotask.Eq("CompanyID", companyID))
	if err != nil {
		log.Error().Err(err).Int64("company_id", companyID).Msg("company locations lookup failed")
	} else {
		var active []autotask.CompanyLocation
		for _, loc := range locations {
			if loc.IsActive {
				active = append(active, loc)
			}
		}
		for _, loc := range active {
			if loc.IsPrimary {
				id := loc.ID
				result.LocationID = &id
				break
			}
		}
		if result.LocationID == nil && len(active) > 0 {
			id := active[0].ID
			result.LocationID = &id
		}
	}

	contracts, err := e.dir.QueryContracts(ctx, autotask.And(
		autotask.Eq("CompanyID", companyID),
		autotask.Eq("IsDefaultContract", true),
	))
	if err != nil {
		log.Error().Err(err).Int64("company_id", companyID).Msg("default contract lookup failed")
	} else if len(contracts) > 0 {
		id := contracts[0].ID
		result.ContractID = &id
	}

	return result
}
