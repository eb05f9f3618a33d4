package resolver

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/autotask"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/metrics"
)

// Directory is the slice of the Autotask client the resolver queries.
type Directory interface {
	QueryCompanies(ctx context.Context, filter autotask.Filter) ([]autotask.Company, error)
	QueryConfigurationItems(ctx context.Context, filter autotask.Filter) ([]autotask.ConfigurationItem, error)
}

// Resolver maps an alert's free-text identity (test name, tags) onto an
// Autotask company and, when tagged, a configuration item. The cascade trades
// precision for recall; the final containment filter exists because opening a
// ticket against the wrong company is worse than opening it against none.
type Resolver struct {
	dir Directory
}

func New(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// UnknownCompany is the sentinel returned when no confident match exists.
// Callers treat id 0 as "unresolved" and fall back to configured defaults.
func UnknownCompany() autotask.Company {
	return autotask.Company{ID: 0, IsActive: true}
}

// tagValue returns the remainder of the first tag containing the prefix.
func tagValue(tags []string, prefix string) (string, bool) {
	for _, tag := range tags {
		if strings.Contains(tag, prefix) {
			return strings.TrimSpace(strings.Replace(tag, prefix, "", 1)), true
		}
	}
	return "", false
}

// companyProbe derives the name probe used for the exact and substring
// lookups: a Company: tag wins; otherwise the display name is cut at the
// first dash, else the first space, else taken whole.
func companyProbe(displayName string, tags []string) string {
	if v, ok := tagValue(tags, "Company:"); ok {
		return v
	}
	if i := strings.Index(displayName, "-"); i >= 0 {
		return strings.TrimSpace(displayName[:i])
	}
	if i := strings.Index(displayName, " "); i >= 0 {
		return strings.TrimSpace(displayName[:i])
	}
	return strings.TrimSpace(displayName)
}

// ResolveCompany never fails; query errors degrade to the unknown sentinel.
//
// Lookup order, short-circuiting on the first non-empty result:
//  1. exact id from a CompanyID: tag
//  2. exact company number or "Client Abbreviation" UDF equal to the probe
//  3. company name containing the probe
//
// Candidates are then filtered to active, and a multi-candidate set is kept
// only when exactly one candidate's name appears inside the display name.
func (r *Resolver) ResolveCompany(ctx context.Context, displayName string, tags []string) autotask.Company {
	var candidates []autotask.Company

	if idStr, ok := tagValue(tags, "CompanyID:"); ok {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			found, err := r.dir.QueryCompanies(ctx, autotask.Eq("id", id))
			if err != nil {
				log.Error().Err(err).Int64("company_id", id).Msg("company lookup by id failed")
			} else {
				candidates = found
			}
		} else {
			log.Warn().Str("tag_value", idStr).Msg("CompanyID tag is not numeric, ignoring")
		}
	}

	probe := companyProbe(displayName, tags)
	if probe != "" && len(candidates) == 0 {
		found, err := r.dir.QueryCompanies(ctx, autotask.Or(
			autotask.Eq("CompanyNumber", probe),
			autotask.EqUDF("Client Abbreviation", probe),
		))
		if err != nil {
			log.Error().Err(err).Str("probe", probe).Msg("company lookup by number/abbreviation failed")
		} else {
			candidates = found
		}

		if len(candidates) == 0 {
			found, err := r.dir.QueryCompanies(ctx, autotask.Contains("CompanyName", probe))
			if err != nil {
				log.Error().Err(err).Str("probe", probe).Msg("company lookup by name failed")
			} else {
				candidates = found
			}
		}
	}

	active := candidates[:0]
	for _, c := range candidates {
		if c.IsActive {
			active = append(active, c)
		}
	}

	if len(active) > 1 {
		lowerName := strings.ToLower(displayName)
		var narrowed []autotask.Company
		for _, c := range active {
			if strings.Contains(lowerName, strings.ToLower(c.CompanyName)) {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 1 {
			// still ambiguous; resolving arbitrarily risks misattribution
			narrowed = nil
		}
		active = narrowed
	}

	if len(active) != 1 {
		metrics.AmbiguousResolutions.Inc()
		log.Warn().Str("test_name", displayName).Str("probe", probe).Msg("no confident company match, using unknown company")
		return UnknownCompany()
	}
	return active[0]
}

// ResolveDevice selects a configuration item for a Device: tag, or nil when no
// tag or no match exists. When multiple active devices remain and at least one
// carries a recorded external IP, the set is narrowed to devices whose IP
// matches the alert's URL or IP.
func (r *Resolver) ResolveDevice(ctx context.Context, companyID int64, tags []string, url, ip string) *autotask.ConfigurationItem {
	deviceName, ok := tagValue(tags, "Device:")
	if !ok || deviceName == "" {
		return nil
	}

	filter := autotask.And(
		autotask.Eq("CompanyID", companyID),
		autotask.Or(
			autotask.Contains("ReferenceTitle", deviceName),
			autotask.Contains("rmmDeviceAuditHostname", deviceName),
		),
	)
	devices, err := r.dir.QueryConfigurationItems(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("device", deviceName).Msg("device lookup failed")
		return nil
	}

	active := devices[:0]
	for _, d := range devices {
		if d.IsActive {
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return nil
	}

	if len(active) > 1 && anyHasExternalIP(active) {
		var narrowed []autotask.ConfigurationItem
		for _, d := range active {
			addr := strings.TrimSpace(d.ExternalIPAddress)
			if addr != "" && (addr == url || addr == ip) {
				narrowed = append(narrowed, d)
			}
		}
		if len(narrowed) > 0 {
			active = narrowed
		}
	}

	return &active[0]
}

func anyHasExternalIP(devices []autotask.ConfigurationItem) bool {
	for _, d := range devices {
		if strings.TrimSpace(d.ExternalIPAddress) != "" {
			return true
		}
	}
	return false
}
