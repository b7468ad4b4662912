// Package dashboard merges locally computed metrics with the optional
// upstream report into the single result set the presentation layer
// consumes.
package dashboard

import (
	"context"
	"log/slog"

	"hanami-dashboard/internal/analytics"
	"hanami-dashboard/internal/models"
	"hanami-dashboard/internal/observability"
	"hanami-dashboard/internal/remote"
)

// Service applies the reconciliation policy. Each metric decides
// independently, all keyed off the same filter-active boolean:
//
//   - filter active: the locally filtered result is authoritative and
//     wins; the upstream value is only a fallback for metrics the local
//     pass produced nothing for.
//   - no filter: the upstream result is preferred when present and
//     non-empty, else the local unfiltered result.
type Service struct {
	data   *analytics.Dataset
	remote *remote.Client
	logger *slog.Logger
}

func New(data *analytics.Dataset, remote *remote.Client) *Service {
	return &Service{
		data:   data,
		remote: remote,
		logger: slog.Default(),
	}
}

// Report computes the reconciled metric set for one filter state. Every
// call recomputes every decision; there is no cached reconciliation
// state to invalidate when the filter changes.
func (s *Service) Report(ctx context.Context, f analytics.Filter) models.Report {
	records := s.data.Records()
	active := f.Active()

	local := localReport(f.Apply(records), active)

	var upstream *models.Report
	if s.remote.Enabled() {
		fetchCtx, span := observability.StartSpan(ctx, "upstream.fetch_report")
		upstream = s.remote.FetchReport(fetchCtx, f)
		span.Finish()
	}
	if upstream == nil {
		return local
	}

	if active {
		return merge(local, *upstream)
	}
	return merge(*upstream, local)
}

// localReport aggregates one (possibly filtered) collection. The two
// dashboard variants weight some charts differently: the filtered view
// is revenue-weighted and shows every state, the raw view is count-based
// and truncates states to the top 10.
func localReport(records []models.SalesRecord, filtered bool) models.Report {
	metric := analytics.ByCount
	stateLimit := analytics.TopLimit
	if filtered {
		metric = analytics.ByRevenue
		stateLimit = 0
	}

	kpis := analytics.Summarize(records)
	delivery := analytics.AverageDeliveryTime(records)
	return models.Report{
		KPIs:                &kpis,
		MonthlySales:        analytics.MonthlySales(records),
		SalesByCategory:     analytics.SalesByCategory(records),
		TopProducts:         analytics.TopProducts(records, analytics.TopLimit),
		CustomersByGender:   analytics.CustomersByGender(records, metric),
		SalesByState:        analytics.SalesByState(records, stateLimit),
		PaymentMethods:      analytics.PaymentMethods(records),
		CustomersByAge:      analytics.CustomersByAge(records, metric),
		Installments:        analytics.Installments(records),
		DeliveryStatus:      analytics.DeliveryStatus(records, metric),
		ProductRatings:      analytics.ProductRatings(records, analytics.TopLimit),
		AverageDeliveryTime: &delivery,
	}
}

// merge picks the primary value per metric, falling back to the
// secondary when the primary has nothing for it.
func merge(primary, secondary models.Report) models.Report {
	out := primary
	if out.KPIs == nil || *out.KPIs == (models.KPISummary{}) {
		if secondary.KPIs != nil {
			out.KPIs = secondary.KPIs
		}
	}
	if len(out.MonthlySales) == 0 {
		out.MonthlySales = secondary.MonthlySales
	}
	if len(out.SalesByCategory) == 0 {
		out.SalesByCategory = secondary.SalesByCategory
	}
	if len(out.TopProducts) == 0 {
		out.TopProducts = secondary.TopProducts
	}
	if len(out.CustomersByGender) == 0 {
		out.CustomersByGender = secondary.CustomersByGender
	}
	if len(out.SalesByState) == 0 {
		out.SalesByState = secondary.SalesByState
	}
	if len(out.PaymentMethods) == 0 {
		out.PaymentMethods = secondary.PaymentMethods
	}
	if len(out.CustomersByAge) == 0 {
		out.CustomersByAge = secondary.CustomersByAge
	}
	if len(out.Installments) == 0 {
		out.Installments = secondary.Installments
	}
	if len(out.DeliveryStatus) == 0 {
		out.DeliveryStatus = secondary.DeliveryStatus
	}
	if len(out.ProductRatings) == 0 {
		out.ProductRatings = secondary.ProductRatings
	}
	if out.AverageDeliveryTime == nil || out.AverageDeliveryTime.TempoMedio == 0 {
		if secondary.AverageDeliveryTime != nil {
			out.AverageDeliveryTime = secondary.AverageDeliveryTime
		}
	}
	return out
}
