// Package remote fetches pre-aggregated metrics from an upstream
// analytics API. The upstream is an optional collaborator: every fetch
// degrades to nil on failure and the dashboard falls back to local data.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"hanami-dashboard/internal/analytics"
	"hanami-dashboard/internal/models"
)

const fetchConcurrency = 6

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client for the given upstream base URL. An empty
// URL yields a disabled client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
}

// Enabled reports whether an upstream is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// FetchReport pulls the KPI block and every series in parallel, one
// request each. Requests fail independently: a failed metric stays nil
// in the report and is logged once, nothing is retried.
func (c *Client) FetchReport(ctx context.Context, f analytics.Filter) *models.Report {
	if !c.Enabled() {
		return nil
	}

	query := filterQuery(f)
	report := &models.Report{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	g.Go(c.fetchInto(ctx, "/kpis", query, &report.KPIs))
	g.Go(c.fetchInto(ctx, "/sales-by-month", query, &report.MonthlySales))
	g.Go(c.fetchInto(ctx, "/sales-by-category", query, &report.SalesByCategory))
	g.Go(c.fetchInto(ctx, "/top-products", query, &report.TopProducts))
	g.Go(c.fetchInto(ctx, "/customers-by-gender", query, &report.CustomersByGender))
	g.Go(c.fetchInto(ctx, "/sales-by-state", query, &report.SalesByState))
	g.Go(c.fetchInto(ctx, "/payment-methods", query, &report.PaymentMethods))
	g.Go(c.fetchInto(ctx, "/customers-by-age", query, &report.CustomersByAge))
	g.Go(c.fetchInto(ctx, "/installments", query, &report.Installments))
	g.Go(c.fetchInto(ctx, "/delivery-status", query, &report.DeliveryStatus))
	g.Go(c.fetchInto(ctx, "/product-ratings", query, &report.ProductRatings))
	g.Go(c.fetchInto(ctx, "/average-delivery-time", query, &report.AverageDeliveryTime))

	// fetchInto never returns an error; Wait only orders completion.
	_ = g.Wait()
	return report
}

// fetchInto returns a task decoding one endpoint into dst, swallowing
// the error after logging it so sibling fetches keep going.
func (c *Client) fetchInto(ctx context.Context, path string, query url.Values, dst any) func() error {
	return func() error {
		if err := c.getJSON(ctx, path, query, dst); err != nil {
			c.logger.Warn("upstream metric unavailable", "path", path, "error", err)
		}
		return nil
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func filterQuery(f analytics.Filter) url.Values {
	query := url.Values{}
	if !f.Start.IsZero() {
		query.Set("start_date", f.Start.Format("2006-01-02"))
	}
	if !f.End.IsZero() {
		query.Set("end_date", f.End.Format("2006-01-02"))
	}
	if f.Region != "" {
		query.Set("region", f.Region)
	}
	return query
}
