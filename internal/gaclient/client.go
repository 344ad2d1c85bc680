// Package gaclient wraps the Analytics Reporting API v4 batchGet call and
// pages through its results.
package gaclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	analyticsreporting "google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gyeh/gaexport/internal/model"
)

const (
	DefaultPageSize = 100000
	DefaultMaxPages = 1000
)

var (
	// ErrAuth is returned by New when the key file cannot be read or the
	// first token cannot be obtained.
	ErrAuth = errors.New("authentication failed")
	// ErrNoReport is returned when a batchGet response carries no report.
	ErrNoReport = errors.New("response contained no report")
	// ErrPageLimit is returned when a query keeps returning continuation
	// tokens past Options.MaxPages.
	ErrPageLimit = errors.New("page limit exceeded")
)

// Options configures the request shape and authentication of a Client.
type Options struct {
	CredentialsFile string
	Scope           string
	Endpoint        string // empty uses the Google endpoint
	Dimensions      []string
	Metrics         []string
	DateDimension   string // ordering field, ascending
	PageSize        int64
	MaxPages        int
}

// Client fetches complete reports for one view and date range at a time.
type Client struct {
	svc  *analyticsreporting.Service
	opts Options
	log  zerolog.Logger
}

// New reads the service-account key file, obtains a first access token and
// builds the reporting service. Any failure up to the first token is
// wrapped in ErrAuth.
func New(ctx context.Context, opts Options, log zerolog.Logger) (*Client, error) {
	data, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read key file: %v", ErrAuth, err)
	}

	conf, err := google.JWTConfigFromJSON(data, opts.Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse key file: %v", ErrAuth, err)
	}

	ts := conf.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("%w: fetch token: %v", ErrAuth, err)
	}

	clientOpts := []option.ClientOption{option.WithTokenSource(ts)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := analyticsreporting.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create reporting service: %w", err)
	}

	log.Info().
		Str("client_email", conf.Email).
		Str("scope", opts.Scope).
		Msg("reporting client initialized")

	return NewWithService(svc, opts, log), nil
}

// NewWithService builds a Client around an existing service. Zero-valued
// paging options fall back to the defaults.
func NewWithService(svc *analyticsreporting.Service, opts Options, log zerolog.Logger) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.DateDimension == "" {
		opts.DateDimension = model.DateDimension
	}
	return &Client{svc: svc, opts: opts, log: log}
}

// Fetch requests the report for viewID over [start, end] and follows
// continuation tokens until none is returned. Rows are concatenated in page
// order; the header comes from the first page.
func (c *Client) Fetch(ctx context.Context, viewID string, start, end time.Time) (*model.RawTable, error) {
	fetchStart := time.Now()
	raw := &model.RawTable{}
	token := ""

	for page := 1; page <= c.opts.MaxPages; page++ {
		p, err := c.fetchPage(ctx, viewID, start, end, token)
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				c.log.Warn().
					Str("view_id", viewID).
					Int("page", page).
					Int("status", apiErr.Code).
					Str("reason", apiErr.Message).
					Msg("report request rejected")
			}
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if page == 1 {
			raw.Header = make([]string, 0, len(p.Dimensions)+len(p.Metrics))
			raw.Header = append(raw.Header, p.Dimensions...)
			raw.Header = append(raw.Header, p.Metrics...)
			raw.DimensionCount = len(p.Dimensions)
		}
		raw.Rows = append(raw.Rows, p.Rows...)
		raw.Pages = page

		c.log.Debug().
			Str("view_id", viewID).
			Int("page", page).
			Int("rows", len(p.Rows)).
			Bool("more", p.NextPageToken != "").
			Msg("report page received")

		if p.NextPageToken == "" {
			c.log.Info().
				Str("view_id", viewID).
				Str("start_date", start.Format(time.DateOnly)).
				Str("end_date", end.Format(time.DateOnly)).
				Int("pages", raw.Pages).
				Int("rows", len(raw.Rows)).
				Dur("duration", time.Since(fetchStart)).
				Msg("report fetched")
			return raw, nil
		}
		token = p.NextPageToken
	}

	return nil, fmt.Errorf("%w: %s still paging after %d pages", ErrPageLimit, viewID, c.opts.MaxPages)
}

// BuildRequest returns the batchGet body for one page. Every page uses the
// same ordering; only the page token differs.
func (c *Client) BuildRequest(viewID string, start, end time.Time, pageToken string) *analyticsreporting.GetReportsRequest {
	metrics := make([]*analyticsreporting.Metric, len(c.opts.Metrics))
	for i, m := range c.opts.Metrics {
		metrics[i] = &analyticsreporting.Metric{Expression: m}
	}
	dims := make([]*analyticsreporting.Dimension, len(c.opts.Dimensions))
	for i, d := range c.opts.Dimensions {
		dims[i] = &analyticsreporting.Dimension{Name: d}
	}

	return &analyticsreporting.GetReportsRequest{
		ReportRequests: []*analyticsreporting.ReportRequest{{
			ViewId: viewID,
			DateRanges: []*analyticsreporting.DateRange{{
				StartDate: start.Format(time.DateOnly),
				EndDate:   end.Format(time.DateOnly),
			}},
			Metrics:    metrics,
			Dimensions: dims,
			OrderBys: []*analyticsreporting.OrderBy{{
				FieldName: c.opts.DateDimension,
				SortOrder: "ASCENDING",
			}},
			PageSize:  c.opts.PageSize,
			PageToken: pageToken,
		}},
	}
}

func (c *Client) fetchPage(ctx context.Context, viewID string, start, end time.Time, token string) (*model.ReportPage, error) {
	req := c.BuildRequest(viewID, start, end, token)
	resp, err := c.svc.Reports.BatchGet(req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Reports) == 0 || resp.Reports[0] == nil {
		return nil, ErrNoReport
	}
	return toPage(resp.Reports[0], c.opts), nil
}

// toPage flattens one API report. Metric values come from the first date
// range. A report without a column header (no data at all) falls back to
// the requested field lists.
func toPage(rep *analyticsreporting.Report, opts Options) *model.ReportPage {
	p := &model.ReportPage{NextPageToken: rep.NextPageToken}

	if ch := rep.ColumnHeader; ch != nil {
		p.Dimensions = ch.Dimensions
		if ch.MetricHeader != nil {
			for _, e := range ch.MetricHeader.MetricHeaderEntries {
				p.Metrics = append(p.Metrics, e.Name)
			}
		}
	} else {
		p.Dimensions = opts.Dimensions
		p.Metrics = opts.Metrics
	}

	if rep.Data != nil {
		p.Rows = make([]model.ReportRow, 0, len(rep.Data.Rows))
		for _, r := range rep.Data.Rows {
			if r == nil {
				continue
			}
			row := model.ReportRow{Dimensions: r.Dimensions}
			if len(r.Metrics) > 0 && r.Metrics[0] != nil {
				row.Metrics = r.Metrics[0].Values
			}
			p.Rows = append(p.Rows, row)
		}
	}
	return p
}
