// Package reports fetches third-party sighting reports and keeps the ones
// that will still be around by the time the avatar gets there.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"

	"github.com/okian/snipe/pkg/logger"
	"github.com/okian/snipe/pkg/metrics"
)

// Default fetcher configuration constants.
const (
	DefaultURL     = "http://pokesnipers.com/api/v1/pokemon.json"
	defaultHorizon = 60 * time.Second
	defaultTimeout = 10 * time.Second
)

// ErrUnavailable covers transport failures, bad statuses and undecodable bodies.
var ErrUnavailable = errors.New("report service unavailable")

// naive layouts are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Report is one third-party sighting.
type Report struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Coords string `json:"coords"`
	Until  string `json:"until"`
	Icon   string `json:"icon,omitempty"`
}

// Expiry parses Until as ISO-8601.
func (r Report) Expiry() (time.Time, error) {
	until := strings.TrimSpace(r.Until)
	if t, err := time.Parse(time.RFC3339Nano, until); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, until, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable until %q", r.Until)
}

type response struct {
	Results []Report `json:"results"`
}

// Fetcher retrieves reports from a single endpoint.
type Fetcher struct {
	url     string
	horizon time.Duration
	timeout time.Duration
	client  *client.Client
	logger  logger.Logger
}

// NewFetcher creates a Fetcher for url (DefaultURL when empty).
func NewFetcher(url string, opts ...Option) (*Fetcher, error) {
	if url == "" {
		url = DefaultURL
	}
	f := &Fetcher{
		url:     url,
		horizon: defaultHorizon,
		timeout: defaultTimeout,
		logger:  logger.Get().Named("reports"),
	}
	for _, opt := range opts {
		opt(f)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(f.timeout),
		client.WithClientReadTimeout(f.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating report client: %w", err)
	}
	f.client = c
	return f, nil
}

// URL returns the configured endpoint.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch performs the GET and decodes every report.
func (f *Fetcher) Fetch(ctx context.Context) ([]Report, error) {
	status, body, err := f.client.Get(ctx, nil, f.url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrUnavailable, f.url, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d from %s", ErrUnavailable, status, f.url)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrUnavailable, err)
	}
	return resp.Results, nil
}

// Active fetches reports and keeps those expiring more than the horizon after
// now. A failing service yields no reports and a warning, never an error.
func (f *Fetcher) Active(ctx context.Context, now time.Time) []Report {
	f.logger.Info(ctx, "asking for reports", logger.String("url", f.url))

	all, err := f.Fetch(ctx)
	if err != nil {
		metrics.RecordReportFetchError()
		f.logger.Warn(ctx, "report service is down or has no reports yet", logger.Error(err))
		return nil
	}
	metrics.RecordReportsFetched(len(all))

	kept := Filter(all, now, f.horizon)
	metrics.RecordReportsKept(len(kept))

	names := make([]string, len(kept))
	for i, r := range kept {
		names[i] = r.Name
	}
	f.logger.Info(ctx, "focusing on reported coordinates",
		logger.Int("count", len(kept)),
		logger.Strings("spotted", names),
	)
	return kept
}

// Filter keeps reports whose expiry is strictly more than horizon after now.
// Reports with an unparsable expiry are dropped.
func Filter(all []Report, now time.Time, horizon time.Duration) []Report {
	kept := make([]Report, 0, len(all))
	for _, r := range all {
		until, err := r.Expiry()
		if err != nil {
			continue
		}
		if until.Sub(now.UTC()) > horizon {
			kept = append(kept, r)
		}
	}
	return kept
}
