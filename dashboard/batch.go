package dashboard

import (
	"context"

	"github.com/jrsteele09/secops-console/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Alerts and top risks shown on the dashboard are capped at this many rows.
const feedLimit = 10

// Feeds is the set of fetches one dashboard batch runs.
type Feeds interface {
	GetStats(ctx context.Context, hours int) (*Stats, error)
	GetAlerts(ctx context.Context, query AlertQuery) (*AlertsResponse, error)
	GetTimeline(ctx context.Context, hours int) (*TimelineResponse, error)
	GetTopRisks(ctx context.Context, query TopRisksQuery) (*TopRisksResponse, error)
}

var _ Feeds = (*Service)(nil)

// Snapshot is the result of one successful batch. Every feed in it was fetched with
// the same Hours.
type Snapshot struct {
	Hours    int
	Stats    Stats
	Alerts   []Alert
	Timeline []TimelinePoint
	TopRisks []TopRiskUser
}

// LoadSnapshot fetches the four feeds concurrently and returns them only if all of them
// succeed. The first failure cancels the others.
func LoadSnapshot(ctx context.Context, feeds Feeds, hours int) (Snapshot, error) {
	var (
		stats    *Stats
		alerts   *AlertsResponse
		timeline *TimelineResponse
		topRisks *TopRisksResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = feeds.GetStats(gctx, hours)
		return err
	})
	g.Go(func() (err error) {
		alerts, err = feeds.GetAlerts(gctx, AlertQuery{Limit: utils.Ptr(feedLimit), Resolved: utils.Ptr(false)})
		return err
	})
	g.Go(func() (err error) {
		timeline, err = feeds.GetTimeline(gctx, hours)
		return err
	})
	g.Go(func() (err error) {
		topRisks, err = feeds.GetTopRisks(gctx, TopRisksQuery{Limit: utils.Ptr(feedLimit), Hours: utils.Ptr(hours)})
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, errors.Wrap(err, "[dashboard.LoadSnapshot]")
	}

	return Snapshot{
		Hours:    hours,
		Stats:    *stats,
		Alerts:   alerts.Alerts,
		Timeline: timeline.Timeline,
		TopRisks: topRisks.TopRisks,
	}, nil
}

// Loader adapts LoadSnapshot to the refresh coordinator's loader signature.
func Loader(feeds Feeds) func(ctx context.Context, hours int) (Snapshot, error) {
	return func(ctx context.Context, hours int) (Snapshot, error) {
		return LoadSnapshot(ctx, feeds, hours)
	}
}
