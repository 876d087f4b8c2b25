package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/utils"
)

// ViewCache stores computed views by Filter.Key. Get returns (nil, nil)
// on a miss.
type ViewCache interface {
	Get(ctx context.Context, key string) (*models.View, error)
	Set(ctx context.Context, key string, view *models.View) error
}

// DashboardService recomputes the dashboard for a filter selection over
// the immutable dataset. It holds no per-request state.
type DashboardService struct {
	data     *models.Dataset
	insights *InsightService
	charts   *ChartBuilder
	cache    ViewCache
	logger   *utils.Logger
}

// NewDashboardService wires the service over data. cache may be nil.
func NewDashboardService(data *models.Dataset, cache ViewCache, logger *utils.Logger) *DashboardService {
	return &DashboardService{
		data:     data,
		insights: NewInsightService(logger),
		charts:   NewChartBuilder(data.Regions),
		cache:    cache,
		logger:   logger,
	}
}

// Dataset returns the shared snapshot.
func (s *DashboardService) Dataset() *models.Dataset { return s.data }

// Insights returns the insight service used for KPIs.
func (s *DashboardService) Insights() *InsightService { return s.insights }

// Subset returns the listings matching f.
func (s *DashboardService) Subset(f Filter) []*models.Listing {
	return f.Apply(s.data.Listings)
}

// ComputeView returns the charts and KPIs for f. Cache failures are logged
// and the view is computed directly.
func (s *DashboardService) ComputeView(ctx context.Context, f Filter) *models.View {
	key := f.Key()
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("[dashboard] cache get %s: %v", key, err)
		} else if cached != nil {
			s.logger.Debug("[dashboard] cache hit %s", key)
			return cached
		}
	}

	start := time.Now()
	view := s.Compute(f)
	s.logger.Debug("[dashboard] computed %s in %v (%d listings)", key, time.Since(start), view.Report.Count)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view); err != nil {
			s.logger.Warn("[dashboard] cache set %s: %v", key, err)
		}
	}
	return view
}

// Compute is the uncached recomputation: filter, then either the empty
// placeholder or three figures plus KPIs.
func (s *DashboardService) Compute(f Filter) *models.View {
	subset := s.Subset(f)
	report := s.insights.Generate(subset)

	if len(subset) == 0 {
		placeholder := Placeholder()
		return &models.View{
			Histogram: placeholder,
			Violin:    placeholder,
			Map:       placeholder,
			KPIs:      s.insights.KPIs(report),
			Report:    report,
			Empty:     true,
		}
	}

	mapFig, points := s.charts.Map(subset)
	return &models.View{
		Histogram: s.charts.Histogram(subset, f.PriceCeiling),
		Violin:    s.charts.Violin(subset, report.GroupStats),
		Map:       mapFig,
		KPIs:      s.insights.KPIs(report),
		Report:    report,
		MapPoints: points,
	}
}

// Warm computes and caches the view of every filter before serving.
// Duplicate keys are computed once, and rateLimitMs spaces out the cache
// writes (0 disables it). It returns the number of views cached.
func (s *DashboardService) Warm(ctx context.Context, filters []Filter, concurrency, rateLimitMs int) int {
	if s.cache == nil {
		return 0
	}

	claimed := utils.NewKeySet()
	pool := utils.NewWorkerPool(concurrency, rateLimitMs)
	var stored int64

	for _, f := range filters {
		if !claimed.Add(f.Key()) {
			continue
		}
		f := f
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			if err := s.cache.Set(ctx, f.Key(), s.Compute(f)); err != nil {
				s.logger.Warn("[dashboard] warm %s: %v", f.Key(), err)
				return
			}
			atomic.AddInt64(&stored, 1)
		})
	}
	pool.Wait()

	s.logger.Info("[dashboard] Warmed %d/%d views", stored, claimed.Size())
	return int(stored)
}
