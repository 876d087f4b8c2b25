package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/utils"
)

type memoryCache struct {
	mu     sync.Mutex
	views  map[string]*models.View
	sets   int
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: make(map[string]*models.View)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*models.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.views[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, v *models.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[key] = v
	c.sets++
	return nil
}

func newTestDashboard(cache ViewCache) *DashboardService {
	return NewDashboardService(models.NewDataset(sampleListings()), cache, utils.NewLogger())
}

func mustFilter(t *testing.T, group, room, ceiling string) Filter {
	t.Helper()
	f, err := ParseFilter(group, room, ceiling)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	return f
}

func histogramMax(v *models.View) float64 { return v.Histogram.Layout.XAxis.Range[1] }

func TestComputeDefaultViewIsWholeDataset(t *testing.T) {
	svc := newTestDashboard(nil)
	v := svc.Compute(DefaultFilter())

	if v.Empty {
		t.Fatal("default view should not be empty")
	}
	if v.Report.Count != len(sampleListings()) {
		t.Errorf("Count: got %d, want %d", v.Report.Count, len(sampleListings()))
	}
	if v.KPIs.ListingCount != "8" {
		t.Errorf("ListingCount: got %q", v.KPIs.ListingCount)
	}
	if got := histogramMax(v); got != 800 {
		t.Errorf("histogram x max: got %v, want 800", got)
	}
}

func TestComputeManhattanScenario(t *testing.T) {
	svc := newTestDashboard(nil)
	v := svc.Compute(mustFilter(t, "Manhattan", "All", "none"))

	var sum, nights float64
	n := 0
	for _, l := range sampleListings() {
		if l.NeighbourhoodGroup == "Manhattan" {
			sum += l.Price
			nights += float64(l.MinimumNights)
			n++
		}
	}
	if v.Report.Count != n {
		t.Fatalf("Count: got %d, want %d", v.Report.Count, n)
	}
	if math.Abs(v.Report.AveragePrice-sum/float64(n)) > 1e-9 {
		t.Errorf("AveragePrice: got %v, want %v", v.Report.AveragePrice, sum/float64(n))
	}
	if math.Abs(v.Report.AverageMinNights-nights/float64(n)) > 1e-9 {
		t.Errorf("AverageMinNights: got %v, want %v", v.Report.AverageMinNights, nights/float64(n))
	}
	if len(v.Violin.Data) != 1 || v.Violin.Data[0].Name != "Manhattan" {
		t.Errorf("violin traces: got %d", len(v.Violin.Data))
	}
}

func TestComputePriceCeilingScenario(t *testing.T) {
	svc := newTestDashboard(nil)
	v := svc.Compute(mustFilter(t, "All", "All", "200"))

	if got := histogramMax(v); got != 200 {
		t.Errorf("histogram x max: got %v, want 200", got)
	}
	for _, tr := range v.Histogram.Data {
		for _, p := range tr.X.([]float64) {
			if p > 200 {
				t.Errorf("histogram trace %s holds price %v above ceiling", tr.Name, p)
			}
		}
		if math.Abs(tr.XBins.Size-4) > 1e-4 {
			t.Errorf("bin size: got %v, want 200/50", tr.XBins.Size)
		}
	}
	for _, tr := range v.Violin.Data {
		for _, p := range tr.Y {
			if p > 200 {
				t.Errorf("violin trace %s holds price %v above ceiling", tr.Name, p)
			}
		}
	}
	if v.Report.Count != 6 {
		t.Errorf("Count: got %d, want 6", v.Report.Count)
	}
}

func TestHistogramCap(t *testing.T) {
	svc := newTestDashboard(nil)
	tests := []struct {
		ceiling string
		want    float64
	}{
		{"none", 800},
		{"1000", 800},
		{"800", 800},
		{"400", 400},
		{"75", 75},
	}
	for _, tt := range tests {
		v := svc.Compute(mustFilter(t, "All", "All", tt.ceiling))
		if v.Empty {
			t.Fatalf("ceiling %s unexpectedly empty", tt.ceiling)
		}
		if got := histogramMax(v); got != tt.want {
			t.Errorf("ceiling %s: histogram x max got %v, want %v", tt.ceiling, got, tt.want)
		}
	}
}

func TestHistogramLeavesOutPricesAboveCap(t *testing.T) {
	svc := newTestDashboard(nil)
	v := svc.Compute(mustFilter(t, "Manhattan", "Entire home/apt", "none"))

	if v.Report.Count != 2 {
		t.Fatalf("Count: got %d, want 2", v.Report.Count)
	}
	prices := v.Histogram.Data[0].X.([]float64)
	if len(prices) != 1 || prices[0] != 150 {
		t.Errorf("histogram prices: got %v, want [150]", prices)
	}
}

func TestHistogramBinsKeepPricesAtCap(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		ceiling *float64
	}{
		{"ceiling 250", 250, coord(250)},
		{"no ceiling", HistogramPriceCap, nil},
		{"ceiling above cap", HistogramPriceCap, coord(1000)},
	}
	for _, tt := range tests {
		b := NewChartBuilder([]string{"Manhattan"})
		listings := []*models.Listing{{Price: tt.price, NeighbourhoodGroup: "Manhattan", RoomType: "Private room", MinimumNights: 1}}
		fig := b.Histogram(listings, tt.ceiling)

		if len(fig.Data) != 1 {
			t.Fatalf("%s: traces got %d, want 1", tt.name, len(fig.Data))
		}
		bins := fig.Data[0].XBins
		if tt.price < bins.Start || tt.price >= bins.End {
			t.Errorf("%s: price %v outside bins [%v, %v)", tt.name, tt.price, bins.Start, bins.End)
		}
		// same bin lookup plotly.js performs
		if idx := math.Floor((tt.price-bins.Start)/bins.Size + 1e-9); idx != HistogramBins-1 {
			t.Errorf("%s: price %v lands in bin %v, want last bin %d", tt.name, tt.price, idx, HistogramBins-1)
		}
		if got := fig.Layout.XAxis.Range[1]; got != tt.price {
			t.Errorf("%s: x range max got %v, want %v", tt.name, got, tt.price)
		}
		if bins.End > tt.price*(1+1e-5) {
			t.Errorf("%s: bins end %v runs past the axis max %v", tt.name, bins.End, tt.price)
		}
	}
}

func TestViolinAxisIsConstant(t *testing.T) {
	svc := newTestDashboard(nil)
	for _, f := range AllFilters(svc.Dataset()) {
		v := svc.Compute(f)
		if v.Empty {
			continue
		}
		rng := v.Violin.Layout.YAxis.Range
		if len(rng) != 2 || rng[0] != 0 || rng[1] != 600 {
			t.Errorf("%s: violin y range got %v, want [0 600]", f.Key(), rng)
		}
		if !v.Violin.Layout.YAxis.FixedRange {
			t.Errorf("%s: violin y axis should be fixed", f.Key())
		}
	}
}

func TestViolinCategoryOrderAndHover(t *testing.T) {
	svc := newTestDashboard(nil)
	v := svc.Compute(DefaultFilter())

	want := []string{"Bronx", "Brooklyn", "Manhattan", "Queens"}
	got := v.Violin.Layout.XAxis.CategoryArray
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("category array: got %v, want %v", got, want)
	}
	for i, tr := range v.Violin.Data {
		if tr.Name != want[i] {
			t.Errorf("trace %d: got %s, want %s", i, tr.Name, want[i])
		}
	}

	manhattan := v.Violin.Data[2]
	if len(manhattan.CustomData) != 4 {
		t.Fatalf("customdata rows: got %d, want 4", len(manhattan.CustomData))
	}
	row := manhattan.CustomData[0]
	if len(row) != 8 {
		t.Fatalf("customdata width: got %d, want 8", len(row))
	}
	if row[5] != 200.0 {
		t.Errorf("median in hover data: got %v, want 200", row[5])
	}
	if !strings.Contains(manhattan.HoverTemplate, "Median") {
		t.Error("hover template should show the group summary")
	}
}

func TestMapExcludesRowsWithoutCoordinates(t *testing.T) {
	svc := newTestDashboard(nil)
	for _, f := range AllFilters(svc.Dataset()) {
		v := svc.Compute(f)
		subset := f.Apply(sampleListings())

		want := 0
		for _, l := range subset {
			if l.HasCoordinates() {
				want++
			}
		}
		if v.MapPoints != want {
			t.Errorf("%s: map points got %d, want %d", f.Key(), v.MapPoints, want)
		}
		if v.MapPoints > v.Report.Count {
			t.Errorf("%s: more map points than listings", f.Key())
		}

		plotted := 0
		for _, tr := range v.Map.Data {
			plotted += len(tr.Lat)
		}
		if plotted != want {
			t.Errorf("%s: plotted %d points, want %d", f.Key(), plotted, want)
		}
	}
}

func TestMapKeepsKPIsForRowsWithoutCoordinates(t *testing.T) {
	svc := newTestDashboard(nil)
	v := svc.Compute(mustFilter(t, "Manhattan", "Private room", "none"))

	if v.Report.Count != 2 {
		t.Errorf("Count: got %d, want 2 (row without coordinates included)", v.Report.Count)
	}
	if v.MapPoints != 1 {
		t.Errorf("MapPoints: got %d, want 1", v.MapPoints)
	}
	if v.Map.Layout.Mapbox.Zoom != MapZoom || v.Map.Layout.Mapbox.Center != MapCenter {
		t.Errorf("map viewport: got %+v", v.Map.Layout.Mapbox)
	}
}

func TestComputeEmptySubset(t *testing.T) {
	svc := newTestDashboard(nil)
	cases := []Filter{
		mustFilter(t, "Staten Island", "All", "none"),
		mustFilter(t, "Queens", "Entire home/apt", "none"),
		mustFilter(t, "All", "All", "10"),
	}
	for _, f := range cases {
		v := svc.Compute(f)
		if !v.Empty {
			t.Errorf("%s: expected empty view", f.Key())
		}
		if v.KPIs.AveragePrice != "N/A" || v.KPIs.ListingCount != "N/A" || v.KPIs.AverageMinNights != "N/A" {
			t.Errorf("%s: KPIs got %+v", f.Key(), v.KPIs)
		}
		for _, fig := range []models.Figure{v.Histogram, v.Violin, v.Map} {
			if fig.Layout.Title == nil || fig.Layout.Title.Text != PlaceholderTitle {
				t.Errorf("%s: placeholder title missing", f.Key())
			}
			if fig.Layout.XAxis.Visible == nil || *fig.Layout.XAxis.Visible {
				t.Errorf("%s: placeholder axes should be hidden", f.Key())
			}
		}
	}
}

func TestEmptyIffNoListings(t *testing.T) {
	svc := newTestDashboard(nil)
	for _, f := range AllFilters(svc.Dataset()) {
		v := svc.Compute(f)
		if v.Empty != (len(f.Apply(sampleListings())) == 0) {
			t.Errorf("%s: Empty=%v with %d listings", f.Key(), v.Empty, v.Report.Count)
		}
		if v.Empty != (v.KPIs.ListingCount == "N/A") {
			t.Errorf("%s: Empty=%v but ListingCount %q", f.Key(), v.Empty, v.KPIs.ListingCount)
		}
	}
}

func TestViewJSON(t *testing.T) {
	svc := newTestDashboard(nil)

	body, err := json.Marshal(svc.Compute(DefaultFilter()))
	if err != nil {
		t.Fatal(err)
	}
	s := string(body)
	for _, want := range []string{`"type":"violin"`, `"points":false`, `"barmode":"overlay"`, `"style":"carto-positron"`, `"dragmode":false`} {
		if !strings.Contains(s, want) {
			t.Errorf("view JSON missing %s", want)
		}
	}

	empty, err := json.Marshal(svc.Compute(mustFilter(t, "Staten Island", "All", "none")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(empty), `"data":[]`) {
		t.Error("placeholder figure should encode an empty data array")
	}
}

func TestComputeViewUsesCache(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestDashboard(cache)
	f := mustFilter(t, "Brooklyn", "All", "none")

	first := svc.ComputeView(context.Background(), f)
	if cache.sets != 1 {
		t.Fatalf("cache sets: got %d, want 1", cache.sets)
	}
	second := svc.ComputeView(context.Background(), f)
	if first != second {
		t.Error("second call should be served from cache")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets after hit: got %d, want 1", cache.sets)
	}
}

func TestComputeViewIgnoresCacheErrors(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	svc := newTestDashboard(cache)

	v := svc.ComputeView(context.Background(), DefaultFilter())
	if v == nil || v.Report.Count != 8 {
		t.Errorf("view should be computed when the cache fails, got %+v", v)
	}
}

func TestWarm(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestDashboard(cache)

	filters := AllFilters(svc.Dataset())
	filters = append(filters, DefaultFilter(), DefaultFilter())

	n := svc.Warm(context.Background(), filters, 4, 0)
	want := len(AllFilters(svc.Dataset()))
	if n != want {
		t.Errorf("warmed: got %d, want %d", n, want)
	}
	if len(cache.views) != want {
		t.Errorf("cached views: got %d, want %d", len(cache.views), want)
	}

	if got := newTestDashboard(nil).Warm(context.Background(), filters, 4, 0); got != 0 {
		t.Errorf("warm without cache: got %d, want 0", got)
	}
}

func TestWarmRateLimit(t *testing.T) {
	cache := newMemoryCache()
	svc := newTestDashboard(cache)
	filters := AllFilters(svc.Dataset())[:3]

	start := time.Now()
	if n := svc.Warm(context.Background(), filters, 4, 20); n != 3 {
		t.Fatalf("warmed: got %d, want 3", n)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("warm with 20ms rate finished in %v, want at least 40ms", elapsed)
	}
}
