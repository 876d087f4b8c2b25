package services

import (
	"math"

	"github.com/Irisfrogy/data-visulization/models"
)

const (
	HistogramBins      = 50
	HistogramPriceCap  = 800.0
	binSlack           = 1e-6
	PriceAxisMax       = 600.0
	MapMarkerSizeMax   = 8.0
	MapZoom            = 9.8
	MapStyle           = "carto-positron"
	PlaceholderTitle   = "No data for selected filters"
	legendTitle        = "Neighbourhood Group"
	priceAxisTitle     = "Nightly Price (USD)"
	chartFontFamily    = "system-ui, -apple-system, 'Segoe UI', sans-serif"
	violinHoverLayout  = "Neighbourhood: %{x}<br>Price: %{y:$,.0f}<br>Room type: %{customdata[0]}<br>Min nights: %{customdata[1]}<br>Reviews: %{customdata[2]}<br><br>Group stats:<br>Min: %{customdata[3]:$,.0f}<br>Q1: %{customdata[4]:$,.0f}<br>Median: %{customdata[5]:$,.0f}<br>Q3: %{customdata[6]:$,.0f}<br>Max: %{customdata[7]:$,.0f}<extra></extra>"
	mapHoverLayout     = "<b>%{hovertext}</b><br><br>price=%{customdata[0]}<br>room_type=%{customdata[1]}<br>number_of_reviews=%{customdata[2]}<br>minimum_nights=%{customdata[3]}<extra></extra>"
	histogramHoverText = "%{fullData.name}<br>Price: %{x}<br>Listings: %{y}<extra></extra>"
)

// MapCenter is the fixed map reference point (Lower Manhattan).
var MapCenter = models.LatLon{Lat: 40.7128, Lon: -74.0060}

// RegionColors is the fixed borough palette.
var RegionColors = map[string]string{
	"Manhattan":     "#FF5A5F",
	"Brooklyn":      "#ff9286",
	"Queens":        "#a3cef1",
	"Bronx":         "#767676",
	"Staten Island": "#111111",
}

// fallbackColors cycle for regions outside RegionColors.
var fallbackColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartBuilder turns a filtered subset into plotly figures. Regions fixes
// the category order of every chart.
type ChartBuilder struct {
	regions []string
	colors  map[string]string
}

// NewChartBuilder creates a builder over the full ordered region list.
func NewChartBuilder(regions []string) *ChartBuilder {
	colors := make(map[string]string, len(regions))
	next := 0
	for _, r := range regions {
		if c, ok := RegionColors[r]; ok {
			colors[r] = c
			continue
		}
		colors[r] = fallbackColors[next%len(fallbackColors)]
		next++
	}
	return &ChartBuilder{regions: regions, colors: colors}
}

// Color returns the palette color of region.
func (b *ChartBuilder) Color(region string) string {
	if c, ok := b.colors[region]; ok {
		return c
	}
	return fallbackColors[0]
}

// HistogramCap is the histogram x-axis upper bound for a ceiling.
func HistogramCap(ceiling *float64) float64 {
	if ceiling != nil && *ceiling < HistogramPriceCap {
		return *ceiling
	}
	return HistogramPriceCap
}

// histogramBins covers [0, xMax] with HistogramBins equal bins. Plotly bins
// are half-open, so each bin is widened by binSlack to put a price equal to
// xMax in the last bin rather than in a 51st bin outside the axis range.
func histogramBins(xMax float64) *models.Bins {
	size := xMax / HistogramBins * (1 + binSlack)
	return &models.Bins{Start: 0, End: size * HistogramBins, Size: size}
}

// groupByRegion splits listings by region in category order, skipping
// regions without rows. keep filters rows before grouping.
func (b *ChartBuilder) groupByRegion(listings []*models.Listing, keep func(*models.Listing) bool) ([]string, map[string][]*models.Listing) {
	grouped := make(map[string][]*models.Listing)
	for _, l := range listings {
		if keep != nil && !keep(l) {
			continue
		}
		grouped[l.NeighbourhoodGroup] = append(grouped[l.NeighbourhoodGroup], l)
	}

	order := make([]string, 0, len(grouped))
	for _, r := range b.regions {
		if len(grouped[r]) > 0 {
			order = append(order, r)
		}
	}
	return order, grouped
}

// Histogram bins prices per region into HistogramBins equal bins over
// [0, HistogramCap(ceiling)]. Rows priced above the cap are left out.
func (b *ChartBuilder) Histogram(listings []*models.Listing, ceiling *float64) models.Figure {
	xMax := HistogramCap(ceiling)
	order, grouped := b.groupByRegion(listings, func(l *models.Listing) bool { return l.Price <= xMax })

	traces := make([]models.Trace, 0, len(order))
	for _, region := range order {
		prices := make([]float64, len(grouped[region]))
		for i, l := range grouped[region] {
			prices[i] = l.Price
		}
		traces = append(traces, models.Trace{
			Type:          "histogram",
			Name:          region,
			LegendGroup:   region,
			X:             prices,
			Opacity:       0.8,
			XBins:         histogramBins(xMax),
			Marker:        &models.Marker{Color: b.Color(region)},
			HoverTemplate: histogramHoverText,
		})
	}

	return models.Figure{
		Data: traces,
		Layout: models.Layout{
			Height:      220,
			Margin:      &models.Margin{L: 40, R: 5, T: 10, B: 30},
			XAxis:       fixedAxis(priceAxisTitle, []float64{0, xMax}),
			YAxis:       fixedAxis("Number of Listings", nil),
			BarMode:     "overlay",
			DragMode:    false,
			HoverMode:   "closest",
			ShowLegend:  true,
			Legend:      &models.Legend{Title: &models.Title{Text: legendTitle}},
			PlotBgColor: "white",
		},
	}
}

// Violin draws one price distribution per region with its box overlaid.
// Every point carries its listing fields and the region's price summary.
func (b *ChartBuilder) Violin(listings []*models.Listing, stats map[string]models.PriceStats) models.Figure {
	order, grouped := b.groupByRegion(listings, nil)

	traces := make([]models.Trace, 0, len(order))
	for _, region := range order {
		rows := grouped[region]
		st := stats[region]
		x := make([]string, len(rows))
		y := make([]float64, len(rows))
		custom := make([][]any, len(rows))
		for i, l := range rows {
			x[i] = region
			y[i] = l.Price
			custom[i] = []any{
				l.RoomType, l.MinimumNights, l.NumberOfReviews,
				st.Min, st.Q1, st.Median, st.Q3, st.Max,
			}
		}
		traces = append(traces, models.Trace{
			Type:          "violin",
			Name:          region,
			LegendGroup:   region,
			ScaleGroup:    region,
			X:             x,
			Y:             y,
			Box:           &models.Toggle{Visible: true},
			Points:        false,
			Marker:        &models.Marker{Color: b.Color(region)},
			CustomData:    custom,
			HoverTemplate: violinHoverLayout,
		})
	}

	tickAngle := 0
	xAxis := fixedAxis(legendTitle, nil)
	xAxis.TickAngle = &tickAngle
	xAxis.CategoryOrder = "array"
	xAxis.CategoryArray = b.regions

	return models.Figure{
		Data: traces,
		Layout: models.Layout{
			Height:      220,
			Margin:      &models.Margin{L: 40, R: 5, T: 10, B: 40},
			XAxis:       xAxis,
			YAxis:       fixedAxis(priceAxisTitle, []float64{0, PriceAxisMax}),
			ViolinMode:  "overlay",
			DragMode:    false,
			HoverMode:   "closest",
			ShowLegend:  true,
			Legend:      &models.Legend{Title: &models.Title{Text: legendTitle}},
			PlotBgColor: "white",
		},
	}
}

// Map places every listing with coordinates, sized by review count and
// colored by region. It returns the figure and the number of points.
func (b *ChartBuilder) Map(listings []*models.Listing) (models.Figure, int) {
	order, grouped := b.groupByRegion(listings, (*models.Listing).HasCoordinates)

	maxReviews := 0
	points := 0
	for _, rows := range grouped {
		points += len(rows)
		for _, l := range rows {
			if l.NumberOfReviews > maxReviews {
				maxReviews = l.NumberOfReviews
			}
		}
	}
	sizeRef := 1.0
	if maxReviews > 0 {
		sizeRef = 2 * float64(maxReviews) / math.Pow(MapMarkerSizeMax, 2)
	}

	traces := make([]models.Trace, 0, len(order))
	for _, region := range order {
		rows := grouped[region]
		lat := make([]float64, len(rows))
		lon := make([]float64, len(rows))
		size := make([]float64, len(rows))
		names := make([]string, len(rows))
		custom := make([][]any, len(rows))
		for i, l := range rows {
			lat[i] = *l.Latitude
			lon[i] = *l.Longitude
			size[i] = float64(l.NumberOfReviews)
			names[i] = l.Neighbourhood
			custom[i] = []any{l.Price, l.RoomType, l.NumberOfReviews, l.MinimumNights}
		}
		traces = append(traces, models.Trace{
			Type:        "scattermapbox",
			Name:        region,
			LegendGroup: region,
			Mode:        "markers",
			Lat:         lat,
			Lon:         lon,
			Marker: &models.Marker{
				Color:    b.Color(region),
				Opacity:  0.6,
				Size:     size,
				SizeMode: "area",
				SizeRef:  sizeRef,
			},
			HoverText:     names,
			CustomData:    custom,
			HoverTemplate: mapHoverLayout,
		})
	}

	return models.Figure{
		Data: traces,
		Layout: models.Layout{
			Height:       260,
			Margin:       &models.Margin{L: 0, R: 0, T: 10, B: 0},
			ShowLegend:   true,
			Legend:       &models.Legend{Title: &models.Title{Text: legendTitle}},
			Mapbox:       &models.Mapbox{Style: MapStyle, Center: MapCenter, Zoom: MapZoom},
			PaperBgColor: "#FFFFFF",
			Font:         &models.Font{Family: chartFontFamily, Size: 11},
		},
	}, points
}

// Placeholder is shown in every chart pane when no listing matches.
func Placeholder() models.Figure {
	hidden := false
	return models.Figure{
		Data: []models.Trace{},
		Layout: models.Layout{
			Title:       &models.Title{Text: PlaceholderTitle},
			Height:      220,
			XAxis:       &models.Axis{Visible: &hidden},
			YAxis:       &models.Axis{Visible: &hidden},
			PlotBgColor: "white",
		},
	}
}

// fixedAxis is a non-interactive axis styled like a plain white template.
func fixedAxis(title string, rng []float64) *models.Axis {
	return &models.Axis{
		Title:      &models.Title{Text: title},
		Range:      rng,
		FixedRange: true,
		ShowLine:   true,
		Ticks:      "outside",
	}
}
