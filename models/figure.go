package models

// Figure is a plotly figure: traces plus layout, rendered by plotly.js.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of plotly trace attributes the dashboard emits.
// X holds []float64 for numeric axes and []string for categorical ones.
type Trace struct {
	Type          string      `json:"type"`
	Name          string      `json:"name,omitempty"`
	LegendGroup   string      `json:"legendgroup,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	X             interface{} `json:"x,omitempty"`
	Y             []float64   `json:"y,omitempty"`
	Lat           []float64   `json:"lat,omitempty"`
	Lon           []float64   `json:"lon,omitempty"`
	Opacity       float64     `json:"opacity,omitempty"`
	XBins         *Bins       `json:"xbins,omitempty"`
	Box           *Toggle     `json:"box,omitempty"`
	Points        interface{} `json:"points,omitempty"`
	ScaleGroup    string      `json:"scalegroup,omitempty"`
	Marker        *Marker     `json:"marker,omitempty"`
	HoverText     []string    `json:"hovertext,omitempty"`
	CustomData    [][]any     `json:"customdata,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
}

// Bins fixes histogram bin edges.
type Bins struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Size  float64 `json:"size"`
}

// Toggle is a {"visible": bool} sub-object.
type Toggle struct {
	Visible bool `json:"visible"`
}

// Marker styles the points or bars of a trace.
type Marker struct {
	Color    string    `json:"color,omitempty"`
	Opacity  float64   `json:"opacity,omitempty"`
	Size     []float64 `json:"size,omitempty"`
	SizeMode string    `json:"sizemode,omitempty"`
	SizeRef  float64   `json:"sizeref,omitempty"`
}

// Layout is the subset of plotly layout attributes the dashboard emits.
type Layout struct {
	Title        *Title      `json:"title,omitempty"`
	Height       int         `json:"height,omitempty"`
	Margin       *Margin     `json:"margin,omitempty"`
	XAxis        *Axis       `json:"xaxis,omitempty"`
	YAxis        *Axis       `json:"yaxis,omitempty"`
	BarMode      string      `json:"barmode,omitempty"`
	ViolinMode   string      `json:"violinmode,omitempty"`
	DragMode     interface{} `json:"dragmode,omitempty"`
	HoverMode    string      `json:"hovermode,omitempty"`
	ShowLegend   bool        `json:"showlegend"`
	Legend       *Legend     `json:"legend,omitempty"`
	Mapbox       *Mapbox     `json:"mapbox,omitempty"`
	PaperBgColor string      `json:"paper_bgcolor,omitempty"`
	PlotBgColor  string      `json:"plot_bgcolor,omitempty"`
	Font         *Font       `json:"font,omitempty"`
}

// Title is a plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Axis covers both cartesian axes. Visible and TickAngle are pointers
// because their zero values are meaningful to plotly.
type Axis struct {
	Title         *Title    `json:"title,omitempty"`
	Visible       *bool     `json:"visible,omitempty"`
	Range         []float64 `json:"range,omitempty"`
	FixedRange    bool      `json:"fixedrange,omitempty"`
	TickAngle     *int      `json:"tickangle,omitempty"`
	CategoryOrder string    `json:"categoryorder,omitempty"`
	CategoryArray []string  `json:"categoryarray,omitempty"`
	ShowLine      bool      `json:"showline,omitempty"`
	ShowGrid      bool      `json:"showgrid"`
	Ticks         string    `json:"ticks,omitempty"`
}

// Legend configures the legend box.
type Legend struct {
	Title *Title `json:"title,omitempty"`
}

// Mapbox is the tile map viewport.
type Mapbox struct {
	Style  string  `json:"style"`
	Center LatLon  `json:"center"`
	Zoom   float64 `json:"zoom"`
}

// LatLon is a map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Font is the global chart font.
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
}

// KPIs are the three headline metrics as displayed.
type KPIs struct {
	AveragePrice     string `json:"avg_price"`
	ListingCount     string `json:"num_listings"`
	AverageMinNights string `json:"avg_min_nights"`
}

// View is everything the page needs after one filter change.
type View struct {
	Histogram Figure         `json:"histogram"`
	Violin    Figure         `json:"violin"`
	Map       Figure         `json:"map"`
	KPIs      KPIs           `json:"kpis"`
	Report    *InsightReport `json:"report,omitempty"`
	Empty     bool           `json:"empty"`
	MapPoints int            `json:"map_points"`
}
