package models

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// RawListing holds one row as read from the source table, before cleaning.
// Missing numeric cells are NaN.
type RawListing struct {
	Price              float64
	NeighbourhoodGroup string
	RoomType           string
	MinimumNights      float64
	NumberOfReviews    float64
	Latitude           float64
	Longitude          float64
	Neighbourhood      string
}

// Listing is the cleaned, validated record served by the dashboard.
// Listings are never mutated after the dataset is built.
type Listing struct {
	Price              float64  `json:"price"`
	NeighbourhoodGroup string   `json:"neighbourhood_group"`
	RoomType           string   `json:"room_type"`
	MinimumNights      int      `json:"minimum_nights"`
	NumberOfReviews    int      `json:"number_of_reviews"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	Neighbourhood      string   `json:"neighbourhood"`
}

// HasCoordinates reports whether the listing can be placed on the map.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil &&
		!math.IsNaN(*l.Latitude) && !math.IsNaN(*l.Longitude)
}

// Dataset is the process-lifetime snapshot of listings.
// Regions and RoomTypes are sorted and drive selector and chart ordering.
type Dataset struct {
	Listings  []*Listing
	Regions   []string
	RoomTypes []string
}

// NewDataset builds a Dataset over listings. The slice is owned by the
// Dataset from here on.
func NewDataset(listings []*Listing) *Dataset {
	return &Dataset{
		Listings:  listings,
		Regions:   distinct(listings, func(l *Listing) string { return l.NeighbourhoodGroup }),
		RoomTypes: distinct(listings, func(l *Listing) string { return l.RoomType }),
	}
}

// Len returns the number of listings.
func (d *Dataset) Len() int { return len(d.Listings) }

// Fingerprint identifies the snapshot contents. Two datasets with the same
// rows in the same order share a fingerprint.
func (d *Dataset) Fingerprint() string {
	h := fnv.New64a()
	var buf [8]byte
	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, l := range d.Listings {
		writeFloat(l.Price)
		h.Write([]byte(l.NeighbourhoodGroup))
		h.Write([]byte{0})
		h.Write([]byte(l.RoomType))
		h.Write([]byte{0})
		writeFloat(float64(l.MinimumNights))
		writeFloat(float64(l.NumberOfReviews))
		if l.HasCoordinates() {
			writeFloat(*l.Latitude)
			writeFloat(*l.Longitude)
		}
		h.Write([]byte(l.Neighbourhood))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func distinct(listings []*Listing, field func(*Listing) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, l := range listings {
		v := field(l)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// PriceStats is the five-number price summary of one region.
type PriceStats struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// InsightReport holds the computed analytics over a filtered subset.
type InsightReport struct {
	Count            int                   `json:"count"`
	AveragePrice     float64               `json:"average_price"`
	AverageMinNights float64               `json:"average_min_nights"`
	GroupStats       map[string]PriceStats `json:"group_stats"`
}
