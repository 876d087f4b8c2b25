package services

import (
	"math"
	"strings"
	"unicode"

	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/utils"
)

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean keeps rows with a positive price, both categories and a positive
// minimum stay. Missing review counts become 0; missing or out-of-range
// coordinates become nil so the row stays out of the map only.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	result := make([]*models.Listing, 0, len(raw))
	var badPrice, badCategory, badNights int

	for i, r := range raw {
		if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price <= 0 {
			badPrice++
			c.logger.Debug("[cleaner] Row %d dropped: non-positive price %v", i, r.Price)
			continue
		}

		group := normaliseText(r.NeighbourhoodGroup)
		room := normaliseText(r.RoomType)
		if group == "" || room == "" {
			badCategory++
			c.logger.Debug("[cleaner] Row %d dropped: missing neighbourhood group or room type", i)
			continue
		}

		if math.IsNaN(r.MinimumNights) || r.MinimumNights < 1 {
			badNights++
			c.logger.Debug("[cleaner] Row %d dropped: invalid minimum nights %v", i, r.MinimumNights)
			continue
		}

		listing := &models.Listing{
			Price:              r.Price,
			NeighbourhoodGroup: group,
			RoomType:           room,
			MinimumNights:      int(math.Round(r.MinimumNights)),
			NumberOfReviews:    parseReviews(r.NumberOfReviews),
			Latitude:           coordinate(r.Latitude, 90),
			Longitude:          coordinate(r.Longitude, 180),
			Neighbourhood:      normaliseText(r.Neighbourhood),
		}
		result = append(result, listing)
	}

	if badPrice > 0 {
		c.logger.Warn("[cleaner] Dropped %d listings with a non-positive or missing price", badPrice)
	}
	if badCategory > 0 {
		c.logger.Warn("[cleaner] Dropped %d listings without neighbourhood group or room type", badCategory)
	}
	if badNights > 0 {
		c.logger.Warn("[cleaner] Dropped %d listings with invalid minimum nights", badNights)
	}
	if priced := badCategory + badNights; priced > 0 {
		c.logger.Warn("[cleaner] %d priced listings excluded from every view, including All/All", priced)
	}
	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

func parseReviews(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}

func coordinate(v, limit float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return nil
	}
	return &v
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
