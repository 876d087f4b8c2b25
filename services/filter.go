package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Irisfrogy/data-visulization/models"
)

const (
	// AllOption matches every value of a categorical selector.
	AllOption = "All"
	// NoCeiling leaves the price unbounded.
	NoCeiling = "none"
)

// ErrInvalidCeiling is returned for a price ceiling that is neither
// NoCeiling nor a positive number.
var ErrInvalidCeiling = errors.New("invalid price ceiling")

// SelectOption is one entry of a selector.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PriceCeilingOptions are the ceilings offered by the selector.
var PriceCeilingOptions = []SelectOption{
	{Label: "No limit", Value: NoCeiling},
	{Label: "$200", Value: "200"},
	{Label: "$400", Value: "400"},
	{Label: "$600", Value: "600"},
	{Label: "$800", Value: "800"},
	{Label: "$1000", Value: "1000"},
}

// SelectorOptions returns values as options, preceded by AllOption.
func SelectorOptions(values []string) []SelectOption {
	opts := make([]SelectOption, 0, len(values)+1)
	opts = append(opts, SelectOption{Label: AllOption, Value: AllOption})
	for _, v := range values {
		opts = append(opts, SelectOption{Label: v, Value: v})
	}
	return opts
}

// Filter is one selector tuple. Empty or AllOption selectors match every
// listing; a nil PriceCeiling is unbounded.
type Filter struct {
	NeighbourhoodGroup string
	RoomType           string
	PriceCeiling       *float64
}

// DefaultFilter is the view shown at first load: the whole dataset.
func DefaultFilter() Filter {
	return Filter{NeighbourhoodGroup: AllOption, RoomType: AllOption}
}

// ParseFilter builds a Filter from raw selector values.
func ParseFilter(group, roomType, ceiling string) (Filter, error) {
	f := Filter{
		NeighbourhoodGroup: normaliseSelector(group),
		RoomType:           normaliseSelector(roomType),
	}

	ceiling = strings.TrimSpace(ceiling)
	if ceiling == "" || strings.EqualFold(ceiling, NoCeiling) {
		return f, nil
	}
	v, err := strconv.ParseFloat(ceiling, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidCeiling, ceiling)
	}
	f.PriceCeiling = &v
	return f, nil
}

func normaliseSelector(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, AllOption) {
		return AllOption
	}
	return v
}

func (f Filter) matchesAll(v string) bool {
	return v == "" || v == AllOption
}

// Match reports whether l passes all three predicates.
func (f Filter) Match(l *models.Listing) bool {
	if !f.matchesAll(f.NeighbourhoodGroup) && l.NeighbourhoodGroup != f.NeighbourhoodGroup {
		return false
	}
	if !f.matchesAll(f.RoomType) && l.RoomType != f.RoomType {
		return false
	}
	if f.PriceCeiling != nil && l.Price > *f.PriceCeiling {
		return false
	}
	return true
}

// Apply returns the matching listings in their original order.
func (f Filter) Apply(listings []*models.Listing) []*models.Listing {
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// CeilingLabel renders the ceiling as a selector value.
func (f Filter) CeilingLabel() string {
	if f.PriceCeiling == nil {
		return NoCeiling
	}
	return strconv.FormatFloat(*f.PriceCeiling, 'f', -1, 64)
}

// Key is a canonical identity for caching computed views.
func (f Filter) Key() string {
	group, room := f.NeighbourhoodGroup, f.RoomType
	if f.matchesAll(group) {
		group = AllOption
	}
	if f.matchesAll(room) {
		room = AllOption
	}
	return group + "|" + room + "|" + f.CeilingLabel()
}

// AllFilters enumerates every combination the selectors can produce.
func AllFilters(d *models.Dataset) []Filter {
	groups := append([]string{AllOption}, d.Regions...)
	rooms := append([]string{AllOption}, d.RoomTypes...)

	filters := make([]Filter, 0, len(groups)*len(rooms)*len(PriceCeilingOptions))
	for _, g := range groups {
		for _, r := range rooms {
			for _, c := range PriceCeilingOptions {
				f, err := ParseFilter(g, r, c.Value)
				if err != nil {
					continue
				}
				filters = append(filters, f)
			}
		}
	}
	return filters
}
