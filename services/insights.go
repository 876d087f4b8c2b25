package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the KPIs and per-region price summaries of listings.
// Averages are left unrounded.
func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		GroupStats: make(map[string]models.PriceStats),
	}

	if len(listings) == 0 {
		return report
	}

	report.Count = len(listings)

	var totalPrice, totalNights float64
	prices := make(map[string][]float64)
	for _, l := range listings {
		totalPrice += l.Price
		totalNights += float64(l.MinimumNights)
		prices[l.NeighbourhoodGroup] = append(prices[l.NeighbourhoodGroup], l.Price)
	}
	report.AveragePrice = totalPrice / float64(report.Count)
	report.AverageMinNights = totalNights / float64(report.Count)

	for group, values := range prices {
		report.GroupStats[group] = Summarise(values)
	}

	return report
}

// KPIs renders the report's headline metrics for display.
func (s *InsightService) KPIs(r *models.InsightReport) models.KPIs {
	if r == nil || r.Count == 0 {
		return models.KPIs{
			AveragePrice:     utils.NotAvailable,
			ListingCount:     utils.NotAvailable,
			AverageMinNights: utils.NotAvailable,
		}
	}
	return models.KPIs{
		AveragePrice:     utils.FormatDollars(r.AveragePrice),
		ListingCount:     utils.FormatCount(r.Count),
		AverageMinNights: utils.FormatNights(r.AverageMinNights),
	}
}

// Summarise returns the five-number summary of values. values is sorted in place.
func Summarise(values []float64) models.PriceStats {
	if len(values) == 0 {
		return models.PriceStats{}
	}
	sort.Float64s(values)
	return models.PriceStats{
		Min:    values[0],
		Q1:     Quantile(values, 0.25),
		Median: Quantile(values, 0.5),
		Q3:     Quantile(values, 0.75),
		Max:    values[len(values)-1],
	}
}

// Quantile returns the p-quantile of sorted values, interpolating linearly
// between the two closest ranks at position (n-1)*p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Print writes a console summary of the report.
func (s *InsightService) Print(w io.Writer, title string, r *models.InsightReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 %s\033[0m\n", strings.ToUpper(title))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	kpis := s.KPIs(r)
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings               : \033[1m%s\033[0m\n", kpis.ListingCount)
	fmt.Fprintf(w, "  Average price          : \033[1;32m%s\033[0m\n", kpis.AveragePrice)
	fmt.Fprintf(w, "  Average minimum nights : \033[1m%s\033[0m\n", kpis.AverageMinNights)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price by Neighbourhood Group\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r == nil || len(r.GroupStats) == 0 {
		fmt.Fprintf(w, "  No price data available\n")
	} else {
		groups := make([]string, 0, len(r.GroupStats))
		for g := range r.GroupStats {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		fmt.Fprintf(w, "  %-15s %8s %8s %8s %8s %8s\n", "Group", "Min", "Q1", "Median", "Q3", "Max")
		for _, g := range groups {
			st := r.GroupStats[g]
			fmt.Fprintf(w, "  %-15s %8.0f %8.0f %8.0f %8.0f %8.0f\n",
				truncate(g, 15), st.Min, st.Q1, st.Median, st.Q3, st.Max)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
