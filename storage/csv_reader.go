package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/Irisfrogy/data-visulization/models"
)

// Column names of the listing table.
const (
	ColPrice              = "price"
	ColNeighbourhoodGroup = "neighbourhood_group"
	ColRoomType           = "room_type"
	ColMinimumNights      = "minimum_nights"
	ColNumberOfReviews    = "number_of_reviews"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColNeighbourhood      = "neighbourhood"
)

// RequiredColumns lists every column the dashboard reads.
var RequiredColumns = []string{
	ColPrice, ColNeighbourhoodGroup, ColRoomType, ColMinimumNights,
	ColNumberOfReviews, ColLatitude, ColLongitude, ColNeighbourhood,
}

// ErrMissingColumn is returned when the table lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var columnTypes = map[string]series.Type{
	ColPrice:              series.Float,
	ColNeighbourhoodGroup: series.String,
	ColRoomType:           series.String,
	ColMinimumNights:      series.Float,
	ColNumberOfReviews:    series.Float,
	ColLatitude:           series.Float,
	ColLongitude:          series.Float,
	ColNeighbourhood:      series.String,
}

// ReadCSVFile opens path and reads its listings.
func ReadCSVFile(path string) ([]*models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a listing table. Columns beyond RequiredColumns are
// ignored; blank or unparseable numeric cells come back as NaN.
func ReadCSV(r io.Reader) ([]*models.RawListing, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithTypes(columnTypes),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "null"}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("csv: parse: %w", df.Err)
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: %w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	price := df.Col(ColPrice).Float()
	minNights := df.Col(ColMinimumNights).Float()
	reviews := df.Col(ColNumberOfReviews).Float()
	lat := df.Col(ColLatitude).Float()
	lon := df.Col(ColLongitude).Float()
	groups := stringColumn(df, ColNeighbourhoodGroup)
	rooms := stringColumn(df, ColRoomType)
	hoods := stringColumn(df, ColNeighbourhood)

	rows := make([]*models.RawListing, df.Nrow())
	for i := range rows {
		rows[i] = &models.RawListing{
			Price:              price[i],
			NeighbourhoodGroup: groups[i],
			RoomType:           rooms[i],
			MinimumNights:      minNights[i],
			NumberOfReviews:    reviews[i],
			Latitude:           lat[i],
			Longitude:          lon[i],
			Neighbourhood:      hoods[i],
		}
	}
	return rows, nil
}

// stringColumn returns the column's cells with NaN cells blanked.
func stringColumn(df dataframe.DataFrame, name string) []string {
	col := df.Col(name)
	values := col.Records()
	for i, nan := range col.IsNaN() {
		if nan {
			values[i] = ""
		}
	}
	return values
}
