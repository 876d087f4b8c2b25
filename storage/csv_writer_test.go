package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Irisfrogy/data-visulization/models"
)

func ptr(v float64) *float64 { return &v }

func TestCSVWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	err = w.Write([]*models.Listing{
		{Price: 149, NeighbourhoodGroup: "Brooklyn", RoomType: "Private room", MinimumNights: 1,
			NumberOfReviews: 9, Latitude: ptr(40.64749), Longitude: ptr(-73.97237), Neighbourhood: "Kensington"},
		{Price: 99.5, NeighbourhoodGroup: "Queens", RoomType: "Shared room", MinimumNights: 2,
			Neighbourhood: "Astoria, East"},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3\n%s", len(lines), buf.String())
	}
	if lines[0] != strings.Join(RequiredColumns, ",") {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "149,Brooklyn,Private room,1,9,40.64749,-73.97237,Kensington" {
		t.Errorf("row 1: got %q", lines[1])
	}
	if lines[2] != `99.5,Queens,Shared room,2,0,,,"Astoria, East"` {
		t.Errorf("row 2: got %q", lines[2])
	}
}

func TestCSVWriterReadableByReader(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]*models.Listing{
		{Price: 80, NeighbourhoodGroup: "Bronx", RoomType: "Private room", MinimumNights: 3, NumberOfReviews: 4,
			Latitude: ptr(40.8), Longitude: ptr(-73.9), Neighbourhood: "Fordham"},
	}); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV of exported data: %v", err)
	}
	if len(rows) != 1 || rows[0].NeighbourhoodGroup != "Bronx" || rows[0].Price != 80 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}
