package storage

import (
	"context"
	"testing"

	"github.com/Irisfrogy/data-visulization/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLStore(context.Background(), "sqlite3", ":memory:", nil)
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreWriteFetch(t *testing.T) {
	s := newTestStore(t)

	listings := make([]*models.Listing, 0, 120)
	for i := 0; i < 120; i++ {
		l := &models.Listing{
			Price:              float64(50 + i),
			NeighbourhoodGroup: "Manhattan",
			RoomType:           "Entire home/apt",
			MinimumNights:      1 + i%5,
			NumberOfReviews:    i,
			Neighbourhood:      "Chelsea",
		}
		if i%3 != 0 {
			l.Latitude = ptr(40.74)
			l.Longitude = ptr(-74.0)
		}
		listings = append(listings, l)
	}

	if err := s.Write(listings); err != nil {
		t.Fatalf("Write: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 120 {
		t.Errorf("Count: got %d, want 120", n)
	}

	got, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 120 {
		t.Fatalf("FetchAll len: got %d, want 120", len(got))
	}
	if got[0].Price != 50 || got[119].Price != 169 {
		t.Errorf("order not preserved: first %.0f last %.0f", got[0].Price, got[119].Price)
	}
	if got[0].HasCoordinates() {
		t.Error("row 0 was stored without coordinates")
	}
	if !got[1].HasCoordinates() || *got[1].Latitude != 40.74 {
		t.Errorf("row 1 coordinates lost: %+v", got[1])
	}
}

func TestSQLStoreWriteReplaces(t *testing.T) {
	s := newTestStore(t)

	first := []*models.Listing{{Price: 10, NeighbourhoodGroup: "Bronx", RoomType: "Private room", MinimumNights: 1}}
	second := []*models.Listing{
		{Price: 20, NeighbourhoodGroup: "Queens", RoomType: "Shared room", MinimumNights: 2},
		{Price: 30, NeighbourhoodGroup: "Queens", RoomType: "Shared room", MinimumNights: 2},
	}
	if err := s.Write(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(second); err != nil {
		t.Fatal(err)
	}

	got, err := s.FetchAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].NeighbourhoodGroup != "Queens" {
		t.Errorf("expected snapshot to be replaced, got %d rows", len(got))
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count after Clear: got %d", n)
	}
}

func TestSQLStoreUnsupportedDriver(t *testing.T) {
	if _, err := NewSQLStore(context.Background(), "mysql", "", nil); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
