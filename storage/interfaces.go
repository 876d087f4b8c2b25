package storage

import "github.com/Irisfrogy/data-visulization/models"

// ListingWriter is the interface any listing sink must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListingReader loads a previously stored listing snapshot.
type ListingReader interface {
	FetchAll() ([]*models.Listing, error)
	Close() error
}
