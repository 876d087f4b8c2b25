package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/Irisfrogy/data-visulization/models"
)

var _ ListingWriter = (*CSVWriter)(nil)

// CSVWriter writes cleaned listings as CSV with the same column layout the
// dashboard reads. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	writer *csv.Writer
	closer io.Closer
}

// NewCSVWriter wraps w and writes the header row. If w is an io.Closer it is
// closed by Close.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(RequiredColumns); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	closer, _ := w.(io.Closer)
	return &CSVWriter{writer: cw, closer: closer}, nil
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			strconv.FormatFloat(l.Price, 'f', -1, 64),
			l.NeighbourhoodGroup,
			l.RoomType,
			strconv.Itoa(l.MinimumNights),
			strconv.Itoa(l.NumberOfReviews),
			formatOptional(l.Latitude),
			formatOptional(l.Longitude),
			l.Neighbourhood,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying writer when it is closable.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
