package subset

import (
	"errors"
	"fmt"
	"math"
	"path"
	"time"
)

const (
	// DateFormat is the layout of start and end dates.
	DateFormat = "2006-01-02"
	// DefaultFilterProperty is the image attribute matched against the bands.
	DefaultFilterProperty = "transmitterReceiverPolarisation"

	// MinScale and MaxScale bound the scale in metres. The service takes
	// whole metres.
	MinScale = 1
	MaxScale = 1_000_000
)

var ErrInvalidQuery = errors.New("invalid query")

// Query holds the parameters shared by every location of a run.
type Query struct {
	Product string
	Bands   []string
	Start   time.Time
	End     time.Time
	// Scale is the ground sample distance in metres.
	Scale float64
	// PadKm grows a point into a rectangle.
	PadKm float64
}

// Validate checks the parameters that can be checked locally. Scale is not
// compared with the native resolution of the product.
func (q Query) Validate() error {
	switch {
	case q.Product == "":
		return fmt.Errorf("%w: product is required", ErrInvalidQuery)
	case len(q.Bands) == 0:
		return fmt.Errorf("%w: at least one band is required", ErrInvalidQuery)
	case math.IsNaN(q.Scale) || q.Scale < MinScale || q.Scale > MaxScale:
		return fmt.Errorf("%w: scale must be between %d and %d metres, got %v",
			ErrInvalidQuery, MinScale, MaxScale, q.Scale)
	case q.PadKm < 0:
		return fmt.Errorf("%w: pad must not be negative, got %v", ErrInvalidQuery, q.PadKm)
	case q.End.Before(q.Start):
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidQuery,
			q.End.Format(DateFormat), q.Start.Format(DateFormat))
	}
	return nil
}

// ProductBase is the last path element of the product id, used in file names.
func (q Query) ProductBase() string {
	return path.Base(q.Product)
}
