package subset

import (
	"errors"
	"fmt"

	"github.com/1F47E/gee-subset/pkg/models"
)

var (
	// ErrBackendQuery matches every *BackendQueryError with errors.Is.
	ErrBackendQuery    = errors.New("backend query failed")
	ErrMalformedRegion = errors.New("malformed region response")
)

// BackendQueryError wraps any failure of the imagery service for one
// location.
type BackendQueryError struct {
	Product  string
	Location models.Location
	Err      error
}

func (e *BackendQueryError) Error() string {
	return fmt.Sprintf("query %s at %s: %v", e.Product, e.Location, e.Err)
}

func (e *BackendQueryError) Unwrap() error {
	return e.Err
}

func (e *BackendQueryError) Is(target error) bool {
	return target == ErrBackendQuery
}
