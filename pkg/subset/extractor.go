// Package subset extracts the region time series of one location from the
// imagery service and reshapes it into a table.
package subset

import (
	"context"
	"log/slog"

	"github.com/1F47E/gee-subset/pkg/backend"
	"github.com/1F47E/gee-subset/pkg/models"
)

// RegionProvider is the imagery service as seen by the extractor.
type RegionProvider interface {
	GetRegion(ctx context.Context, req backend.RegionRequest) (*backend.RegionResponse, error)
}

type Extractor struct {
	provider       RegionProvider
	filterProperty string
	logger         *slog.Logger
}

// NewExtractor creates an extractor querying provider. filterProperty is the
// image attribute compared with the requested bands; empty selects
// DefaultFilterProperty.
func NewExtractor(provider RegionProvider, filterProperty string, logger *slog.Logger) *Extractor {
	if filterProperty == "" {
		filterProperty = DefaultFilterProperty
	}
	return &Extractor{
		provider:       provider,
		filterProperty: filterProperty,
		logger:         logger.With("component", "extractor"),
	}
}

// Extract issues one region query for loc and reshapes the answer. Every
// failure is returned as a *BackendQueryError.
func (e *Extractor) Extract(ctx context.Context, q Query, loc models.Location) (*Table, error) {
	geometry := BuildGeometry(loc.Lat, loc.Lon, q.PadKm)

	req := backend.RegionRequest{
		Collection: q.Product,
		Start:      q.Start.Format(DateFormat),
		End:        q.End.Format(DateFormat),
		Filters: []backend.Filter{{
			Property: e.filterProperty,
			Values:   q.Bands,
		}},
		Geometry: toGeoJSON(geometry),
		Scale:    int(q.Scale),
	}

	e.logger.Debug("extracting region",
		"site", loc.SiteID,
		"geometry", geometry.GeoJSONType(),
		"pad_deg", PadDegrees(q.PadKm),
	)

	resp, err := e.provider.GetRegion(ctx, req)
	if err != nil {
		return nil, &BackendQueryError{Product: q.Product, Location: loc, Err: err}
	}

	if resp == nil {
		return nil, &BackendQueryError{Product: q.Product, Location: loc, Err: ErrMalformedRegion}
	}

	table, err := Reshape(resp.Region, q.Product)
	if err != nil {
		return nil, &BackendQueryError{Product: q.Product, Location: loc, Err: err}
	}

	return table, nil
}
