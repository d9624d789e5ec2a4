package backend

import "github.com/paulmach/orb/geojson"

// Filter is an attribute equality constraint on collection images.
type Filter struct {
	Property string   `json:"property"`
	Values   []string `json:"values"`
}

// RegionRequest asks for the per-pixel time series of an image collection
// over a geometry.
type RegionRequest struct {
	Collection string            `json:"collection"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Filters    []Filter          `json:"filters,omitempty"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Scale      int               `json:"scale"`
}

// RegionResponse is the raw region table: a header row followed by data rows.
// Numbers are decoded as json.Number.
type RegionResponse struct {
	Region [][]any `json:"region"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
