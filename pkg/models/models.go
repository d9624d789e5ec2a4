package models

import "fmt"

// DefaultSiteID labels a location given on the command line instead of a file.
const DefaultSiteID = "site"

// Location is a named sampling site in decimal degrees
type Location struct {
	SiteID string  `json:"site"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%.6f, %.6f)", l.SiteID, l.Lat, l.Lon)
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Contains reports whether the location lies inside or on the edge of the box
func (b BoundingBox) Contains(l Location) bool {
	return l.Lat >= b.MinLat && l.Lat <= b.MaxLat &&
		l.Lon >= b.MinLon && l.Lon <= b.MaxLon
}
