package subset

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DegreesPerKm approximates one kilometre in degrees. It ignores the
// latitude dependent shrinking of longitude.
const DegreesPerKm = 0.008983

// PadDegrees converts a pad in kilometres to degrees. Non-positive pads
// convert to zero.
func PadDegrees(padKm float64) float64 {
	if padKm <= 0 {
		return 0
	}
	return padKm * DegreesPerKm
}

// BuildGeometry returns a point at lon/lat, or a square grown by padKm in
// every direction when padKm is positive.
func BuildGeometry(lat, lon, padKm float64) orb.Geometry {
	d := PadDegrees(padKm)
	if d == 0 {
		return orb.Point{lon, lat}
	}
	return orb.Bound{
		Min: orb.Point{lon - d, lat - d},
		Max: orb.Point{lon + d, lat + d},
	}
}

// toGeoJSON converts a sampling geometry for the wire; rectangles travel as
// polygons.
func toGeoJSON(g orb.Geometry) *geojson.Geometry {
	if b, ok := g.(orb.Bound); ok {
		return geojson.NewGeometry(b.ToPolygon())
	}
	return geojson.NewGeometry(g)
}
