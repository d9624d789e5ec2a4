// Package locations turns command line input into the ordered list of sites
// to sample.
package locations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1F47E/gee-subset/pkg/models"
)

var (
	ErrConflictingLocations = errors.New("a location file and an explicit location were both given")
	ErrLocationFileNotFound = errors.New("location file not found")
	ErrNoLocations          = errors.New("no location file or explicit location given")
	ErrInvalidLatitude      = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude     = errors.New("longitude must be between -180 and 180")
	ErrInvalidBoundingBox   = errors.New("bounding box must be minLon,minLat,maxLon,maxLat with min < max")
)

// Options describes where locations come from.
type Options struct {
	// File is a CSV with a header row and site, lat, lon columns.
	File string
	// Location is an explicit latitude, longitude pair. Nil when absent.
	Location []float64
	// Within optionally restricts the result to a bounding box.
	Within *models.BoundingBox
}

// Resolve returns the locations described by opts in input order.
func Resolve(opts Options) ([]models.Location, error) {
	var (
		locs []models.Location
		err  error
	)

	switch {
	case opts.File != "":
		if _, statErr := os.Stat(opts.File); statErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLocationFileNotFound, opts.File, statErr)
		}
		if len(opts.Location) > 0 {
			return nil, ErrConflictingLocations
		}
		locs, err = ReadFile(opts.File)
	case len(opts.Location) > 0:
		locs, err = fromPair(opts.Location)
	default:
		return nil, ErrNoLocations
	}
	if err != nil {
		return nil, err
	}

	if opts.Within == nil {
		return locs, nil
	}
	return NewIndex(locs).Within(*opts.Within)
}

func fromPair(pair []float64) ([]models.Location, error) {
	if len(pair) != 2 {
		return nil, fmt.Errorf("location needs latitude and longitude, got %d values", len(pair))
	}
	loc := models.Location{SiteID: models.DefaultSiteID, Lat: pair[0], Lon: pair[1]}
	if err := validate(loc); err != nil {
		return nil, err
	}
	return []models.Location{loc}, nil
}

// ReadFile reads a location table from path.
func ReadFile(path string) ([]models.Location, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open location file: %w", err)
	}
	defer file.Close()

	locs, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return locs, nil
}

// Read parses a location table. The first record is a header and is
// skipped; columns are taken by position as site, lat, lon.
func Read(r io.Reader) ([]models.Location, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("location file is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var locs []models.Location
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		line, _ := reader.FieldPos(0)

		loc, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func parseRecord(record []string) (models.Location, error) {
	if len(record) < 3 {
		return models.Location{}, fmt.Errorf("expected site, lat, lon but got %d fields", len(record))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid latitude %q: %w", record[1], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid longitude %q: %w", record[2], err)
	}

	loc := models.Location{
		SiteID: strings.TrimSpace(record[0]),
		Lat:    lat,
		Lon:    lon,
	}
	return loc, validate(loc)
}

func validate(loc models.Location) error {
	if loc.Lat < -90 || loc.Lat > 90 {
		return fmt.Errorf("%w: %v", ErrInvalidLatitude, loc.Lat)
	}
	if loc.Lon < -180 || loc.Lon > 180 {
		return fmt.Errorf("%w: %v", ErrInvalidLongitude, loc.Lon)
	}
	return nil
}

// ParseBoundingBox parses "minLon,minLat,maxLon,maxLat".
func ParseBoundingBox(s string) (*models.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBoundingBox, s)
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidBoundingBox, s, err)
		}
		v[i] = f
	}

	box := &models.BoundingBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if box.MinLon >= box.MaxLon || box.MinLat >= box.MaxLat {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBoundingBox, s)
	}
	return box, nil
}
