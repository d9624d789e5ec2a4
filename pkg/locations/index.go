package locations

import (
	"fmt"
	"sort"

	"github.com/1F47E/gee-subset/pkg/models"
	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 1e-9
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialLocation wraps a location to implement rtreego.Spatial
type spatialLocation struct {
	models.Location
	order int
	rect  *rtreego.Rect
}

var _ rtreego.Spatial = (*spatialLocation)(nil)

func (sl *spatialLocation) Bounds() *rtreego.Rect {
	return sl.rect
}

// Index is an R-Tree over resolved locations that remembers input order.
type Index struct {
	tree  *rtreego.Rtree
	count int
}

// NewIndex builds an index over locs.
func NewIndex(locs []models.Location) *Index {
	idx := &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
	for i, loc := range locs {
		p := rtreego.Point{loc.Lon, loc.Lat}
		idx.tree.Insert(&spatialLocation{
			Location: loc,
			order:    i,
			rect:     p.ToRect(tolerance),
		})
		idx.count++
	}
	return idx
}

// Size returns the number of indexed locations
func (idx *Index) Size() int {
	return idx.count
}

// Within returns the indexed locations inside box, in their original order.
func (idx *Index) Within(box models.BoundingBox) ([]models.Location, error) {
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{box.MinLon, box.MinLat},
		rtreego.Point{box.MaxLon, box.MaxLat},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search rectangle: %w", err)
	}

	hits := idx.tree.SearchIntersect(rect)
	matched := make([]*spatialLocation, 0, len(hits))
	for _, hit := range hits {
		sl := hit.(*spatialLocation)
		// the tree matches on padded rectangles, the box edge is exact
		if box.Contains(sl.Location) {
			matched = append(matched, sl)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].order < matched[j].order
	})

	results := make([]models.Location, len(matched))
	for i, sl := range matched {
		results[i] = sl.Location
	}
	return results, nil
}
