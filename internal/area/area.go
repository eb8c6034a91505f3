// Package area supplies the immutable base polygons the wave sweeps and
// terrain-aware containment checks against them.
package area

import (
	"fmt"
	"os"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

// Area owns the event's base polygons. The polygons are read-only to the
// wave engine; snapshots derived from them are fresh value objects.
type Area struct {
	polygons []geo.Polygon
	box      geo.BoundingBox
}

// New validates the polygon set and derives its bounding box.
func New(polygons []geo.Polygon) (*Area, error) {
	if len(polygons) == 0 {
		return nil, fmt.Errorf("area has no polygons")
	}
	for i, p := range polygons {
		if len(p.Normalize()) < 3 {
			return nil, fmt.Errorf("area polygon %d has fewer than 3 vertices", i)
		}
	}
	box := geo.BoundingBoxOf(polygons)
	if box.IsDegenerate() {
		return nil, fmt.Errorf("area bounding box is degenerate: %+v", box)
	}
	return &Area{polygons: polygons, box: box}, nil
}

// Load reads the area polygons from a GeoJSON file.
func Load(path string) (*Area, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read area file: %w", err)
	}
	polygons, err := geo.UnmarshalPolygons(data)
	if err != nil {
		return nil, fmt.Errorf("parse area file %s: %w", path, err)
	}
	return New(polygons)
}

// Polygons returns the base polygon set. Callers must not mutate it.
func (a *Area) Polygons() []geo.Polygon {
	return a.polygons
}

// BoundingBox returns the box enclosing all polygons.
func (a *Area) BoundingBox() geo.BoundingBox {
	return a.box
}

// Contains reports whether the position falls inside any area polygon.
// This is the true boundary test hit detection uses beyond the bounding
// box's longitude comparison.
func (a *Area) Contains(pos geo.Position) bool {
	if !pos.IsValid() || !a.box.Contains(pos) {
		return false
	}
	for _, p := range a.polygons {
		if p.Contains(pos) {
			return true
		}
	}
	return false
}
