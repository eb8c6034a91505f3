package geo

import "math"

// Polygon is a simple ring of positions. The closing edge from the last
// vertex back to the first is implied; an explicit duplicate closing vertex
// is tolerated on input and stripped by Normalize. Rings are assumed
// pre-validated by their producer: no self-intersection repair happens here.
type Polygon []Position

// Normalize returns the ring without a duplicate closing vertex.
func (p Polygon) Normalize() Polygon {
	if len(p) > 1 && p[0] == p[len(p)-1] {
		return p[:len(p)-1]
	}
	return p
}

// SignedArea returns the shoelace area of the ring in square degrees, with
// longitude as x and latitude as y. Positive means counter-clockwise.
func (p Polygon) SignedArea() float64 {
	ring := p.Normalize()
	if len(ring) < 3 {
		return 0
	}
	sum := 0.0
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		sum += a.Longitude*b.Latitude - b.Longitude*a.Latitude
	}
	return sum / 2
}

// Area returns the absolute shoelace area of the ring in square degrees.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// BoundingBox returns the smallest box enclosing the ring.
func (p Polygon) BoundingBox() BoundingBox {
	box := BoundingBox{
		SouthWest: Position{Latitude: math.Inf(1), Longitude: math.Inf(1)},
		NorthEast: Position{Latitude: math.Inf(-1), Longitude: math.Inf(-1)},
	}
	for _, v := range p {
		box.SouthWest.Latitude = math.Min(box.SouthWest.Latitude, v.Latitude)
		box.SouthWest.Longitude = math.Min(box.SouthWest.Longitude, v.Longitude)
		box.NorthEast.Latitude = math.Max(box.NorthEast.Latitude, v.Latitude)
		box.NorthEast.Longitude = math.Max(box.NorthEast.Longitude, v.Longitude)
	}
	return box
}

// Contains reports whether the position is inside the ring, using the
// even-odd ray-casting rule with a ray cast eastward. Points exactly on an
// edge may land on either side.
func (p Polygon) Contains(pos Position) bool {
	ring := p.Normalize()
	if len(ring) < 3 {
		return false
	}
	inside := false
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		if (a.Latitude > pos.Latitude) == (b.Latitude > pos.Latitude) {
			continue
		}
		t := (pos.Latitude - a.Latitude) / (b.Latitude - a.Latitude)
		crossLon := a.Longitude + t*(b.Longitude-a.Longitude)
		if crossLon > pos.Longitude {
			inside = !inside
		}
	}
	return inside
}

// TotalArea sums the areas of a set of rings.
func TotalArea(polys []Polygon) float64 {
	total := 0.0
	for _, p := range polys {
		total += p.Area()
	}
	return total
}

// BoundingBoxOf returns the smallest box enclosing all rings.
func BoundingBoxOf(polys []Polygon) BoundingBox {
	box := BoundingBox{
		SouthWest: Position{Latitude: math.Inf(1), Longitude: math.Inf(1)},
		NorthEast: Position{Latitude: math.Inf(-1), Longitude: math.Inf(-1)},
	}
	for _, p := range polys {
		pb := p.BoundingBox()
		box.SouthWest.Latitude = math.Min(box.SouthWest.Latitude, pb.SouthWest.Latitude)
		box.SouthWest.Longitude = math.Min(box.SouthWest.Longitude, pb.SouthWest.Longitude)
		box.NorthEast.Latitude = math.Max(box.NorthEast.Latitude, pb.NorthEast.Latitude)
		box.NorthEast.Longitude = math.Max(box.NorthEast.Longitude, pb.NorthEast.Longitude)
	}
	return box
}
