package wave

import (
	"math"
	"sort"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

// LongitudeSample is one point of the wavefront's curved position.
type LongitudeSample struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ComposedLongitude describes the wavefront across a box at one instant as
// per-latitude longitude samples, ordered by ascending latitude. Equal
// elapsed time covers different angular distances at different latitudes,
// so the front is a curve, not a meridian.
type ComposedLongitude []LongitudeSample

// LongitudeAt evaluates the curve at a latitude, interpolating linearly
// between samples and extending the end samples outward.
func (c ComposedLongitude) LongitudeAt(lat float64) float64 {
	if len(c) == 0 {
		return math.NaN()
	}
	if lat <= c[0].Latitude {
		return c[0].Longitude
	}
	if lat >= c[len(c)-1].Latitude {
		return c[len(c)-1].Longitude
	}
	i := sort.Search(len(c), func(i int) bool { return c[i].Latitude >= lat })
	a, b := c[i-1], c[i]
	if b.Latitude == a.Latitude {
		return a.Longitude
	}
	t := (lat - a.Latitude) / (b.Latitude - a.Latitude)
	return a.Longitude + t*(b.Longitude-a.Longitude)
}

// MeridianCut returns a degenerate curve: a single meridian.
func MeridianCut(lon float64) ComposedLongitude {
	return ComposedLongitude{
		{Latitude: -90, Longitude: lon},
		{Latitude: 90, Longitude: lon},
	}
}

const (
	// sideEpsilon decides when a vertex counts as lying on the curve.
	sideEpsilon = 1e-9
	// minFragmentArea drops numerically empty fragments, square degrees.
	minFragmentArea = 1e-12
)

// Split clips a polygon against the wavefront curve and returns the
// fragments west of it (left) and east of it (right). Empty fragment sets
// come back as nil, never as degenerate rings.
func Split(p geo.Polygon, curve ComposedLongitude) (left, right []geo.Polygon) {
	ring := p.Normalize()
	if len(ring) < 3 || len(curve) == 0 {
		return nil, nil
	}

	n := len(ring)
	offset := make([]float64, n)
	raw := make([]int, n)
	for i, v := range ring {
		offset[i] = v.Longitude - curve.LongitudeAt(v.Latitude)
		switch {
		case offset[i] < -sideEpsilon:
			raw[i] = -1
		case offset[i] > sideEpsilon:
			raw[i] = +1
		}
	}

	sides, ok := resolveSides(raw)
	if !ok {
		// Entire ring lies on the curve: zero area on both sides.
		return nil, nil
	}

	crossAfter, crossings := findCrossings(ring, offset, sides, curve)
	if len(crossings) == 0 {
		if sides[0] < 0 {
			return []geo.Polygon{ring}, nil
		}
		return nil, []geo.Polygon{ring}
	}

	pairCrossings(crossings)
	chains := buildChains(ring, sides, crossAfter)

	left = stitchSide(chains, crossings, curve, -1)
	right = stitchSide(chains, crossings, curve, +1)
	return left, right
}

// Classify maps split sides to wave semantics: the wave enters from the
// west edge when travelling east, so the western fragments are traversed;
// mirrored for west-travelling waves.
func Classify(left, right []geo.Polygon, d Direction) (traversed, remaining []geo.Polygon) {
	if d == West {
		return right, left
	}
	return left, right
}

// resolveSides assigns every on-curve vertex to the side of the preceding
// off-curve vertex, so tangential contact produces no crossings and a true
// crossing through an on-curve vertex cuts exactly at that vertex.
func resolveSides(raw []int) ([]int, bool) {
	n := len(raw)
	start := -1
	for i, s := range raw {
		if s != 0 {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}
	sides := make([]int, n)
	prev := raw[start]
	for k := 0; k < n; k++ {
		i := (start + k) % n
		if raw[i] != 0 {
			prev = raw[i]
		}
		sides[i] = prev
	}
	return sides, true
}

type crossing struct {
	pos     geo.Position
	partner int
}

// findCrossings locates the cut point on every edge whose endpoints sit on
// opposite sides. crossAfter[i] holds the crossing index for the edge from
// vertex i to i+1, or -1.
func findCrossings(ring geo.Polygon, offset []float64, sides []int, curve ComposedLongitude) ([]int, []*crossing) {
	n := len(ring)
	crossAfter := make([]int, n)
	var crossings []*crossing
	for i := range ring {
		crossAfter[i] = -1
		j := (i + 1) % n
		if sides[i] == sides[j] {
			continue
		}
		var pos geo.Position
		switch {
		case math.Abs(offset[i]) <= sideEpsilon:
			pos = ring[i]
		case math.Abs(offset[j]) <= sideEpsilon:
			pos = ring[j]
		default:
			pos = intersectEdge(ring[i], ring[j], curve)
		}
		crossAfter[i] = len(crossings)
		crossings = append(crossings, &crossing{pos: pos})
	}
	return crossAfter, crossings
}

// intersectEdge finds where the edge from a to b meets the curve. The
// curve offset along the edge is piecewise linear with breakpoints where
// the edge passes a curve sample latitude, so the edge is subdivided there
// and each piece solved exactly.
func intersectEdge(a, b geo.Position, curve ComposedLongitude) geo.Position {
	at := func(t float64) geo.Position {
		return geo.Position{
			Latitude:  a.Latitude + t*(b.Latitude-a.Latitude),
			Longitude: a.Longitude + t*(b.Longitude-a.Longitude),
		}
	}
	g := func(t float64) float64 {
		p := at(t)
		return p.Longitude - curve.LongitudeAt(p.Latitude)
	}

	ts := []float64{0}
	if b.Latitude != a.Latitude {
		lo, hi := math.Min(a.Latitude, b.Latitude), math.Max(a.Latitude, b.Latitude)
		for _, s := range curve {
			if s.Latitude <= lo || s.Latitude >= hi {
				continue
			}
			ts = append(ts, (s.Latitude-a.Latitude)/(b.Latitude-a.Latitude))
		}
		sort.Float64s(ts)
	}
	ts = append(ts, 1)

	g0 := g(ts[0])
	for k := 1; k < len(ts); k++ {
		g1 := g(ts[k])
		if g0 == 0 || g0*g1 <= 0 {
			var t float64
			if g1 == g0 {
				t = ts[k-1]
			} else {
				t = ts[k-1] + (ts[k]-ts[k-1])*(g0/(g0-g1))
			}
			return at(t)
		}
		g0 = g1
	}
	// No sign change found (numerical edge case): cut at the endpoint
	// closest to the curve.
	if math.Abs(g(0)) < math.Abs(g(1)) {
		return a
	}
	return b
}

// pairCrossings links crossings along the curve. Sorted by latitude, the
// curve alternates outside/inside the polygon at each crossing, so
// consecutive sorted pairs bound the interior bridge segments shared by
// the two split sides.
func pairCrossings(crossings []*crossing) {
	order := make([]int, len(crossings))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		a, b := crossings[order[x]].pos, crossings[order[y]].pos
		if a.Latitude != b.Latitude {
			return a.Latitude < b.Latitude
		}
		return a.Longitude < b.Longitude
	})
	for k := 0; k+1 < len(order); k += 2 {
		crossings[order[k]].partner = order[k+1]
		crossings[order[k+1]].partner = order[k]
	}
}

type chain struct {
	side       int
	verts      []geo.Position
	startCross int
	endCross   int
}

// buildChains cuts the ring at its crossings into runs of same-side
// vertices. There are exactly as many chains as crossings.
func buildChains(ring geo.Polygon, sides []int, crossAfter []int) []*chain {
	n := len(ring)
	start := 0
	for i := 0; i < n; i++ {
		if crossAfter[(i-1+n)%n] >= 0 {
			start = i
			break
		}
	}

	var chains []*chain
	cur := &chain{side: sides[start], startCross: crossAfter[(start-1+n)%n]}
	for k := 0; k < n; k++ {
		i := (start + k) % n
		cur.verts = append(cur.verts, ring[i])
		if c := crossAfter[i]; c >= 0 {
			cur.endCross = c
			chains = append(chains, cur)
			cur = &chain{side: sides[(i+1)%n], startCross: c}
		}
	}
	return chains
}

type chainEndpoint struct {
	chain   int
	isStart bool
}

// stitchSide assembles the fragments of one side by walking the degree-two
// boundary graph: same-side ring chains joined by interior curve bridges.
func stitchSide(chains []*chain, crossings []*crossing, curve ComposedLongitude, side int) []geo.Polygon {
	endpointAt := make(map[int]chainEndpoint, len(crossings))
	for ci, c := range chains {
		if c.side != side {
			continue
		}
		endpointAt[c.startCross] = chainEndpoint{chain: ci, isStart: true}
		endpointAt[c.endCross] = chainEndpoint{chain: ci, isStart: false}
	}

	used := make([]bool, len(chains))
	var out []geo.Polygon
	for start, c := range chains {
		if c.side != side || used[start] {
			continue
		}
		var ring geo.Polygon
		cur, forward := start, true
		for {
			used[cur] = true
			ch := chains[cur]
			exit := ch.endCross
			if !forward {
				exit = ch.startCross
			}
			if forward {
				for _, v := range ch.verts {
					ring = appendPoint(ring, v)
				}
			} else {
				for k := len(ch.verts) - 1; k >= 0; k-- {
					ring = appendPoint(ring, ch.verts[k])
				}
			}
			ring = appendPoint(ring, crossings[exit].pos)

			partner := crossings[exit].partner
			ring = appendBridge(ring, curve, crossings[exit].pos, crossings[partner].pos)

			ring = appendPoint(ring, crossings[partner].pos)
			next, ok := endpointAt[partner]
			if !ok || next.chain == start {
				break
			}
			cur, forward = next.chain, next.isStart
		}

		if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		if len(ring) >= 3 && ring.Area() > minFragmentArea {
			out = append(out, ring)
		}
	}
	return out
}

// appendPoint grows the ring, skipping consecutive duplicates.
func appendPoint(ring geo.Polygon, p geo.Position) geo.Polygon {
	if len(ring) > 0 {
		last := ring[len(ring)-1]
		if math.Abs(last.Latitude-p.Latitude) <= sideEpsilon && math.Abs(last.Longitude-p.Longitude) <= sideEpsilon {
			return ring
		}
	}
	return append(ring, p)
}

// appendBridge adds the curve samples strictly between two cut points so
// the fragment boundary follows the curved front, not a straight shortcut.
func appendBridge(ring geo.Polygon, curve ComposedLongitude, from, to geo.Position) geo.Polygon {
	if from.Latitude < to.Latitude {
		for _, s := range curve {
			if s.Latitude > from.Latitude+sideEpsilon && s.Latitude < to.Latitude-sideEpsilon {
				ring = appendPoint(ring, geo.Position{Latitude: s.Latitude, Longitude: s.Longitude})
			}
		}
		return ring
	}
	for k := len(curve) - 1; k >= 0; k-- {
		s := curve[k]
		if s.Latitude < from.Latitude-sideEpsilon && s.Latitude > to.Latitude+sideEpsilon {
			ring = appendPoint(ring, geo.Position{Latitude: s.Latitude, Longitude: s.Longitude})
		}
	}
	return ring
}
