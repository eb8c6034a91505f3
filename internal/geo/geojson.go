package geo

import (
	"encoding/json"
	"fmt"
)

// GeoJSON uses [longitude, latitude] coordinate order and closed rings.
// Only the outer ring of each polygon is carried; the wave engine does not
// model holes.

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string           `json:"type"`
	Geometry   geoJSONGeometry  `json:"geometry"`
	Properties map[string]any   `json:"properties,omitempty"`
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// MarshalFeatureCollection encodes a set of rings as a GeoJSON
// FeatureCollection of Polygon features with the given shared properties.
func MarshalFeatureCollection(polys []Polygon, properties map[string]any) ([]byte, error) {
	fc := geoJSONFeatureCollection{Type: "FeatureCollection", Features: make([]geoJSONFeature, 0, len(polys))}
	for _, p := range polys {
		ring := p.Normalize()
		coords := make([][]float64, 0, len(ring)+1)
		for _, v := range ring {
			coords = append(coords, []float64{v.Longitude, v.Latitude})
		}
		if len(ring) > 0 {
			coords = append(coords, []float64{ring[0].Longitude, ring[0].Latitude})
		}
		raw, err := json.Marshal([][][]float64{coords})
		if err != nil {
			return nil, fmt.Errorf("marshal polygon coordinates: %w", err)
		}
		fc.Features = append(fc.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   geoJSONGeometry{Type: "Polygon", Coordinates: raw},
			Properties: properties,
		})
	}
	return json.Marshal(fc)
}

// UnmarshalPolygons decodes the outer rings of all Polygon and MultiPolygon
// geometries in a GeoJSON document. The document may be a FeatureCollection,
// a single Feature, or a bare geometry.
func UnmarshalPolygons(data []byte) ([]Polygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		var fc geoJSONFeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse feature collection: %w", err)
		}
		var polys []Polygon
		for _, f := range fc.Features {
			ps, err := polygonsFromGeometry(f.Geometry)
			if err != nil {
				return nil, err
			}
			polys = append(polys, ps...)
		}
		return polys, nil
	case "Feature":
		var f geoJSONFeature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse feature: %w", err)
		}
		return polygonsFromGeometry(f.Geometry)
	case "Polygon", "MultiPolygon":
		var g geoJSONGeometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("parse geometry: %w", err)
		}
		return polygonsFromGeometry(g)
	default:
		return nil, fmt.Errorf("unsupported geojson type %q", probe.Type)
	}
}

func polygonsFromGeometry(g geoJSONGeometry) ([]Polygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("parse polygon coordinates: %w", err)
		}
		p, err := ringFromCoords(rings)
		if err != nil {
			return nil, err
		}
		return []Polygon{p}, nil
	case "MultiPolygon":
		var multi [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return nil, fmt.Errorf("parse multipolygon coordinates: %w", err)
		}
		polys := make([]Polygon, 0, len(multi))
		for _, rings := range multi {
			p, err := ringFromCoords(rings)
			if err != nil {
				return nil, err
			}
			polys = append(polys, p)
		}
		return polys, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func ringFromCoords(rings [][][]float64) (Polygon, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}
	outer := rings[0]
	ring := make(Polygon, 0, len(outer))
	for _, c := range outer {
		if len(c) < 2 {
			return nil, fmt.Errorf("coordinate with %d components", len(c))
		}
		ring = append(ring, Position{Latitude: c[1], Longitude: c[0]})
	}
	ring = ring.Normalize()
	if len(ring) < 3 {
		return nil, fmt.Errorf("polygon ring has %d vertices, need at least 3", len(ring))
	}
	return ring, nil
}
