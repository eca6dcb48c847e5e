// Package geo loads county boundaries for the leakage map. Boundaries come
// from a remote TopoJSON topology, cut down to the counties in the dataset.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is returned when a topology cannot be filtered.
var ErrMalformed = errors.New("malformed topology")

// Topology is a TopoJSON document. Arc coordinates and the quantisation
// transform are passed through untouched.
type Topology struct {
	Type      string                        `json:"type"`
	BBox      []float64                     `json:"bbox,omitempty"`
	Transform json.RawMessage               `json:"transform,omitempty"`
	Objects   map[string]GeometryCollection `json:"objects"`
	Arcs      []json.RawMessage             `json:"arcs"`
}

// GeometryCollection is a named TopoJSON object.
type GeometryCollection struct {
	Type       string     `json:"type"`
	Geometries []Geometry `json:"geometries"`
}

// Geometry is one feature. Arcs is kept raw; its nesting depends on Type.
type Geometry struct {
	Type       string                 `json:"type"`
	ID         FIPS                   `json:"id,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Arcs       json.RawMessage        `json:"arcs,omitempty"`
}

// FIPS is a five-digit county code. Some topologies encode it as a number,
// which drops the leading zero.
type FIPS string

// UnmarshalJSON accepts a string or a number.
func (f *FIPS) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FIPS(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("fips id %s: %w", b, err)
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return fmt.Errorf("fips id %s: %w", b, err)
	}
	*f = FIPS(fmt.Sprintf("%05d", v))
	return nil
}

// Parse decodes a TopoJSON document.
func Parse(raw []byte) (*Topology, error) {
	var t Topology
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("%w: type %q", ErrMalformed, t.Type)
	}
	return &t, nil
}

// Filter returns a topology holding only the geometries of object whose ID
// is in fips, stored under the same object name. Arcs no kept geometry
// references are dropped and the remaining indexes renumbered.
func Filter(t *Topology, object string, fips []string) (*Topology, error) {
	coll, ok := t.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: no %q object", ErrMalformed, object)
	}
	want := make(map[FIPS]bool, len(fips))
	for _, f := range fips {
		want[FIPS(f)] = true
	}

	remap := make(map[int]int)
	out := &Topology{
		Type:      t.Type,
		BBox:      t.BBox,
		Transform: t.Transform,
	}
	kept := GeometryCollection{Type: coll.Type}
	for _, g := range coll.Geometries {
		if !want[g.ID] {
			continue
		}
		arcs, err := remapArcs(g, remap, func(i int) error {
			if i < 0 || i >= len(t.Arcs) {
				return fmt.Errorf("%w: geometry %s references arc %d of %d", ErrMalformed, g.ID, i, len(t.Arcs))
			}
			out.Arcs = append(out.Arcs, t.Arcs[i])
			return nil
		})
		if err != nil {
			return nil, err
		}
		g.Arcs = arcs
		kept.Geometries = append(kept.Geometries, g)
	}
	out.Objects = map[string]GeometryCollection{object: kept}
	return out, nil
}

// remapArcs rewrites a geometry's arc indexes through remap, calling add the
// first time an old index is seen. Negative indexes are one's-complement
// references to a reversed arc and stay reversed.
func remapArcs(g Geometry, remap map[int]int, add func(int) error) (json.RawMessage, error) {
	mapIndex := func(i int) (int, error) {
		old, reversed := i, false
		if i < 0 {
			old, reversed = ^i, true
		}
		n, ok := remap[old]
		if !ok {
			if err := add(old); err != nil {
				return 0, err
			}
			n = len(remap)
			remap[old] = n
		}
		if reversed {
			return ^n, nil
		}
		return n, nil
	}

	var (
		out interface{}
		err error
	)
	switch g.Type {
	case "LineString":
		var arcs []int
		if err = json.Unmarshal(g.Arcs, &arcs); err == nil {
			out, err = mapRing(arcs, mapIndex)
		}
	case "Polygon", "MultiLineString":
		var arcs [][]int
		if err = json.Unmarshal(g.Arcs, &arcs); err == nil {
			out, err = mapRings(arcs, mapIndex)
		}
	case "MultiPolygon":
		var arcs [][][]int
		if err = json.Unmarshal(g.Arcs, &arcs); err == nil {
			polys := make([][][]int, len(arcs))
			for i, p := range arcs {
				if polys[i], err = mapRings(p, mapIndex); err != nil {
					break
				}
			}
			out = polys
		}
	default:
		// Points and null geometries carry no arcs.
		return g.Arcs, nil
	}
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: geometry %s arcs: %v", ErrMalformed, g.ID, err)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode arcs: %w", err)
	}
	return raw, nil
}

func mapRings(rings [][]int, mapIndex func(int) (int, error)) ([][]int, error) {
	out := make([][]int, len(rings))
	for i, r := range rings {
		m, err := mapRing(r, mapIndex)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func mapRing(ring []int, mapIndex func(int) (int, error)) ([]int, error) {
	out := make([]int, len(ring))
	for i, idx := range ring {
		n, err := mapIndex(idx)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
