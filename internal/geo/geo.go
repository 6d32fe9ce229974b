// Package geo projects the local simulation frame onto geographic
// coordinates and exports flight tracks as GeoJSON for map tooling.
//
// The simulation frame is metric: X across the runway, Z along it, Y
// up. Local offsets are applied in EPSG:3857 meters around a
// configured origin and transformed back to EPSG:4326.
package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

// ErrTooFewSamples is returned when a track has fewer than two points.
var ErrTooFewSamples = errors.New("track needs at least 2 samples")

// Projector converts local simulation positions to longitude/latitude.
type Projector struct {
	originX float64 // EPSG:3857 meters
	originY float64
}

// NewProjector anchors the simulation origin at the given geographic
// coordinates.
func NewProjector(originLon, originLat float64) Projector {
	to3857 := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := to3857(originLon, originLat, 0)
	return Projector{originX: x, originY: y}
}

// LonLat returns the geographic position of a local point. Elevation
// is passed through unchanged.
func (p Projector) LonLat(local mathx.Vec3) (lon, lat, elev float64) {
	from3857 := wgs84.EPSG().Transform(3857, 4326)
	lon, lat, _ = from3857(p.originX+local.X, p.originY+local.Z, 0)
	return lon, lat, local.Y
}

// TrackLineString builds a 3D line string from a sample series.
func (p Projector) TrackLineString(samples []core.FlightSample) (geom.LineString, error) {
	if len(samples) < 2 {
		return geom.LineString{}, ErrTooFewSamples
	}

	flatCoords := make([]float64, 0, len(samples)*3)
	for _, s := range samples {
		lon, lat, elev := p.LonLat(s.Position)
		flatCoords = append(flatCoords, lon, lat, elev)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq), nil
}

// RunwayPolygon builds the runway rectangle as a closed ring.
func (p Projector) RunwayPolygon(r core.Runway) geom.Polygon {
	corners := []mathx.Vec3{
		{X: -r.HalfWidth, Z: -r.HalfLength},
		{X: r.HalfWidth, Z: -r.HalfLength},
		{X: r.HalfWidth, Z: r.HalfLength},
		{X: -r.HalfWidth, Z: r.HalfLength},
		{X: -r.HalfWidth, Z: -r.HalfLength},
	}

	flatCoords := make([]float64, 0, len(corners)*2)
	for _, c := range corners {
		lon, lat, _ := p.LonLat(c)
		flatCoords = append(flatCoords, lon, lat)
	}

	ring := geom.NewLineString(geom.NewSequence(flatCoords, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ring})
}
