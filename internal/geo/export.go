package geo

import (
	"encoding/json"
	"fmt"
	"os"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/openfdm/flightsim/pkg/core"
)

// FeatureCollection is a minimal GeoJSON document holding the flight
// track and the runway outline.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   geom.Geometry  `json:"geometry"`
}

// BuildTrackCollection assembles the GeoJSON document for a recorded
// flight.
func (p Projector) BuildTrackCollection(samples []core.FlightSample, runway core.Runway) (FeatureCollection, error) {
	track, err := p.TrackLineString(samples)
	if err != nil {
		return FeatureCollection{}, err
	}

	return FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			{
				Type: "Feature",
				Properties: map[string]any{
					"kind":    "track",
					"samples": len(samples),
				},
				Geometry: track.AsGeometry(),
			},
			{
				Type: "Feature",
				Properties: map[string]any{
					"kind": "runway",
				},
				Geometry: p.RunwayPolygon(runway).AsGeometry(),
			},
		},
	}, nil
}

// WriteTrackGeoJSON writes the flight track document to a file.
func (p Projector) WriteTrackGeoJSON(path string, samples []core.FlightSample, runway core.Runway) error {
	collection, err := p.BuildTrackCollection(samples, runway)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create track file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(collection)
}
