package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openfdm/flightsim/pkg/core"
)

// FlightExport is the root JSON structure written on EndSession.
type FlightExport struct {
	RecorderVersion  string              `json:"recorderVersion"`
	Aircraft         string              `json:"aircraft"`
	StartTime        string              `json:"startTime"`
	Timestep         float64             `json:"timestep"`
	RunwayHalfWidth  float64             `json:"runwayHalfWidth"`
	RunwayHalfLength float64             `json:"runwayHalfLength"`
	EndTick          uint64              `json:"endTick"`
	Samples          []core.FlightSample `json:"samples"`
	Landings         []core.Touchdown    `json:"landings"`
	Performance      []core.PerfSample   `json:"performance"`
}

// exportJSON writes the session data to a (optionally gzipped) JSON
// file. Caller holds the lock.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	aircraft := strings.ReplaceAll(b.session.Aircraft, " ", "_")
	aircraft = strings.ReplaceAll(aircraft, ":", "_")
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", aircraft, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", aircraft, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() FlightExport {
	export := FlightExport{
		RecorderVersion:  b.session.RecorderVersion,
		Aircraft:         b.session.Aircraft,
		StartTime:        b.session.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		Timestep:         b.session.Timestep,
		RunwayHalfWidth:  b.session.RunwayHalfWidth,
		RunwayHalfLength: b.session.RunwayHalfLength,
		Samples:          b.samples,
		Landings:         b.touchdowns,
		Performance:      b.perf,
	}
	if export.Samples == nil {
		export.Samples = []core.FlightSample{}
	}
	if export.Landings == nil {
		export.Landings = []core.Touchdown{}
	}
	if export.Performance == nil {
		export.Performance = []core.PerfSample{}
	}

	var endTick uint64
	for _, s := range b.samples {
		if s.Tick > endTick {
			endTick = s.Tick
		}
	}
	export.EndTick = endTick

	return export
}

func writeJSON(path string, data FlightExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data FlightExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
