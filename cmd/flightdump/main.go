// Command flightdump exports recorded flight sessions from the
// database as gzipped JSON plus a GeoJSON ground track, and can thin
// out high-rate sample data in place.
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openfdm/flightsim/internal/config"
	"github.com/openfdm/flightsim/internal/database"
	"github.com/openfdm/flightsim/internal/geo"
	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"

	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var db *gorm.DB

func main() {
	configDir := os.Getenv("FLIGHTSIM_CONFIG")
	if configDir == "" {
		configDir = "."
	}
	if err := config.Load(configDir); err != nil {
		fmt.Println("No config file found, using defaults:", err)
	}

	var err error
	if sqlitePath := os.Getenv("FLIGHTSIM_DB"); sqlitePath != "" {
		fmt.Println("Opening SQLite database at", sqlitePath)
		db, err = database.GetSqliteDBStandalone(sqlitePath)
	} else {
		fmt.Println("Connecting to Postgres...")
		db, err = database.GetPostgresDBStandalone()
	}
	if err != nil {
		panic(fmt.Errorf("failed to connect to database: %w", err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Errorf("failed to access sql interface: %w", err))
	}
	if err = sqlDB.Ping(); err != nil {
		panic(fmt.Errorf("failed to validate connection: %w", err))
	}
	fmt.Println("Database connection established.")

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println("Usage: flightdump <list|getjson|reducesession> [sessionID...]")
		return
	}

	sessionIDs := args[1:]
	switch strings.ToLower(args[0]) {
	case "list":
		if err := listSessions(); err != nil {
			panic(err)
		}
	case "getjson":
		if len(sessionIDs) == 0 {
			fmt.Println("No session IDs provided.")
			return
		}
		if err := getFlightRecording(sessionIDs); err != nil {
			panic(err)
		}
	case "reducesession":
		if len(sessionIDs) == 0 {
			fmt.Println("No session IDs provided.")
			return
		}
		if err := reduceSession(sessionIDs); err != nil {
			panic(err)
		}
	default:
		fmt.Println("Unknown command:", args[0])
	}
}

// listSessions prints a summary line per recorded session.
func listSessions() error {
	sessions := []model.FlightSession{}
	err := db.Model(&model.FlightSession{}).Order("start_time ASC").Find(&sessions).Error
	if err != nil {
		return fmt.Errorf("error getting sessions: %w", err)
	}

	for _, sess := range sessions {
		summary := core.SessionSummary{
			ID:        sess.ID,
			Aircraft:  sess.Aircraft,
			StartedAt: sess.StartTime,
			EndedAt:   sess.EndTime,
		}

		var count int64
		db.Model(&model.FlightSampleRow{}).Where("flight_session_id = ?", sess.ID).Count(&count)
		summary.Samples = int(count)
		db.Model(&model.LandingEvent{}).Where("flight_session_id = ?", sess.ID).Count(&count)
		summary.Landings = int(count)

		fmt.Printf("%4d  %-20s  %s  samples=%d landings=%d\n",
			summary.ID, summary.Aircraft,
			summary.StartedAt.Format("2006-01-02 15:04:05"),
			summary.Samples, summary.Landings)
	}
	fmt.Println(len(sessions), "session(s).")
	return nil
}

// flightExport is the root JSON structure written per session. It
// matches the shape the memory backend exports on EndSession.
type flightExport struct {
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

func getFlightRecording(sessionIDs []string) error {
	fmt.Println("Exporting session IDs: ", sessionIDs)

	for _, sessionID := range sessionIDs {
		sessionIDInt, err := strconv.Atoi(sessionID)
		if err != nil {
			return err
		}

		txStart := time.Now()
		var sess model.FlightSession
		err = db.Model(&model.FlightSession{}).Where("id = ?", sessionIDInt).First(&sess).Error
		if err != nil {
			return fmt.Errorf("error getting session: %w", err)
		}

		sampleRows := []model.FlightSampleRow{}
		err = db.Model(&model.FlightSampleRow{}).
			Where("flight_session_id = ?", sessionIDInt).
			Order("tick ASC").
			Find(&sampleRows).Error
		if err != nil {
			return fmt.Errorf("error getting samples: %w", err)
		}

		landingRows := []model.LandingEvent{}
		err = db.Model(&model.LandingEvent{}).
			Where("flight_session_id = ?", sessionIDInt).
			Order("tick ASC").
			Find(&landingRows).Error
		if err != nil {
			return fmt.Errorf("error getting landings: %w", err)
		}

		perfRows := []model.SimPerformance{}
		err = db.Model(&model.SimPerformance{}).
			Where("flight_session_id = ?", sessionIDInt).
			Order("time ASC").
			Find(&perfRows).Error
		if err != nil {
			return fmt.Errorf("error getting performance rows: %w", err)
		}

		export := flightExport{
			RecorderVersion:  sess.RecorderVersion,
			Aircraft:         sess.Aircraft,
			StartTime:        sess.StartTime.Format(time.RFC3339),
			Timestep:         sess.Timestep,
			RunwayHalfWidth:  sess.RunwayHalfWidth,
			RunwayHalfLength: sess.RunwayHalfLength,
			Samples:          make([]core.FlightSample, 0, len(sampleRows)),
			Landings:         make([]core.Touchdown, 0, len(landingRows)),
			Performance:      make([]core.PerfSample, 0, len(perfRows)),
		}
		for _, row := range sampleRows {
			export.Samples = append(export.Samples, sampleFromRow(row))
			if row.Tick > export.EndTick {
				export.EndTick = row.Tick
			}
		}
		for _, row := range landingRows {
			export.Landings = append(export.Landings, touchdownFromRow(row, sess.Timestep))
		}
		for _, row := range perfRows {
			export.Performance = append(export.Performance, core.PerfSample{
				Time:            row.Time,
				TicksPerSecond:  row.TicksPerSecond,
				SampleQueueLen:  int(row.SampleQueueLen),
				LandingQueueLen: int(row.LandingQueueLen),
				LastWriteMs:     row.LastWriteMs,
			})
		}

		fmt.Println("Got session data in ", time.Since(txStart))

		exportJSON, err := json.Marshal(export)
		if err != nil {
			return fmt.Errorf("error marshalling session data: %w", err)
		}

		fileName := fmt.Sprintf("%s_%s.json.gz", sess.Aircraft, sess.StartTime.Format("20060102_150405"))
		fileName = strings.ReplaceAll(fileName, " ", "_")
		fileName = strings.ReplaceAll(fileName, ":", "_")
		if err := writeGzip(fileName, exportJSON); err != nil {
			return err
		}
		fmt.Println("Wrote session data to ", fileName)

		if len(export.Samples) >= 2 {
			trackName := strings.TrimSuffix(fileName, ".json.gz") + ".geojson"
			projector := geo.NewProjector(
				viper.GetFloat64("geo.originLon"),
				viper.GetFloat64("geo.originLat"),
			)
			runway := core.Runway{
				HalfWidth:  sess.RunwayHalfWidth,
				HalfLength: sess.RunwayHalfLength,
			}
			if err := projector.WriteTrackGeoJSON(trackName, export.Samples, runway); err != nil {
				return fmt.Errorf("error writing GeoJSON track: %w", err)
			}
			fmt.Println("Wrote ground track to ", trackName)
		}
	}

	return nil
}

func writeGzip(fileName string, data []byte) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer func() { _ = f.Close() }()

	gzWriter := gzip.NewWriter(f)
	defer func() { _ = gzWriter.Close() }()
	if _, err = gzWriter.Write(data); err != nil {
		return fmt.Errorf("error writing to gzip: %w", err)
	}
	return nil
}

func sampleFromRow(row model.FlightSampleRow) core.FlightSample {
	s := core.FlightSample{
		Tick:     row.Tick,
		SimTime:  row.SimTime,
		Position: mathx.Vec3{X: row.PosX, Y: row.PosY, Z: row.PosZ},
		Velocity: mathx.Vec3{X: row.VelX, Y: row.VelY, Z: row.VelZ},
		Speed:    row.Speed,
		AoA:      row.AoA,
		RollDeg:  row.RollDeg,
		PitchDeg: row.PitchDeg,
		Heading:  row.Heading,
		Airborne: row.Airborne,
	}
	// Controls and forces are stored as JSON documents; a decode
	// failure leaves them zeroed rather than aborting the export.
	_ = json.Unmarshal(row.Controls, &s.Controls)
	_ = json.Unmarshal(row.Forces, &s.Forces)
	return s
}

func touchdownFromRow(row model.LandingEvent, timestep float64) core.Touchdown {
	return core.Touchdown{
		Tick:     row.Tick,
		SimTime:  float64(row.Tick) * timestep,
		Position: mathx.Vec3{X: row.PosX, Z: row.PosZ},
		Report: core.LandingReport{
			Evaluated: true,
			Success:   row.Success,
			Speed:     row.Speed,
			SinkRate:  row.SinkRate,
			PitchDeg:  row.PitchDeg,
			RollDeg:   row.RollDeg,
			OnRunway:  row.OnRunway,
			Message:   row.Message,
		},
	}
}

// reduceSession thins stored samples to every fifth tick to recover
// space from long recordings.
func reduceSession(sessionIDs []string) error {
	for _, sessionID := range sessionIDs {
		sessionIDInt, err := strconv.Atoi(sessionID)
		if err != nil {
			return err
		}

		txStart := time.Now()
		var sess model.FlightSession
		err = db.Model(&model.FlightSession{}).Where("id = ?", sessionIDInt).First(&sess).Error
		if err != nil {
			return fmt.Errorf("error getting session: %w", err)
		}

		samplesToDelete := []model.FlightSampleRow{}
		err = db.Model(&model.FlightSampleRow{}).Where(
			"flight_session_id = ? AND tick % 5 != 0",
			sess.ID,
		).Order("tick ASC").Find(&samplesToDelete).Error
		if err != nil {
			return fmt.Errorf("error getting samples to delete: %w", err)
		}

		if len(samplesToDelete) == 0 {
			fmt.Println("No samples to delete for session ", sessionID, ", checked in ", time.Since(txStart))
			continue
		}

		err = db.Delete(&samplesToDelete).Error
		if err != nil {
			return fmt.Errorf("error deleting samples: %w", err)
		}

		fmt.Println("Deleted ", len(samplesToDelete), " samples from session ", sessionID, " in ", time.Since(txStart))
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	fmt.Println("Finished reducing samples, running VACUUM to recover space...")
	txStart := time.Now()
	tables := []string{}
	err := db.Raw(
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`,
	).Scan(&tables).Error
	if err != nil {
		return fmt.Errorf("error getting tables to vacuum: %w", err)
	}

	for _, table := range tables {
		err = db.Exec(fmt.Sprintf(`VACUUM (FULL) "%s"`, table)).Error
		if err != nil {
			return fmt.Errorf("error running VACUUM on table %s: %w", table, err)
		}
	}
	fmt.Println("Finished VACUUM in ", time.Since(txStart))

	return nil
}
