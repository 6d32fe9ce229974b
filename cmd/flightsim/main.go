package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/openfdm/flightsim/internal/api"
	"github.com/openfdm/flightsim/internal/config"
	"github.com/openfdm/flightsim/internal/database"
	"github.com/openfdm/flightsim/internal/dispatcher"
	"github.com/openfdm/flightsim/internal/flightmodel"
	"github.com/openfdm/flightsim/internal/geo"
	"github.com/openfdm/flightsim/internal/influx"
	"github.com/openfdm/flightsim/internal/input"
	"github.com/openfdm/flightsim/internal/logging"
	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/internal/monitor"
	intOtel "github.com/openfdm/flightsim/internal/otel"
	"github.com/openfdm/flightsim/internal/session"
	"github.com/openfdm/flightsim/internal/sim"
	"github.com/openfdm/flightsim/internal/storage"
	"github.com/openfdm/flightsim/internal/storage/memory"
	"github.com/openfdm/flightsim/internal/worker"
	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// version info - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "flightsim"
)

// file paths
var (
	// ConfigDir is where flightsim.cfg.json is looked up. Overridable
	// with the FLIGHTSIM_CONFIG environment variable.
	ConfigDir string

	LogFilePath string
	LogFile     *os.File
)

// global services
var (
	SlogManager *logging.Manager
	Logger      *slog.Logger

	// ZLogger feeds the database and influx managers.
	ZLogger zerolog.Logger

	OTelProvider *intOtel.Provider

	sessionCtx      *session.Context
	storageBackend  storage.Backend
	recorder        *worker.Manager
	monitorService  *monitor.Service
	influxManager   *influx.Manager
	eventDispatcher *dispatcher.Dispatcher
	inputCollector  *input.Collector
	driver          *sim.Driver

	startTime time.Time = time.Now()
)

func main() {
	var err error

	ConfigDir = os.Getenv("FLIGHTSIM_CONFIG")
	if ConfigDir == "" {
		ConfigDir = "."
	}

	// Bootstrap logging to stdout only so config load failures are
	// visible, then re-setup once the log file exists.
	SlogManager = logging.NewManager()
	SlogManager.Setup(nil, "info", nil, nil)
	Logger = SlogManager.Logger()

	err = config.Load(ConfigDir)
	if err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", ConfigDir)
	}

	if err := setupLogFile(); err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	// OTel provider before the final logging setup so the slog bridge
	// can attach to it.
	otelLogProvider := setupOTel()

	sessionCtx = session.NewContext()

	SlogManager.Setup(LogFile, viper.GetString("logLevel"), otelLogProvider, func() []slog.Attr {
		sess := sessionCtx.Get()
		return []slog.Attr{
			slog.String("aircraft", sess.Aircraft),
			slog.Uint64("sessionID", uint64(sess.ID)),
			slog.Uint64("tick", sessionCtx.Tick()),
		}
	})
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	ZLogger = setupZerolog()

	args := os.Args[1:]
	if len(args) > 0 && strings.ToLower(args[0]) == "setupdb" {
		if err := setupDB(); err != nil {
			panic(err)
		}
		Logger.Info("DB setup complete.")
		return
	}

	if err := run(); err != nil {
		Logger.Error("Simulator exited with error", "error", err)
		os.Exit(1)
	}
}

// setupLogFile creates the logs directory and the session log file,
// rotating any previous file with the same name.
func setupLogFile() error {
	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.MkdirAll(logsDir, 0755)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, startTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	return err
}

func setupOTel() *sdklog.LoggerProvider {
	if !viper.GetBool("otel.enabled") {
		return nil
	}

	var err error
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      true,
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: config.GetDuration("otel.batchTimeout", 5*time.Second),
		LogWriter:    LogFile,
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		return nil
	}
	Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", viper.GetString("otel.endpoint"))
	return OTelProvider.LoggerProvider()
}

// setupZerolog builds the logger used by the database and influx
// managers: console plus log file, with an optional GELF sink to
// Graylog.
func setupZerolog() zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		},
	}
	if LogFile != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        LogFile,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}
	if viper.GetBool("graylog.enabled") {
		gelfWriter, err := gelf.NewWriter(viper.GetString("graylog.address"))
		if err != nil {
			Logger.Warn("Failed to connect GELF writer", "error", err, "address", viper.GetString("graylog.address"))
		} else {
			writers = append(writers, gelfWriter)
		}
	}

	mlw := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(mlw).With().Timestamp().Logger().
		Level(zerologLevel(viper.GetString("logLevel")))
}

func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupDB migrates the schema on whichever database is reachable.
func setupDB() error {
	dbManager := database.NewManager(ZLogger)
	if err := dbManager.Connect(); err != nil {
		return err
	}
	return dbManager.Setup()
}

// newSession builds the session row from config and the model
// constants.
func newSession() *model.FlightSession {
	return &model.FlightSession{
		Aircraft:         viper.GetString("aircraft"),
		StartTime:        startTime,
		Timestep:         flightmodel.DefaultDT,
		MaxSpeed:         flightmodel.DefaultMaxSpeed,
		RunwayHalfWidth:  viper.GetFloat64("sim.runway.halfWidth"),
		RunwayHalfLength: viper.GetFloat64("sim.runway.halfLength"),
		WindX:            viper.GetFloat64("sim.wind.x"),
		WindY:            viper.GetFloat64("sim.wind.y"),
		WindZ:            viper.GetFloat64("sim.wind.z"),
		RecorderVersion:  CurrentVersion,
	}
}

func run() error {
	var err error
	Logger.Info("Starting up...", "version", CurrentVersion, "build", BuildDate)

	// Storage backend and session.
	storageBackend, err = storage.NewBackend(config.Storage(), Logger)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err = storageBackend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	sess := newSession()
	if err = storageBackend.StartSession(sess); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	sessionCtx.Set(sess)
	Logger.Info("Session started", "aircraft", sess.Aircraft, "sessionID", sess.ID,
		"storage", viper.GetString("storage.type"))

	// Telemetry recorder.
	if viper.GetBool("recorder.enabled") {
		recorder, err = worker.NewManager(worker.Dependencies{
			Log:           Logger,
			SampleEvery:   uint64(viper.GetInt("recorder.sampleEvery")),
			FlushInterval: config.GetDuration("recorder.flushInterval", time.Second),
		}, storageBackend)
		if err != nil {
			return fmt.Errorf("failed to create recorder: %w", err)
		}
		recorder.Start()
	}

	// Dispatcher and control input.
	eventDispatcher, err = dispatcher.New(Logger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	inputCollector = input.NewCollector()
	inputCollector.RegisterHandlers(eventDispatcher)

	// InfluxDB is optional; a failed connection falls back to the
	// gzipped line-protocol backup file inside the manager.
	if viper.GetBool("influx.enabled") {
		backupPath := filepath.Join(viper.GetString("logsDir"), "influx_backup.log.gzip")
		influxManager = influx.NewManager(ZLogger, backupPath)
		if err := influxManager.Connect(); err != nil {
			Logger.Warn("InfluxDB unavailable", "error", err)
			influxManager = nil
		}
	}

	// Simulation driver.
	script, err := sim.ScriptFromConfig()
	if err != nil {
		Logger.Warn("Ignoring malformed sim.script", "error", err)
	}
	env := core.DefaultEnvironment()
	env.Wind = mathx.Vec3{
		X: viper.GetFloat64("sim.wind.x"),
		Y: viper.GetFloat64("sim.wind.y"),
		Z: viper.GetFloat64("sim.wind.z"),
	}
	env.Runway = core.Runway{
		HalfWidth:  viper.GetFloat64("sim.runway.halfWidth"),
		HalfLength: viper.GetFloat64("sim.runway.halfLength"),
	}
	driver = sim.New(sim.Config{
		StepsPerTick: viper.GetInt("sim.stepsPerTick"),
		TickRate:     viper.GetInt("sim.tickRate"),
		Aircraft:     sess.Aircraft,
		Environment:  env,
		Script:       script,
	}, sim.Dependencies{
		Log:      Logger,
		Input:    inputCollector,
		Recorder: recorder,
		Session:  sessionCtx,
	})
	driver.RegisterHandlers(eventDispatcher)

	// Health monitor.
	monitorService = monitor.NewService(monitor.Dependencies{
		Log:        Logger,
		Recorder:   recorder,
		Influx:     influxManager,
		TickSource: driver.Tick,
		StatusDir:  viper.GetString("logsDir"),
	})
	if err := monitorService.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if viper.GetBool("sim.showInstruments") {
		go showInstruments(ctx)
	}

	maxTicks := viper.GetUint64("sim.maxTicks")
	Logger.Info("Simulation running",
		"tickRate", viper.GetInt("sim.tickRate"),
		"stepsPerTick", viper.GetInt("sim.stepsPerTick"),
		"maxTicks", maxTicks)

	err = driver.RunTicks(ctx, eventDispatcher, maxTicks)
	if err != nil && err != context.Canceled {
		Logger.Error("Simulation loop failed", "error", err)
	}

	return shutdown()
}

// showInstruments prints the instrument panel once per second, the
// same text :SIM:STATUS: returns through the dispatcher.
func showInstruments(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Println(sim.Instruments(driver.Snapshot()))
		}
	}
}

func shutdown() error {
	Logger.Info("Shutting down...")

	monitorService.Stop()
	if recorder != nil {
		recorder.Stop()
	}

	if err := storageBackend.EndSession(); err != nil {
		Logger.Error("Failed to end session", "error", err)
	}

	// Memory-backed sessions additionally get a GeoJSON ground track
	// next to the JSON export.
	if mem, ok := storageBackend.(*memory.Backend); ok {
		exportTrack(mem)
	}

	if err := storageBackend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
	}
	if exp, ok := storageBackend.(storage.Exportable); ok {
		Logger.Info("Session data exported", "path", exp.ExportedFilePath())
		uploadRecording(exp.ExportedFilePath())
	}

	if OTelProvider != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(flushCtx); err != nil {
			Logger.Warn("Failed to flush OTel data", "error", err)
		}
		if err := OTelProvider.Shutdown(flushCtx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}

	Logger.Info("Shutdown complete")
	return nil
}

// uploadRecording pushes the exported session file to the review
// frontend when configured.
func uploadRecording(path string) {
	if !viper.GetBool("api.enabled") || path == "" {
		return
	}

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.secret"))
	if err := client.Healthcheck(); err != nil {
		Logger.Info("Review frontend is offline, skipping upload", "error", err)
		return
	}

	var landings int
	if mem, ok := storageBackend.(*memory.Backend); ok {
		landings = len(mem.Touchdowns())
	}
	meta := api.UploadMetadata{
		Aircraft:        sessionCtx.Get().Aircraft,
		SessionDuration: float64(driver.Tick()) * flightmodel.DefaultDT,
		Landings:        landings,
		Tag:             viper.GetString("api.tag"),
	}
	if err := client.Upload(path, meta); err != nil {
		Logger.Error("Failed to upload recording", "error", err, "path", path)
		return
	}
	Logger.Info("Recording uploaded", "path", path, "server", viper.GetString("api.serverUrl"))
}

func exportTrack(mem *memory.Backend) {
	samples := mem.Samples()
	if len(samples) < 2 {
		return
	}

	projector := geo.NewProjector(
		viper.GetFloat64("geo.originLon"),
		viper.GetFloat64("geo.originLat"),
	)
	runway := core.Runway{
		HalfWidth:  viper.GetFloat64("sim.runway.halfWidth"),
		HalfLength: viper.GetFloat64("sim.runway.halfLength"),
	}

	trackPath := filepath.Join(
		viper.GetString("storage.memory.outputDir"),
		fmt.Sprintf("track_%s.geojson", startTime.Format("20060102_150405")),
	)
	if err := projector.WriteTrackGeoJSON(trackPath, samples, runway); err != nil {
		Logger.Error("Failed to write GeoJSON track", "error", err)
		return
	}
	Logger.Info("Ground track exported", "path", trackPath)
}
