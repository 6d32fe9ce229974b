// Package gormstorage implements the storage.Backend interface on top
// of any GORM dialector, with internal queues and a background DB
// writer goroutine. The postgres and sqlite backends wrap it.
package gormstorage

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/internal/queue"
	"github.com/openfdm/flightsim/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB  *gorm.DB
	Log *slog.Logger

	// FlushInterval is the pause between write cycles. Zero means the
	// default of 2 seconds.
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Samples  *queue.Queue[model.FlightSampleRow]
	Landings *queue.Queue[model.LandingEvent]
	Perf     *queue.Queue[model.SimPerformance]
}

func newQueues() *queues {
	return &queues{
		Samples:  queue.New[model.FlightSampleRow](),
		Landings: queue.New[model.LandingEvent](),
		Perf:     queue.New[model.SimPerformance](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch
// writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64
	stopChan  chan struct{}
	dbReady   bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = 2 * time.Second
	}
	return &Backend{deps: deps}
}

// Init creates internal queues, runs schema migration, and starts the
// DB writer goroutine. The DB must have been injected via Dependencies.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("no database connection configured")
	}

	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.dbReady = true

	go b.dbWriterLoop(b.stopChan)
	return nil
}

// Close stops the DB writer goroutine after a final drain.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.stopChan = nil
	}
	b.writeCycle()
	return nil
}

// StartSession inserts the session row and stores its ID for the DB
// writer goroutine.
func (b *Backend) StartSession(s *model.FlightSession) error {
	if err := b.deps.DB.Create(s).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}
	b.sessionID.Store(uint64(s.ID))
	return nil
}

// SetSessionID sets the current session ID for the DB writer (used by
// export tooling operating on existing recordings).
func (b *Backend) SetSessionID(id uint) {
	b.sessionID.Store(uint64(id))
}

// EndSession drains outstanding rows and stamps the session end time.
func (b *Backend) EndSession() error {
	b.writeCycle()

	id := uint(b.sessionID.Load())
	if id == 0 {
		return nil
	}
	return b.deps.DB.Model(&model.FlightSession{}).
		Where("id = ?", id).
		Update("end_time", time.Now()).Error
}

// RecordSample converts and queues a telemetry sample.
func (b *Backend) RecordSample(s *core.FlightSample) error {
	b.queues.Samples.Push(model.FromSample(*s))
	return nil
}

// RecordLanding converts and queues a graded touchdown.
func (b *Backend) RecordLanding(t *core.Touchdown) error {
	b.queues.Landings.Push(model.FromTouchdown(*t))
	return nil
}

// RecordPerformance converts and queues a driver-health sample.
func (b *Backend) RecordPerformance(p *core.PerfSample) error {
	b.queues.Perf.Push(model.FromPerf(*p))
	return nil
}

// writeQueue writes all items from a queue to the database in a
// transaction. On failure the items are requeued.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.DrainAll()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log.Error("DB writer insert failed", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
}

// writeCycle drains every queue once, stamping the current session ID.
func (b *Backend) writeCycle() {
	if !b.dbReady {
		return
	}

	// Read sessionID once per write cycle
	sessionID := uint(b.sessionID.Load())

	stampSamples := func(items []model.FlightSampleRow) {
		for i := range items {
			items[i].FlightSessionID = sessionID
		}
	}
	stampLandings := func(items []model.LandingEvent) {
		for i := range items {
			items[i].FlightSessionID = sessionID
		}
	}
	stampPerf := func(items []model.SimPerformance) {
		for i := range items {
			items[i].FlightSessionID = sessionID
		}
	}

	writeQueue(b.deps.DB, b.queues.Samples, "flight samples", b.deps.Log, stampSamples)
	writeQueue(b.deps.DB, b.queues.Landings, "landing events", b.deps.Log, stampLandings)
	writeQueue(b.deps.DB, b.queues.Perf, "sim performances", b.deps.Log, stampPerf)
}

// dbWriterLoop periodically drains queues into the DB until stop is
// closed.
func (b *Backend) dbWriterLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.writeCycle()
		}
	}
}
