package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"rideengine/internal/domain"
	"rideengine/internal/logger"
	"rideengine/internal/repository"
)

// MarkerPublisher accepts geo-markers for asynchronous delivery. Publish must
// not block and must not fail the caller.
type MarkerPublisher interface {
	Publish(ctx context.Context, marker domain.GeoMarker)
}

// MarkerSink is a named destination for geo-markers.
type MarkerSink struct {
	Name string
	Repo repository.GeoMarkerRepository
}

type markerJob struct {
	marker    domain.GeoMarker
	requestID string
}

// MarkerDispatcher is an in-process outbox: ride creation enqueues a marker
// and a background worker writes it to every sink. Full queues and sink
// failures are logged and dropped.
type MarkerDispatcher struct {
	sinks   []MarkerSink
	timeout time.Duration
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan markerJob
	done   chan struct{}

	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

var _ MarkerPublisher = (*MarkerDispatcher)(nil)

// NewMarkerDispatcher creates a dispatcher. Call Start before publishing.
func NewMarkerDispatcher(log *slog.Logger, queueSize int, timeout time.Duration, sinks ...MarkerSink) *MarkerDispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &MarkerDispatcher{
		sinks:   sinks,
		timeout: timeout,
		log:     log,
		queue:   make(chan markerJob, queueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (d *MarkerDispatcher) Start() {
	go d.run()
}

// Publish enqueues marker without blocking.
func (d *MarkerDispatcher) Publish(ctx context.Context, marker domain.GeoMarker) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		logger.Warn(ctx, d.log, "geo_marker_enqueue", "marker dispatcher closed, dropping marker", "ride_id", marker.RideID)
		return
	}

	select {
	case d.queue <- markerJob{marker: marker, requestID: logger.RequestID(ctx)}:
	default:
		d.dropped.Add(1)
		logger.Warn(ctx, d.log, "geo_marker_enqueue", "marker queue full, dropping marker", "ride_id", marker.RideID)
	}
}

// Close stops accepting markers and waits for queued ones to be written or
// for ctx to expire.
func (d *MarkerDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns delivered, dropped and failed marker counts.
func (d *MarkerDispatcher) Stats() (delivered, dropped, failed int64) {
	return d.delivered.Load(), d.dropped.Load(), d.failed.Load()
}

func (d *MarkerDispatcher) run() {
	defer close(d.done)
	for job := range d.queue {
		d.deliver(job)
	}
}

func (d *MarkerDispatcher) deliver(job markerJob) {
	ctx := logger.WithRideID(logger.WithRequestID(context.Background(), job.requestID), job.marker.RideID)

	ok := true
	for _, sink := range d.sinks {
		writeCtx, cancel := context.WithTimeout(ctx, d.timeout)
		marker := job.marker
		err := sink.Repo.Create(writeCtx, &marker)
		cancel()
		if err != nil {
			ok = false
			logger.Error(ctx, d.log, "geo_marker_write", "failed to write geo marker", err, "sink", sink.Name)
		}
	}

	if ok {
		d.delivered.Add(1)
	} else {
		d.failed.Add(1)
	}
}
