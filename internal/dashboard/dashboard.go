// Package dashboard owns the single dashboard session: the loaded dataset,
// the current selection and the map request tokens.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/couchcryptid/dengue-dashboard/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotLoaded           = errors.New("dataset not loaded")
	ErrStaleResponse       = errors.New("stale map response discarded")
	ErrGeometryUnavailable = errors.New("geometry unavailable")
	ErrNoYears             = errors.New("no year at or after the minimum year")
)

// State is the lifecycle of the most recent load.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Status is what the front end shows outside the panels.
type Status struct {
	State    State      `json:"state"`
	Reason   string     `json:"reason,omitempty"`
	LoadID   string     `json:"load_id,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	MapError string     `json:"map_error,omitempty"`
}

// SnapshotPublisher exports a successful load downstream.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Settings tunes the controller.
type Settings struct {
	Locations    map[domain.Kind]string
	Columns      domain.Columns
	MinYear      int
	Bins         int
	DefaultState int
}

// Dashboard serializes every selection change and recomputation behind one
// mutex. Geometry is fetched outside the lock; its result is applied only if
// no newer map request or selection change happened meanwhile.
type Dashboard struct {
	settings  Settings
	fetcher   domain.SourceFetcher
	geometry  domain.GeometrySource
	publisher SnapshotPublisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	loadMu sync.Mutex
	ready  atomic.Bool

	mu      sync.Mutex
	dataset *domain.Dataset
	sel     domain.Selection
	status  Status
	token   uint64
}

// New creates a controller. publisher may be nil.
func New(settings Settings, fetcher domain.SourceFetcher, geometry domain.GeometrySource, publisher SnapshotPublisher,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	return &Dashboard{
		settings:  settings,
		fetcher:   fetcher,
		geometry:  geometry,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		status:    Status{State: StateLoading},
	}
}

// CheckReadiness returns nil once a dataset has been loaded.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if !d.ready.Load() {
		return ErrNotLoaded
	}
	return nil
}

// Status returns the load and map panel status.
func (d *Dashboard) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Load fetches every export concurrently and swaps in the new dataset. Any
// failure aborts the load; a previously loaded dataset keeps serving.
func (d *Dashboard) Load(ctx context.Context) error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	start := d.clock.Now()
	d.mu.Lock()
	d.status.State, d.status.Reason = StateLoading, ""
	d.mu.Unlock()

	ds, err := d.build(ctx)
	if err != nil {
		d.metrics.Loads.WithLabelValues("error").Inc()
		d.mu.Lock()
		d.status.State, d.status.Reason = StateFailed, err.Error()
		d.mu.Unlock()
		d.logger.Error("dataset load failed", "error", err)
		return fmt.Errorf("load dataset: %w", err)
	}

	loadedAt := d.clock.Now()
	snap := domain.Snapshot{LoadID: uuid.NewString(), LoadedAt: loadedAt, Dataset: ds}

	d.mu.Lock()
	d.dataset = ds
	d.sel = domain.DefaultSelection(ds, d.settings.MinYear, d.settings.DefaultState)
	d.token++
	d.status = Status{State: StateReady, LoadID: snap.LoadID, LoadedAt: &loadedAt}
	d.mu.Unlock()

	d.ready.Store(true)
	d.metrics.Loads.WithLabelValues("success").Inc()
	d.metrics.LoadDuration.Observe(d.clock.Since(start).Seconds())
	d.metrics.DatasetLoaded.Set(1)
	d.logger.Info("dataset loaded",
		"load_id", snap.LoadID,
		"states", ds.States.Len(),
		"municipalities", ds.Municipalities.Len(),
		"years", len(ds.Years(d.settings.MinYear)),
	)

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, snap); err != nil {
			d.logger.Warn("snapshot publish failed", "load_id", snap.LoadID, "error", err)
		}
	}
	return nil
}

func (d *Dashboard) build(ctx context.Context) (*domain.Dataset, error) {
	raw, err := d.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := domain.BuildDataset(raw, d.settings.Columns)
	if err != nil {
		return nil, err
	}
	if len(ds.Years(d.settings.MinYear)) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoYears, d.settings.MinYear)
	}
	return ds, nil
}

// fetchAll reads the six exports concurrently; the first error cancels the rest.
// Every location is checked before any fetch starts.
func (d *Dashboard) fetchAll(ctx context.Context) (map[domain.Kind]string, error) {
	for _, kind := range domain.Kinds {
		if _, ok := d.settings.Locations[kind]; !ok {
			return nil, fmt.Errorf("%s: no location configured", kind)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	raw := make(map[domain.Kind]string, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		loc := d.settings.Locations[kind]
		g.Go(func() error {
			start := d.clock.Now()
			text, err := d.fetcher.Fetch(gctx, loc)
			d.metrics.SourceFetch.WithLabelValues(string(kind)).Observe(d.clock.Since(start).Seconds())
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			mu.Lock()
			raw[kind] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

// loaded must be called with mu held.
func (d *Dashboard) loaded() (*domain.Dataset, error) {
	if d.dataset == nil {
		return nil, ErrNotLoaded
	}
	return d.dataset, nil
}

// MinYear is the first year shown by selectors, series and exports.
func (d *Dashboard) MinYear() int { return d.settings.MinYear }
