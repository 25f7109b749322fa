package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/dengue-dashboard/internal/adapter/source"
	"github.com/couchcryptid/dengue-dashboard/internal/config"
	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/couchcryptid/dengue-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loadTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// fakeGeometry serves fixed collections. When hold is set, the first call
// signals started and waits for release.
type fakeGeometry struct {
	states         []domain.Feature
	municipalities []domain.Feature
	err            error

	hold    bool
	started chan struct{}
	release chan struct{}

	mu        sync.Mutex
	calls     int
	lastState int
}

func (g *fakeGeometry) wait() {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if g.hold && first {
		g.started <- struct{}{}
		<-g.release
	}
}

func (g *fakeGeometry) States(_ context.Context) ([]domain.Feature, error) {
	g.wait()
	return g.states, g.err
}

func (g *fakeGeometry) Municipalities(_ context.Context, code int) ([]domain.Feature, error) {
	g.wait()
	g.mu.Lock()
	g.lastState = code
	g.mu.Unlock()
	return g.municipalities, g.err
}

type fakePublisher struct {
	snaps []domain.Snapshot
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, snap domain.Snapshot) error {
	p.snaps = append(p.snaps, snap)
	return p.err
}

// failingFetcher serves testdata except for one export.
type failingFetcher struct {
	inner  domain.SourceFetcher
	fail   string
	result string
	err    error
}

func (f *failingFetcher) Fetch(ctx context.Context, location string) (string, error) {
	if location == f.fail {
		return f.result, f.err
	}
	return f.inner.Fetch(ctx, location)
}

func testSettings() Settings {
	m := config.DefaultManifest()
	return Settings{
		Locations:    m.Locations("testdata"),
		Columns:      m.Columns,
		MinYear:      2014,
		Bins:         5,
		DefaultState: 51,
	}
}

type harness struct {
	d       *Dashboard
	geo     *fakeGeometry
	pub     *fakePublisher
	metrics *observability.Metrics
	clock   *clockwork.FakeClock
}

func newHarness(t *testing.T, fetcher domain.SourceFetcher) *harness {
	t.Helper()
	h := &harness{
		geo:     &fakeGeometry{},
		pub:     &fakePublisher{},
		metrics: observability.NewMetricsForTesting(),
		clock:   clockwork.NewFakeClockAt(loadTime),
	}
	if fetcher == nil {
		fetcher = source.NewFetcher(time.Second, discardLogger())
	}
	h.d = New(testSettings(), fetcher, h.geo, h.pub, h.clock, discardLogger(), h.metrics)
	return h
}

func loadedHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, nil)
	require.NoError(t, h.d.Load(context.Background()))
	return h
}

func TestLoad_Success(t *testing.T) {
	h := newHarness(t, nil)
	require.ErrorIs(t, h.d.CheckReadiness(context.Background()), ErrNotLoaded)
	assert.Equal(t, StateLoading, h.d.Status().State)

	require.NoError(t, h.d.Load(context.Background()))

	status := h.d.Status()
	assert.Equal(t, StateReady, status.State)
	assert.Empty(t, status.Reason)
	assert.NotEmpty(t, status.LoadID)
	require.NotNil(t, status.LoadedAt)
	assert.Equal(t, loadTime, *status.LoadedAt)
	require.NoError(t, h.d.CheckReadiness(context.Background()))

	sel, err := h.d.Selection()
	require.NoError(t, err)
	assert.Equal(t, domain.LevelState, sel.Level)
	assert.Equal(t, 2024, sel.Year)
	assert.Equal(t, 51, sel.StateCode)
	assert.Equal(t, "Mato Grosso", sel.StateName)
	assert.Equal(t, domain.BrazilName, sel.SelectedName)
	assert.Equal(t, domain.Known(1500), sel.SelectedValue)
	assert.Equal(t, "20-39", sel.AgeBand)

	require.Len(t, h.pub.snaps, 1)
	assert.Equal(t, status.LoadID, h.pub.snaps[0].LoadID)
	assert.Len(t, h.pub.snaps[0].Rows(), 12)

	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.Loads.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.DatasetLoaded), 0)
}

func TestLoad_PublishFailureDoesNotFailLoad(t *testing.T) {
	h := newHarness(t, nil)
	h.pub.err = errors.New("broker down")

	require.NoError(t, h.d.Load(context.Background()))
	assert.Equal(t, StateReady, h.d.Status().State)
}

func TestLoad_FetchFailure(t *testing.T) {
	locations := testSettings().Locations
	fetcher := &failingFetcher{
		inner: source.NewFetcher(time.Second, discardLogger()),
		fail:  locations[domain.KindAgeBands],
		err:   errors.New("connection reset"),
	}
	h := newHarness(t, fetcher)

	err := h.d.Load(context.Background())
	require.Error(t, err)

	status := h.d.Status()
	assert.Equal(t, StateFailed, status.State)
	assert.Contains(t, status.Reason, "faixa_etaria")
	assert.Contains(t, status.Reason, "connection reset")
	assert.Empty(t, status.LoadID)

	require.ErrorIs(t, h.d.CheckReadiness(context.Background()), ErrNotLoaded)
	_, err = h.d.Selection()
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = h.d.MapLayer(context.Background())
	require.ErrorIs(t, err, ErrNotLoaded)
	assert.Empty(t, h.pub.snaps)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.Loads.WithLabelValues("error")), 0)
}

type countingFetcher struct {
	inner domain.SourceFetcher
	calls atomic.Int32
}

func (f *countingFetcher) Fetch(ctx context.Context, location string) (string, error) {
	f.calls.Add(1)
	return f.inner.Fetch(ctx, location)
}

func TestLoad_MissingLocationStartsNoFetch(t *testing.T) {
	fetcher := &countingFetcher{inner: source.NewFetcher(time.Second, discardLogger())}
	h := newHarness(t, fetcher)
	locations := make(map[domain.Kind]string, len(h.d.settings.Locations))
	for k, v := range h.d.settings.Locations {
		if k != domain.KindRace {
			locations[k] = v
		}
	}
	h.d.settings.Locations = locations

	err := h.d.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raca: no location configured")
	assert.Equal(t, int32(0), fetcher.calls.Load())
	assert.Equal(t, StateFailed, h.d.Status().State)
}

func TestLoad_NoHeader(t *testing.T) {
	locations := testSettings().Locations
	fetcher := &failingFetcher{
		inner:  source.NewFetcher(time.Second, discardLogger()),
		fail:   locations[domain.KindStates],
		result: "<html>manutenção</html>\n",
	}
	h := newHarness(t, fetcher)

	err := h.d.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrNoHeader)
	assert.Contains(t, h.d.Status().Reason, "estados")
}

func TestLoad_NoYearAfterMinimum(t *testing.T) {
	h := newHarness(t, nil)
	h.d.settings.MinYear = 2030

	err := h.d.Load(context.Background())
	require.ErrorIs(t, err, ErrNoYears)
	assert.Equal(t, StateFailed, h.d.Status().State)
}

func TestReload_FailureKeepsPreviousDataset(t *testing.T) {
	h := loadedHarness(t)
	firstID := h.d.Status().LoadID

	h.d.fetcher = &failingFetcher{
		inner: source.NewFetcher(time.Second, discardLogger()),
		fail:  h.d.settings.Locations[domain.KindSex],
		err:   errors.New("gone"),
	}
	require.Error(t, h.d.Load(context.Background()))

	status := h.d.Status()
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, firstID, status.LoadID)
	require.NoError(t, h.d.CheckReadiness(context.Background()))
	_, err := h.d.Summary()
	require.NoError(t, err)
}
