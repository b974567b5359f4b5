package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/location"
	"github.com/bobby-s-dev/weather-buddy/internal/metrics"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/notify"
	"github.com/bobby-s-dev/weather-buddy/internal/storage"
)

var (
	toronto   = models.City{ID: "43.6532,-79.3832", Name: "Toronto", Admin1: "Ontario", Country: "Canada", Latitude: 43.6532, Longitude: -79.3832}
	vancouver = models.City{ID: "49.2827,-123.1207", Name: "Vancouver", Admin1: "British Columbia", Country: "Canada", Latitude: 49.2827, Longitude: -123.1207}
	montreal  = models.City{ID: "45.5017,-73.5673", Name: "Montreal", Admin1: "Quebec", Country: "Canada", Latitude: 45.5017, Longitude: -73.5673}

	errOffline = fmt.Errorf("%w: %w: dial tcp: no route to host", models.ErrForecastFailed, models.ErrNetwork)
)

// fakeClient serves a calm forecast for every city unless told otherwise.
type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	errs    map[string]error
	mutate  func(f *models.ForecastData)
	blockOn map[string]chan struct{}
	date    string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		errs:    map[string]error{},
		blockOn: map[string]chan struct{}{},
		date:    "2024-06-01",
	}
}

func (c *fakeClient) FetchForecast(ctx context.Context, city models.City) (*models.ForecastData, error) {
	c.mu.Lock()
	c.calls = append(c.calls, city.ID)
	err := c.errs[city.ID]
	block := c.blockOn[city.ID]
	mutate := c.mutate
	date := c.date
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	f := &models.ForecastData{
		City:      city,
		FetchedAt: 1717236000000,
		Current: models.CurrentForecast{
			TimeISO:      date + "T10:30",
			TemperatureC: 14,
			FeelsLikeC:   13,
			HumidityPct:  55,
			WindKph:      9,
			WeatherCode:  2,
			IsDay:        true,
		},
		Daily: []models.DailyForecast{
			{DateISO: date, WeatherCode: 2, TempMaxC: 19, TempMinC: 8, RainChancePct: 10, UVMax: 4, WindMaxKph: 18},
		},
	}
	if mutate != nil {
		mutate(f)
	}
	return f, nil
}

func (c *fakeClient) setErr(cityID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[cityID] = err
}

func (c *fakeClient) setMutate(fn func(f *models.ForecastData)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutate = fn
}

func (c *fakeClient) setDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = date
}

func (c *fakeClient) block(cityID string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{})
	c.blockOn[cityID] = ch
	return ch
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fakeNotifier struct {
	mu         sync.Mutex
	permission notify.Permission
	sent       []notify.Message
	scheduled  map[string][2]int
	cancelled  []string
	next       int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{permission: notify.PermissionGranted, scheduled: map[string][2]int{}}
}

func (n *fakeNotifier) Permission(context.Context) (notify.Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission, nil
}

func (n *fakeNotifier) Notify(_ context.Context, msg notify.Message) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	n.next++
	return fmt.Sprintf("n%d", n.next), nil
}

func (n *fakeNotifier) ScheduleDaily(_ context.Context, hour, minute int, _ notify.Message) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	id := fmt.Sprintf("daily%d", n.next)
	n.scheduled[id] = [2]int{hour, minute}
	return id, nil
}

func (n *fakeNotifier) Cancel(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.scheduled, id)
	n.cancelled = append(n.cancelled, id)
	return nil
}

func (n *fakeNotifier) sentMessages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

func (n *fakeNotifier) scheduledIDs() map[string][2]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string][2]int, len(n.scheduled))
	for k, v := range n.scheduled {
		out[k] = v
	}
	return out
}

type fakeSound struct {
	mu     sync.Mutex
	played []notify.Sound
}

func (p *fakeSound) Play(_ context.Context, s notify.Sound) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, s)
	return nil
}

func (p *fakeSound) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}

type fakeLocator struct {
	granted bool
	pos     location.Position
	places  []models.Place
	posErr  error
}

func (l *fakeLocator) RequestPermission(context.Context) (bool, error) { return l.granted, nil }

func (l *fakeLocator) CurrentPosition(context.Context) (location.Position, error) {
	return l.pos, l.posErr
}

func (l *fakeLocator) ReverseGeocode(context.Context, location.Position) ([]models.Place, error) {
	return l.places, nil
}

// failingKV accepts reads but rejects every write.
type failingKV struct {
	*storage.MemoryKV
}

func (f failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

// gatedKV parks the first read of key until release is closed.
type gatedKV struct {
	*storage.MemoryKV
	key     string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedKV(key string) *gatedKV {
	return &gatedKV{
		MemoryKV: storage.NewMemoryKV(zap.NewNop()),
		key:      key,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (g *gatedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == g.key {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.MemoryKV.Get(ctx, key)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store    *Store
	client   *fakeClient
	notifier *fakeNotifier
	sound    *fakeSound
	kv       storage.KV
	repo     *storage.Repository
	clock    *clock
}

type harnessOption func(*harness, *Options)

func withLocator(l location.Locator) harnessOption {
	return func(_ *harness, o *Options) { o.Locator = l }
}

func withoutNotifier() harnessOption {
	return func(_ *harness, o *Options) { o.Notifier = nil }
}

func withMetrics(m *metrics.BuddyMetrics) harnessOption {
	return func(_ *harness, o *Options) { o.Metrics = m }
}

func withKV(kv storage.KV) harnessOption {
	return func(h *harness, _ *Options) { h.kv = kv }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		client:   newFakeClient(),
		notifier: newFakeNotifier(),
		sound:    &fakeSound{},
		kv:       storage.NewMemoryKV(zap.NewNop()),
		clock:    &clock{now: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
	}
	o := Options{
		Notifier: h.notifier,
		Sound:    h.sound,
		Now:      h.clock.Now,
	}
	for _, opt := range opts {
		opt(h, &o)
	}

	h.repo = storage.NewRepository(h.kv, zap.NewNop())
	h.store = New(h.client, h.repo, o, zap.NewNop())
	t.Cleanup(h.store.Close)
	return h
}

func (h *harness) savedPrefs(t *testing.T) models.Preferences {
	t.Helper()
	p, err := h.repo.LoadPrefs(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	return *p
}

func stormy(f *models.ForecastData) {
	f.Current.RainChancePctNow = models.Float(85)
	f.Current.WindKph = 42
}
