// Package search runs debounced city searches. Only the result of the most
// recent query is ever applied.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/cities"
	"github.com/bobby-s-dev/weather-buddy/internal/metrics"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const (
	DefaultDebounce = 260 * time.Millisecond
	DefaultCacheTTL = 5 * time.Minute
	DefaultCount    = 10
)

type Geocoder interface {
	GeocodeCities(ctx context.Context, query string, count int) ([]models.City, error)
}

type Options struct {
	Debounce time.Duration
	CacheTTL time.Duration
	Count    int
}

// State is a snapshot of the search box.
type State struct {
	Query   string                `json:"query"`
	Results []models.City         `json:"results"`
	Status  models.Status         `json:"status"`
	Error   *models.FriendlyError `json:"error,omitempty"`
}

type Searcher struct {
	geocoder Geocoder
	cache    *gocache.Cache
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.BuddyMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  State
	gen    uint64
	timer  *time.Timer
	closed bool
}

func New(geocoder Geocoder, opts Options, logger *zap.Logger, m *metrics.BuddyMetrics) *Searcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	// No janitor goroutine; expired entries are swept after each insert.
	cache := gocache.New(opts.CacheTTL, 0)

	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		geocoder: geocoder,
		cache:    cache,
		opts:     opts,
		logger:   logger,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
		state:    State{Results: []models.City{}, Status: models.StatusIdle},
	}
}

// SetQuery records the query text and schedules a search once typing pauses.
// A blank query resets to idle immediately.
func (s *Searcher) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	s.state.Query = query
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if strings.TrimSpace(query) == "" {
		s.state.Results = []models.City{}
		s.state.Status = models.StatusIdle
		s.state.Error = nil
		return
	}

	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.run(gen, query)
	})
}

// Run searches the current query now, skipping the debounce.
func (s *Searcher) Run() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	gen, query := s.gen, s.state.Query
	s.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		s.SetQuery(query)
		return
	}
	s.run(gen, query)
}

func (s *Searcher) run(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.state.Status = models.StatusLoading
	s.mu.Unlock()
	defer s.wg.Done()

	results, err := s.Search(s.ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("Discarding stale search result", zap.String("query", query))
		return
	}
	if err != nil {
		friendly := models.FriendlyErrorFrom(err)
		s.state.Results = []models.City{}
		s.state.Status = models.StatusError
		s.state.Error = &friendly
		return
	}
	s.state.Results = results
	s.state.Status = models.StatusReady
	s.state.Error = nil
}

// Search looks query up synchronously, answering repeats from the cache.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.City, error) {
	if strings.TrimSpace(query) == "" {
		return []models.City{}, nil
	}

	key := cities.Normalize(query)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.RecordSearch("cache", "success")
		return append([]models.City(nil), cached.([]models.City)...), nil
	}

	results, err := s.geocoder.GeocodeCities(ctx, query, s.opts.Count)
	if err != nil {
		s.metrics.RecordSearch("network", "error")
		s.logger.Warn("City search failed",
			zap.String("query", query),
			zap.Error(err))
		return nil, err
	}
	s.metrics.RecordSearch("network", "success")

	s.cache.SetDefault(key, append([]models.City(nil), results...))
	s.cache.DeleteExpired()

	s.logger.Debug("City search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))
	return results, nil
}

func (s *Searcher) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Results = append([]models.City{}, s.state.Results...)
	if s.state.Error != nil {
		e := *s.state.Error
		out.Error = &e
	}
	return out
}

// Close cancels pending and in-flight searches and waits for them to end.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
