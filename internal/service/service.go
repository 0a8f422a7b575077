// Package service owns the one-time load-index-build lifecycle and exposes
// the query and health surface. The Service is an explicitly constructed,
// dependency-injected instance so tests can build isolated copies; the
// catalog snapshot it builds (documents, inverted index, trie) is immutable
// and swapped atomically, so query paths never observe a partial build.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/niveshhub/fundsearch/internal/cache"
	"github.com/niveshhub/fundsearch/internal/catalog"
	"github.com/niveshhub/fundsearch/internal/engine"
	"github.com/niveshhub/fundsearch/internal/fund"
	"github.com/niveshhub/fundsearch/internal/index"
	apperrors "github.com/niveshhub/fundsearch/pkg/errors"
	"github.com/niveshhub/fundsearch/pkg/metrics"
)

// Status values reported by Health.
const (
	StatusInitializing = "initializing"
	StatusHealthy      = "healthy"
	StatusUnhealthy    = "unhealthy"
)

// Health is the service health surface.
type Health struct {
	Status           string  `json:"status"`
	DocumentsIndexed int     `json:"documentsIndexed"`
	IndexSize        int     `json:"indexSize"`
	DroppedRecords   int     `json:"droppedRecords"`
	CacheHitRatio    float64 `json:"cacheHitRatio"`
	MemoryUsage      uint64  `json:"memoryUsage"`
}

// snapshot is one fully built catalog: after Build returns it is never
// mutated again.
type snapshot struct {
	docs    map[string]*fund.Document
	index   *index.Index
	trie    *index.Trie
	engine  *engine.Engine
	dropped int
	builtAt time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithCache attaches a query cache. The service works without one; the
// health surface then reports a zero hit ratio.
func WithCache(qc *cache.QueryCache) Option {
	return func(s *Service) { s.cache = qc }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLimits overrides the default result-set limits.
func WithLimits(limits engine.Limits) Option {
	return func(s *Service) { s.limits = limits }
}

// Service is the search service.
type Service struct {
	source  catalog.Source
	cache   *cache.QueryCache
	metrics *metrics.Metrics
	limits  engine.Limits
	logger  *slog.Logger

	flight  singleflight.Group
	snap    atomic.Pointer[snapshot]
	initMu  sync.Mutex
	initErr error
}

// New creates a Service over the given catalog source.
func New(source catalog.Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		limits: engine.DefaultLimits,
		logger: slog.Default().With("component", "search-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize runs the load-index-trie build exactly once. Concurrent callers
// share a single in-flight build; once a build has failed the failure is
// terminal for this instance and every later call returns the same error.
func (s *Service) Initialize(ctx context.Context) error {
	if s.snap.Load() != nil {
		return nil
	}
	if err := s.loadInitErr(); err != nil {
		return err
	}
	_, err, _ := s.flight.Do("build", func() (interface{}, error) {
		if s.snap.Load() != nil {
			return nil, nil
		}
		snap, err := s.build(ctx)
		if err != nil {
			s.storeInitErr(err)
			return nil, err
		}
		s.snap.Store(snap)
		return nil, nil
	})
	return err
}

// Rebuild builds a fresh snapshot from the source and swaps it in,
// invalidating the query cache. On failure the previous snapshot stays
// live.
func (s *Service) Rebuild(ctx context.Context) error {
	_, err, _ := s.flight.Do("rebuild", func() (interface{}, error) {
		snap, err := s.build(ctx)
		if err != nil {
			return nil, fmt.Errorf("rebuilding catalog: %w", err)
		}
		s.snap.Store(snap)
		s.clearInitErr()
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx); err != nil {
				s.logger.Error("cache invalidation after rebuild failed", "error", err)
			}
		}
		return nil, nil
	})
	return err
}

// Search answers one query, triggering the lazy build on first use. The
// first caller pays the full build cost; all queries thereafter run against
// the sealed index only.
func (s *Service) Search(ctx context.Context, q engine.Query) (*engine.Response, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, apperrors.Newf(apperrors.ErrCatalogUnavailable, 503, "index build failed: %v", err)
	}
	snap := s.snap.Load()

	if s.cache != nil {
		resp, cached, err := s.cache.GetOrCompute(ctx, q, func() (*engine.Response, error) {
			return snap.engine.Search(q), nil
		})
		if err != nil {
			return nil, err
		}
		s.observeSearch(resp, cached)
		return resp, nil
	}

	resp := snap.engine.Search(q)
	s.observeSearch(resp, false)
	return resp, nil
}

// Suggest returns autocomplete suggestions for a prefix.
func (s *Service) Suggest(ctx context.Context, text string, max int) ([]string, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, apperrors.Newf(apperrors.ErrCatalogUnavailable, 503, "index build failed: %v", err)
	}
	if max <= 0 || max > s.limits.MaxSuggestions {
		max = s.limits.MaxSuggestions
	}
	return s.snap.Load().engine.Suggest(text, max), nil
}

// Health reports the service health surface.
func (s *Service) Health() Health {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	h := Health{
		Status:      StatusInitializing,
		MemoryUsage: mem.HeapAlloc,
	}
	if s.cache != nil {
		h.CacheHitRatio = s.cache.HitRatio()
	}
	if err := s.loadInitErr(); err != nil {
		h.Status = StatusUnhealthy
		return h
	}
	snap := s.snap.Load()
	if snap == nil {
		return h
	}
	h.Status = StatusHealthy
	h.DocumentsIndexed = len(snap.docs)
	h.IndexSize = snap.index.TokenCount()
	h.DroppedRecords = snap.dropped
	return h
}

// Ready reports whether a snapshot is live.
func (s *Service) Ready() bool {
	return s.snap.Load() != nil
}

// build streams the catalog, derives documents, and seals the index and
// trie. It runs on one goroutine; nothing reads the structures under
// construction until the snapshot pointer is swapped.
func (s *Service) build(ctx context.Context) (*snapshot, error) {
	start := time.Now()

	docs := make(map[string]*fund.Document)
	builder := index.NewBuilder()
	droppedMissing := 0

	stats, err := s.source.Stream(ctx, func(rec fund.RawRecord) error {
		doc, ok := fund.Build(rec)
		if !ok {
			droppedMissing++
			return nil
		}
		if _, exists := docs[doc.ID]; exists {
			// Duplicate scheme codes in the feed; re-indexing would
			// double-count frequencies, so keep the first occurrence.
			droppedMissing++
			return nil
		}
		docs[doc.ID] = doc
		builder.Add(doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("streaming catalog: %w", err)
	}

	ix := builder.Build()
	// Trie traversal order follows insertion order, so insert tokens in a
	// fixed order to keep suggestions stable across rebuilds.
	tokens := make([]string, 0, ix.TokenCount())
	ix.EachToken(func(token string, _ int) {
		tokens = append(tokens, token)
	})
	sort.Strings(tokens)
	trie := index.NewTrie()
	for _, token := range tokens {
		trie.Insert(token)
	}

	snap := &snapshot{
		docs:    docs,
		index:   ix,
		trie:    trie,
		engine:  engine.New(docs, ix, trie, s.limits),
		dropped: stats.Malformed + droppedMissing,
		builtAt: time.Now(),
	}

	elapsed := time.Since(start)
	s.logger.Info("catalog indexed",
		"documents", len(docs),
		"tokens", ix.TokenCount(),
		"malformed", stats.Malformed,
		"dropped", droppedMissing,
		"elapsed", elapsed.Round(time.Millisecond),
	)
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Add(float64(len(docs)))
		s.metrics.RecordsDroppedTotal.WithLabelValues("malformed").Add(float64(stats.Malformed))
		s.metrics.RecordsDroppedTotal.WithLabelValues("missing_fields").Add(float64(droppedMissing))
		s.metrics.CatalogBuildSeconds.Observe(elapsed.Seconds())
		s.metrics.IndexTokens.Set(float64(ix.TokenCount()))
	}
	return snap, nil
}

func (s *Service) observeSearch(resp *engine.Response, cached bool) {
	if s.metrics == nil {
		return
	}
	resultType := "hit"
	if resp.Total == 0 {
		resultType = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	s.metrics.SearchResultsCount.Observe(float64(len(resp.Results)))
	cacheStatus := "miss"
	if cached {
		cacheStatus = "hit"
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(resp.SearchTimeMs / 1000.0)
}

func (s *Service) loadInitErr() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	return s.initErr
}

func (s *Service) storeInitErr(err error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	s.initErr = err
}

func (s *Service) clearInitErr() {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	s.initErr = nil
}
