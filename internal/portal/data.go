package portal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// DemoRecordMessage is shown when a mock record cannot be deleted.
const DemoRecordMessage = "this is a demo record and cannot be deleted; connect the table service to manage real links"

// Result is what FetchNavigationData returns.
type Result struct {
	Success     bool
	Data        *domain.NavigationMap
	Categories  []string
	DateInfo    domain.DateInfo
	Timestamp   string
	IsMockData  bool
	FromCache   bool
	FromDefault bool
}

// Backend is the server API as used by the DataManager.
type Backend interface {
	FetchNavigation(ctx context.Context) (Payload, error)
	CreateLink(ctx context.Context, link domain.NewLink) (MutationResult, error)
	DeleteLink(ctx context.Context, id string) (MutationResult, error)
}

// DataManager fetches navigation data through a TTL cache and falls back to
// the offline dataset when the server cannot be used.
type DataManager struct {
	backend Backend
	cache   NavigationCache
	now     func() time.Time
	logger  logger.Logger

	group singleflight.Group

	mu      sync.RWMutex
	current *Result
	gen     uint64 // bumped by every invalidation
}

// NewDataManager wires a DataManager. A nil cache means a MemoryCache, a
// nil clock means time.Now.
func NewDataManager(backend Backend, cache NavigationCache, now func() time.Time, log logger.Logger) *DataManager {
	if cache == nil {
		cache = &MemoryCache{}
	}
	if now == nil {
		now = time.Now
	}
	return &DataManager{backend: backend, cache: cache, now: now, logger: log}
}

// Current returns the last result handed out, nil before the first fetch.
func (m *DataManager) Current() *Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// FetchNavigationData returns cached data when fresh (unless forceRefresh),
// otherwise asks the server. Every read failure ends in the offline dataset,
// which is never cached. Concurrent callers share one request.
func (m *DataManager) FetchNavigationData(ctx context.Context, forceRefresh bool) Result {
	if !forceRefresh {
		if p, ok := m.cache.Get(m.now()); ok {
			res := fromPayload(p)
			res.FromCache = true
			m.remember(res)
			return res
		}
	}

	// Reads started before a mutation are keyed apart from later ones, so a
	// refresh after AddLink never joins a read that predates it. The shared
	// request ignores the cancellation of whichever caller started it.
	gen := m.generation()
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan("fetch-"+strconv.FormatUint(gen, 10), func() (any, error) {
		return m.fetch(shared, gen), nil
	})

	select {
	case <-ctx.Done():
		m.logger.Warn("navigation fetch abandoned, using default dataset", logger.Error(ctx.Err()))
		return m.defaultResult()
	case r := <-ch:
		res := r.Val.(Result)
		m.remember(res)
		return res
	}
}

func (m *DataManager) fetch(ctx context.Context, gen uint64) Result {
	p, err := m.backend.FetchNavigation(ctx)
	if err == nil && !p.Success {
		err = errors.New("server reported failure")
	}
	if err == nil && p.Data == nil {
		err = &ParseError{Err: errors.New("missing data")}
	}
	if err != nil {
		m.logger.Warn("navigation fetch failed, using default dataset", logger.Error(err))
		return m.defaultResult()
	}

	if p.IsMockData {
		m.logger.Info("server returned mock data, not caching")
		return fromPayload(p)
	}

	m.mu.Lock()
	if m.gen == gen {
		m.cache.Set(p, m.now())
	} else {
		m.logger.Debug("navigation changed during fetch, not caching")
	}
	m.mu.Unlock()
	return fromPayload(p)
}

func (m *DataManager) defaultResult() Result {
	nav := DefaultNavigation()
	return Result{
		Success:     true,
		Data:        nav,
		Categories:  nav.Categories(),
		DateInfo:    domain.BuildDateInfo(m.now(), domain.LunarDate),
		FromDefault: true,
	}
}

func (m *DataManager) remember(res Result) {
	m.mu.Lock()
	m.current = &res
	m.mu.Unlock()
}

func (m *DataManager) generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// InvalidateCache drops the cached payload. Reads still in flight will not
// store their result.
func (m *DataManager) InvalidateCache() {
	m.mu.Lock()
	m.gen++
	m.cache.Invalidate()
	m.mu.Unlock()
}

// AddLink creates a link and invalidates the cache on success.
func (m *DataManager) AddLink(ctx context.Context, link domain.NewLink) (MutationResult, error) {
	if err := link.Validate(); err != nil {
		return MutationResult{}, err
	}
	res, err := m.backend.CreateLink(ctx, link)
	if err != nil {
		return MutationResult{}, fmt.Errorf("add link: %w", err)
	}
	if !res.Success {
		return res, fmt.Errorf("add link: %s", res.Message)
	}
	m.InvalidateCache()
	return res, nil
}

// DeleteLink deletes a link and invalidates the cache on success. Failures
// on mock ids carry DemoRecordMessage.
func (m *DataManager) DeleteLink(ctx context.Context, id string) (MutationResult, error) {
	res, err := m.backend.DeleteLink(ctx, id)
	if err == nil && !res.Success {
		err = errors.New(res.Message)
	}
	if err != nil {
		if domain.IsMockID(id) {
			return MutationResult{Message: DemoRecordMessage}, &DemoRecordError{ID: id, Err: err}
		}
		return res, fmt.Errorf("delete link: %w", err)
	}
	m.InvalidateCache()
	return res, nil
}

// DemoRecordError is a failed delete of a mock record.
type DemoRecordError struct {
	ID  string
	Err error
}

func (e *DemoRecordError) Error() string { return DemoRecordMessage }
func (e *DemoRecordError) Unwrap() error { return e.Err }

func fromPayload(p Payload) Result {
	cats := p.Categories
	if len(cats) == 0 {
		cats = p.Data.Categories()
	}
	return Result{
		Success:    true,
		Data:       p.Data,
		Categories: cats,
		DateInfo:   p.DateInfo,
		Timestamp:  p.Timestamp,
		IsMockData: p.IsMockData,
	}
}
